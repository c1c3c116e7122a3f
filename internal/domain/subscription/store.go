package subscription

import "context"

// Store holds the chat identifiers that receive the daily soup broadcast.
// Implementations must be safe for concurrent use.
type Store interface {
	// Add inserts chatID. added is false when it was already subscribed.
	Add(ctx context.Context, chatID int64) (added bool, err error)
	// Remove deletes chatID. removed is false when it was not subscribed.
	Remove(ctx context.Context, chatID int64) (removed bool, err error)
	// List returns a snapshot of the current subscribers.
	List(ctx context.Context) ([]int64, error)
}
