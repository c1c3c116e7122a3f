package soup

import (
	"context"
	"fmt"
	"time"
)

var (
	ErrLocationNotFound = fmt.Errorf("location not found")
	ErrSoupNotFound     = fmt.Errorf("soup not found")
	ErrOfferNotFound    = fmt.Errorf("soup is not offered at this location")
)

// Repository defines the operations for persisting and retrieving soups and locations.
type Repository interface {
	// SoupsForDate lists every soup served on date's calendar day, with all offers.
	SoupsForDate(ctx context.Context, date time.Time) ([]*Soup, error)
	// SoupsForDateAndLocation lists the soups of date's calendar day offered at the named location.
	// Returned soups still carry all of their offers.
	SoupsForDateAndLocation(ctx context.Context, locationName string, date time.Time) ([]*Soup, error)
	// CreateSoup inserts the soup and its offers atomically.
	// Fails with ErrLocationNotFound without writing anything if a location is unknown.
	CreateSoup(ctx context.Context, draft NewSoup) (*Soup, error)
	DeleteSoup(ctx context.Context, id int64) error
	UpdateSoupPrice(ctx context.Context, soupID int64, locationName string, price Cents) error
	ListSoups(ctx context.Context) ([]*Soup, error) // Newest date first, for admin purposes
	ListLocations(ctx context.Context) ([]*Location, error)
	// CreateLocation returns the existing location when the name is already taken.
	CreateLocation(ctx context.Context, name string) (*Location, error)
}
