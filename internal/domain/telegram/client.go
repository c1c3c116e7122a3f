package telegram

import (
	"context"
	"fmt"
)

// ErrChatUnreachable marks a send failure that will not go away on retry
// (bot blocked, chat deleted, user deactivated).
var ErrChatUnreachable = fmt.Errorf("chat is permanently unreachable")

// Client defines an interface for sending messages via a Telegram bot.
// This decouples the application logic from the specific bot library.
type Client interface {
	// SendMessage sends text to chatID. Permanent failures wrap ErrChatUnreachable.
	SendMessage(ctx context.Context, chatID int64, text string) error
}
