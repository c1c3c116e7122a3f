// internal/infra/telegram/client.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainTelegram "soup_menu_bot/internal/domain/telegram"

	"gopkg.in/telebot.v3"
)

// Sender is the part of *telebot.Bot the adapter needs.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// TelebotAdapter implements the Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot Sender
}

func NewTelebotAdapter(b Sender) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a plain text message to the given chat.
func (tba *TelebotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := tba.bot.Send(&telebot.Chat{ID: chatID}, text, &telebot.SendOptions{DisableWebPagePreview: true})
	return classifySendError(err)
}

var permanentSendErrors = []error{
	telebot.ErrBlockedByUser,
	telebot.ErrKickedFromGroup,
	telebot.ErrUserIsDeactivated,
	telebot.ErrChatNotFound,
}

// classifySendError wraps errors Telegram will keep returning for this chat in ErrChatUnreachable.
// Flood control, network trouble and server errors are left as they are.
func classifySendError(err error) error {
	if err == nil {
		return nil
	}
	for _, permanent := range permanentSendErrors {
		if errors.Is(err, permanent) {
			return fmt.Errorf("%w: %v", domainTelegram.ErrChatUnreachable, err)
		}
	}
	var apiErr *telebot.Error
	if errors.As(err, &apiErr) && apiErr.Code == 403 {
		return fmt.Errorf("%w: %v", domainTelegram.ErrChatUnreachable, err)
	}
	// Unknown API errors come back as "telegram: <description> (<code>)".
	if strings.HasPrefix(err.Error(), "telegram: ") && strings.HasSuffix(err.Error(), "(403)") {
		return fmt.Errorf("%w: %v", domainTelegram.ErrChatUnreachable, err)
	}
	return err
}
