// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"strings"

	"soup_menu_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Registrar is the handler registration part of *telebot.Bot.
type Registrar interface {
	Handle(endpoint interface{}, h telebot.HandlerFunc, m ...telebot.MiddlewareFunc)
}

type botCommands struct {
	ctx           context.Context
	queries       *app.QueryService
	notifications app.NotificationService
	logger        *logrus.Entry
}

// RegisterBotCommands registers the public commands and the free-text soup question handler.
func RegisterBotCommands(
	ctx context.Context,
	b Registrar,
	queries *app.QueryService,
	notifService app.NotificationService,
	baseLogger *logrus.Entry,
) {
	h := &botCommands{
		ctx:           ctx,
		queries:       queries,
		notifications: notifService,
		logger:        baseLogger.WithField("handler_group", "bot_commands"),
	}
	b.Handle("/start", h.start)
	b.Handle("/help", h.help)
	b.Handle("/subscribe", h.subscribe)
	b.Handle("/unsubscribe", h.unsubscribe)
	b.Handle(telebot.OnText, h.text)
}

func (h *botCommands) start(c telebot.Context) error {
	h.commandLogger(c, "/start").Info("Processing /start command")
	return c.Send(h.queries.Locale().Messages.Start)
}

func (h *botCommands) help(c telebot.Context) error {
	h.commandLogger(c, "/help").Info("Processing /help command")
	return c.Send(h.queries.Locale().Messages.Help)
}

func (h *botCommands) subscribe(c telebot.Context) error {
	logCtx := h.commandLogger(c, "/subscribe")
	msgs := h.queries.Locale().Messages

	added, err := h.notifications.Subscribe(h.ctx, c.Chat().ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to subscribe chat")
		return c.Send(msgs.SubscribeFailed)
	}
	if !added {
		logCtx.Info("Chat was already subscribed")
		return c.Send(msgs.AlreadySubscribed)
	}
	logCtx.Info("Chat subscribed")
	return c.Send(msgs.Subscribed)
}

func (h *botCommands) unsubscribe(c telebot.Context) error {
	logCtx := h.commandLogger(c, "/unsubscribe")
	msgs := h.queries.Locale().Messages

	removed, err := h.notifications.Unsubscribe(h.ctx, c.Chat().ID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to unsubscribe chat")
		return c.Send(msgs.UnsubscribeFailed)
	}
	if !removed {
		logCtx.Info("Chat was not subscribed")
		return c.Send(msgs.NotSubscribed)
	}
	logCtx.Info("Chat unsubscribed")
	return c.Send(msgs.Unsubscribed)
}

func (h *botCommands) text(c telebot.Context) error {
	text := strings.TrimSpace(c.Text())
	if text == "" || strings.HasPrefix(text, "/") {
		// Unknown commands get the help text instead of a soup lookup.
		return c.Send(h.queries.Locale().Messages.Help)
	}
	reply := h.queries.Answer(h.ctx, text)
	return c.Send(reply.Text)
}

func (h *botCommands) commandLogger(c telebot.Context, command string) *logrus.Entry {
	fields := logrus.Fields{"command": command}
	if c.Sender() != nil {
		fields["sender_id"] = c.Sender().ID
	}
	if c.Chat() != nil {
		fields["chat_id"] = c.Chat().ID
	}
	return h.logger.WithFields(fields)
}
