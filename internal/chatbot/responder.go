package chatbot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Responder answers the update being handled. Commands and button presses
// share handlers and only differ in how the answer reaches the chat.
type Responder interface {
	Respond(ctx context.Context, text string, markup interface{}) error
}

// messageResponder answers a message with a new message
type messageResponder struct {
	provider TelegramProvider
	chatID   int64
}

func NewMessageResponder(provider TelegramProvider, chatID int64) Responder {
	return &messageResponder{provider: provider, chatID: chatID}
}

func (r *messageResponder) Respond(ctx context.Context, text string, markup interface{}) error {
	return r.provider.SendMessage(ctx, r.chatID, text, markup)
}

// callbackResponder edits the message carrying the pressed button. Reply
// keyboards cannot be attached by an edit, so those answers are sent as new
// messages.
type callbackResponder struct {
	provider  TelegramProvider
	chatID    int64
	messageID int
}

func NewCallbackResponder(provider TelegramProvider, chatID int64, messageID int) Responder {
	return &callbackResponder{provider: provider, chatID: chatID, messageID: messageID}
}

func (r *callbackResponder) Respond(ctx context.Context, text string, markup interface{}) error {
	var inline *tgbotapi.InlineKeyboardMarkup
	switch m := markup.(type) {
	case nil:
	case tgbotapi.InlineKeyboardMarkup:
		inline = &m
	case *tgbotapi.InlineKeyboardMarkup:
		inline = m
	default:
		return r.provider.SendMessage(ctx, r.chatID, text, markup)
	}

	err := r.provider.EditMessage(ctx, r.chatID, r.messageID, text, inline)
	if isNotModified(err) {
		return nil
	}
	return err
}

// isNotModified matches the error Telegram returns when an edit would leave
// the message unchanged, e.g. a refresh with nothing new
func isNotModified(err error) bool {
	var apiErr TelegramAPIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(apiErr.Description, "message is not modified")
}
