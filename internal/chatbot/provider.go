package chatbot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramProvider defines the contract for Telegram API operations. Texts are
// sent with HTML parse mode, so callers escape user-supplied values.
type TelegramProvider interface {
	// SendMessage sends text to a chat. markup may be nil, an inline keyboard
	// or a reply keyboard.
	SendMessage(ctx context.Context, chatID int64, text string, markup interface{}) error

	// EditMessage replaces the text and inline keyboard of a sent message
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error

	// AnswerCallback acknowledges an inline button press
	AnswerCallback(ctx context.Context, callbackID, text string) error

	// SendDocument uploads data as a file named name
	SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error

	SetWebhook(webhookURL string) error
	DeleteWebhook() error

	// GetUpdatesChan starts long polling with the given timeout in seconds
	GetUpdatesChan(timeout int) tgbotapi.UpdatesChannel
	StopUpdates()
}
