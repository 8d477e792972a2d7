package chatbot

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WebhookParser provides utilities for parsing Telegram webhook updates
type WebhookParser struct{}

// NewWebhookParser creates a new WebhookParser instance
func NewWebhookParser() *WebhookParser {
	return &WebhookParser{}
}

// ParseUpdate unmarshals webhook data into a Telegram Update struct
func (p *WebhookParser) ParseUpdate(updateData []byte) (*tgbotapi.Update, error) {
	if len(updateData) == 0 {
		return nil, WrapParsingError(fmt.Errorf("empty update data"), "unknown")
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(updateData, &update); err != nil {
		return nil, WrapParsingError(err, "unknown")
	}

	if update.UpdateID == 0 {
		return nil, WebhookParsingError{UpdateType: "unknown", Details: "missing update ID"}
	}

	return &update, nil
}

// UpdateKind names the update for logs and metrics
func (p *WebhookParser) UpdateKind(update *tgbotapi.Update) string {
	switch {
	case update == nil:
		return "unknown"
	case update.CallbackQuery != nil:
		return "callback"
	case update.Message != nil && update.Message.IsCommand():
		return "command"
	case update.Message != nil:
		return "text"
	default:
		return "other"
	}
}

// ExtractCommand returns the command and its trimmed arguments. Commands
// addressed to a bot by mention (/done@house_bot) are accepted.
func (p *WebhookParser) ExtractCommand(message *tgbotapi.Message) (Command, string, error) {
	if message == nil {
		return "", "", fmt.Errorf("message is nil")
	}
	if !message.IsCommand() {
		return "", "", fmt.Errorf("message is not a command")
	}

	command := Command(strings.ToLower(message.Command()))
	if !command.IsValid() {
		return "", "", fmt.Errorf("unknown command: %s", message.Command())
	}
	return command, strings.TrimSpace(message.CommandArguments()), nil
}

// SenderFromUpdate returns the Telegram user behind a message or callback
func (p *WebhookParser) SenderFromUpdate(update *tgbotapi.Update) (Sender, error) {
	if update == nil {
		return Sender{}, fmt.Errorf("update is nil")
	}

	var from *tgbotapi.User
	switch {
	case update.Message != nil:
		from = update.Message.From
	case update.CallbackQuery != nil:
		from = update.CallbackQuery.From
	}
	if from == nil {
		return Sender{}, fmt.Errorf("no user information found in update")
	}

	return Sender{ID: from.ID, Username: from.UserName, FirstName: from.FirstName}, nil
}

// ChatID extracts the chat the update belongs to
func (p *WebhookParser) ChatID(update *tgbotapi.Update) (int64, error) {
	if update == nil {
		return 0, fmt.Errorf("update is nil")
	}

	if update.Message != nil && update.Message.Chat != nil {
		return update.Message.Chat.ID, nil
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil {
		return update.CallbackQuery.Message.Chat.ID, nil
	}
	return 0, fmt.Errorf("no chat information found in update")
}

// BuildCorrelationID generates a correlation ID for tracking an update
func (p *WebhookParser) BuildCorrelationID(update *tgbotapi.Update) string {
	if update == nil {
		return fmt.Sprintf("corr_%d", time.Now().UnixNano())
	}

	updateID := update.UpdateID
	timestamp := time.Now().Unix()

	if update.Message != nil {
		return fmt.Sprintf("msg_%d_%d_%d", updateID, update.Message.MessageID, timestamp)
	}

	if update.CallbackQuery != nil {
		return fmt.Sprintf("cb_%d_%s_%d", updateID, update.CallbackQuery.ID, timestamp)
	}

	return fmt.Sprintf("upd_%d_%d", updateID, timestamp)
}
