package chatbot

import (
	"context"
	"fmt"

	"chorebot-api/internal/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Telegram allows about 30 messages per second across all chats
const defaultMessagesPerSecond = 20

// telegramProvider implements TelegramProvider with the telegram-bot-api client
type telegramProvider struct {
	bot     *tgbotapi.BotAPI
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewTelegramProvider connects to the Bot API and validates the token
func NewTelegramProvider(cfg config.ChatbotConfig, logger *zap.Logger) (TelegramProvider, error) {
	if cfg.Token == "" {
		return nil, NewConfigurationError("token", "telegram bot token is required", "")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info("Telegram bot initialized successfully", zap.String("username", bot.Self.UserName))
	return newTelegramProvider(bot, cfg.MessagesPerSecond, logger), nil
}

func newTelegramProvider(bot *tgbotapi.BotAPI, messagesPerSecond float64, logger *zap.Logger) *telegramProvider {
	if messagesPerSecond <= 0 {
		messagesPerSecond = defaultMessagesPerSecond
	}
	return &telegramProvider{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(messagesPerSecond), 1),
		logger:  logger,
	}
}

func (p *telegramProvider) send(ctx context.Context, operation string, c tgbotapi.Chattable) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := p.bot.Request(c); err != nil {
		return WrapTelegramError(err, operation)
	}
	return nil
}

func (p *telegramProvider) SendMessage(ctx context.Context, chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	if err := p.send(ctx, "send_message", msg); err != nil {
		p.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return err
	}

	p.logger.Debug("Message sent",
		zap.Int64("chat_id", chatID),
		zap.Int("text_length", len(text)))
	return nil
}

func (p *telegramProvider) EditMessage(ctx context.Context, chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = markup

	if err := p.send(ctx, "edit_message", edit); err != nil {
		p.logger.Error("Failed to edit message",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err))
		return err
	}
	return nil
}

func (p *telegramProvider) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if _, err := p.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return WrapTelegramError(err, "answer_callback")
	}
	return nil
}

func (p *telegramProvider) SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption

	if err := p.send(ctx, "send_document", doc); err != nil {
		p.logger.Error("Failed to send document",
			zap.Int64("chat_id", chatID),
			zap.String("name", name),
			zap.Error(err))
		return err
	}
	return nil
}

func (p *telegramProvider) SetWebhook(webhookURL string) error {
	p.logger.Info("Setting webhook", zap.String("webhook_url", webhookURL))

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("failed to create webhook config: %w", err)
	}
	if _, err := p.bot.Request(webhookConfig); err != nil {
		return WrapTelegramError(err, "set_webhook")
	}
	return nil
}

func (p *telegramProvider) DeleteWebhook() error {
	if _, err := p.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return WrapTelegramError(err, "delete_webhook")
	}
	return nil
}

func (p *telegramProvider) GetUpdatesChan(timeout int) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout
	return p.bot.GetUpdatesChan(u)
}

func (p *telegramProvider) StopUpdates() {
	p.bot.StopReceivingUpdates()
}
