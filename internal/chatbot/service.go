package chatbot

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"chorebot-api/internal/common"
	"chorebot-api/internal/config"
	"chorebot-api/internal/events"
	"chorebot-api/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	defaultPollingTimeout = 60
	announceTimeout       = 30 * time.Second
)

// ChatbotService defines the interface for chatbot operations
type ChatbotService interface {
	// HandleWebhook processes a raw update posted by Telegram
	HandleWebhook(ctx context.Context, webhookData []byte) error
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
	SendMessage(ctx context.Context, chatID int64, text string) error

	// Start registers the webhook, or begins long polling when no webhook
	// URL is configured. It returns immediately.
	Start(ctx context.Context) error
	Stop()
}

// chatbotService implements the ChatbotService interface
type chatbotService struct {
	eventBus  events.EventBus
	logger    *zap.Logger
	provider  TelegramProvider
	parser    *WebhookParser
	processor *CommandProcessor
	sessions  *SessionManager
	clock     common.Clock
	config    config.ChatbotConfig

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewChatbotService creates the bot on top of a connected provider.
// dueSoonDays is the horizon of the urgent task view.
func NewChatbotService(provider TelegramProvider, deps Dependencies, eventBus events.EventBus, clock common.Clock, cfg config.ChatbotConfig, dueSoonDays int, logger *zap.Logger) (ChatbotService, error) {
	if provider == nil {
		return nil, NewConfigurationError("provider", "telegram provider is required", "nil")
	}
	if deps.Tasks == nil || deps.Shopping == nil || deps.Users == nil || deps.Digest == nil {
		return nil, NewConfigurationError("dependencies", "task, shopping, user and digest services are required", "nil")
	}
	if clock == nil {
		clock = common.NewRealClock()
	}

	sessions := NewSessionManager(clock, time.Duration(cfg.SessionTimeout)*time.Second)
	service := &chatbotService{
		eventBus:  eventBus,
		logger:    logger,
		provider:  provider,
		parser:    NewWebhookParser(),
		processor: NewCommandProcessor(deps, provider, sessions, cfg, dueSoonDays, logger),
		sessions:  sessions,
		clock:     clock,
		config:    cfg,
	}

	service.setupEventSubscriptions()
	return service, nil
}

// setupEventSubscriptions sets up event subscriptions for the chatbot service
func (s *chatbotService) setupEventSubscriptions() {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Subscribe(events.TopicTaskCompleted, s.handleTaskCompleted); err != nil {
		s.logger.Error("Failed to subscribe to TaskCompleted events", zap.Error(err))
	}
}

// handleTaskCompleted announces completions made outside the chat to every
// admin except the one who completed the task
func (s *chatbotService) handleTaskCompleted(event events.TaskCompleted) {
	if event.Source != events.SourceAPI {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), announceTimeout)
	defer cancel()

	text := FormatCompletionAnnouncement(event.CompletedBy, event.TaskName, event.IntervalDays)
	for _, adminID := range s.config.AdminIDs {
		if adminID == event.ChatID {
			continue
		}
		if err := s.provider.SendMessage(ctx, adminID, text, nil); err != nil {
			s.logger.Warn("Failed to announce completion",
				zap.String("correlation_id", event.CorrelationID),
				zap.Int64("chat_id", adminID),
				zap.Uint("task_id", event.TaskID),
				zap.Error(err))
		}
	}
}

func (s *chatbotService) SendMessage(ctx context.Context, chatID int64, text string) error {
	s.logger.Debug("Sending message",
		zap.Int64("chat_id", chatID),
		zap.Int("text_length", len(text)))
	return s.provider.SendMessage(ctx, chatID, text, nil)
}

// HandleWebhook processes incoming webhook data from Telegram
func (s *chatbotService) HandleWebhook(ctx context.Context, webhookData []byte) error {
	update, err := s.parser.ParseUpdate(webhookData)
	if err != nil {
		s.logger.Warn("Failed to parse webhook update",
			zap.Int("data_size", len(webhookData)),
			zap.Error(err))
		return err
	}
	return s.HandleUpdate(ctx, *update)
}

// HandleUpdate dispatches one update. Failures to reply are logged and
// returned; the update is never retried.
func (s *chatbotService) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	kind := s.parser.UpdateKind(&update)
	metrics.BotUpdates.WithLabelValues(kind).Inc()
	correlationID := s.parser.BuildCorrelationID(&update)

	sender, err := s.parser.SenderFromUpdate(&update)
	if err != nil {
		s.logger.Debug("Ignoring update without sender",
			zap.String("correlation_id", correlationID),
			zap.String("kind", kind))
		return nil
	}

	switch {
	case update.CallbackQuery != nil:
		err = s.handleCallbackQuery(ctx, update.CallbackQuery, sender)
	case update.Message != nil:
		err = s.handleMessage(ctx, update.Message, sender)
	default:
		s.logger.Debug("Ignoring unsupported update",
			zap.String("correlation_id", correlationID),
			zap.Int("update_id", update.UpdateID))
		return nil
	}

	if err != nil {
		s.logger.Error("Update processing failed",
			zap.String("correlation_id", correlationID),
			zap.String("kind", kind),
			zap.Int64("user_id", sender.ID),
			zap.Error(err))
	}
	return err
}

func (s *chatbotService) handleMessage(ctx context.Context, message *tgbotapi.Message, sender Sender) error {
	if message.Chat == nil {
		return nil
	}
	req := Request{
		Sender:    sender,
		ChatID:    message.Chat.ID,
		Responder: NewMessageResponder(s.provider, message.Chat.ID),
	}

	if message.IsCommand() {
		command, args, err := s.parser.ExtractCommand(message)
		if err != nil {
			s.logger.Debug("Unknown command", zap.String("command", message.Command()))
			return req.Responder.Respond(ctx, unknownInputText, nil)
		}
		return s.processor.HandleCommand(ctx, req, command, args)
	}

	if message.Text == "" {
		return nil
	}
	return s.processor.HandleText(ctx, req, message.Text)
}

// handleCallbackQuery processes inline keyboard button presses. The press is
// always acknowledged so the client stops its spinner.
func (s *chatbotService) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery, sender Sender) error {
	if query.Message == nil || query.Message.Chat == nil {
		return s.provider.AnswerCallback(ctx, query.ID, unknownCallbackText)
	}

	req := Request{
		Sender:    sender,
		ChatID:    query.Message.Chat.ID,
		Responder: NewCallbackResponder(s.provider, query.Message.Chat.ID, query.Message.MessageID),
	}
	notice, err := s.processor.HandleCallback(ctx, req, query.Data)

	if answerErr := s.provider.AnswerCallback(ctx, query.ID, notice); answerErr != nil {
		s.logger.Warn("Failed to answer callback query",
			zap.String("callback_id", query.ID),
			zap.Error(answerErr))
	}
	return err
}

func (s *chatbotService) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("chatbot is already running")
	}

	ctx, s.cancel = context.WithCancel(ctx)

	if s.config.WebhookURL != "" {
		if err := s.provider.SetWebhook(s.config.WebhookURL); err != nil {
			s.cancel()
			s.running.Store(false)
			return err
		}
		s.logger.Info("Chatbot started in webhook mode", zap.String("webhook_url", s.config.WebhookURL))
	} else {
		if err := s.provider.DeleteWebhook(); err != nil {
			s.logger.Warn("Failed to delete webhook before polling", zap.Error(err))
		}
		s.wg.Add(1)
		go s.pollLoop(ctx)
		s.logger.Info("Chatbot started in polling mode")
	}

	s.wg.Add(1)
	go s.sessionCleanupLoop(ctx)
	return nil
}

func (s *chatbotService) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.logger.Info("Chatbot stopped")
}

func (s *chatbotService) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	timeout := s.config.Timeout
	if timeout <= 0 {
		timeout = defaultPollingTimeout
	}
	updates := s.provider.GetUpdatesChan(timeout)
	defer s.provider.StopUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				s.logger.Warn("Update channel closed")
				return
			}
			s.handlePolled(ctx, update)
		}
	}
}

// handlePolled keeps a panicking handler from stopping the polling loop
func (s *chatbotService) handlePolled(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Panic while handling update",
				zap.Int("update_id", update.UpdateID),
				zap.Any("panic", r))
		}
	}()
	_ = s.HandleUpdate(ctx, update)
}

func (s *chatbotService) sessionCleanupLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(s.sessions.timeout):
			if removed := s.sessions.Cleanup(); removed > 0 {
				s.logger.Debug("Expired chat sessions removed", zap.Int("count", removed))
			}
		}
	}
}
