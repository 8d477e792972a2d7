package digest

import (
	"context"

	"chorebot-api/internal/chore"
	"chorebot-api/internal/events"
	"chorebot-api/internal/metrics"

	"go.uber.org/zap"
)

const (
	DefaultDueSoonDays = 1
	WeeklyWindowDays   = 7
)

// Config lists digest recipients and the due-soon horizon
type Config struct {
	Recipients  []int64
	DueSoonDays int
}

// Report is the outcome of one digest run
type Report struct {
	Kind       events.DigestKind `json:"kind"`
	Recipients int               `json:"recipients"`
	Delivered  int               `json:"delivered"`
	Failed     []int64           `json:"failed,omitempty"`
	Skipped    bool              `json:"skipped"`
}

// Service sends the scheduled digests. Per-recipient delivery failures are
// logged and counted but never fail the run; only loading the data can.
type Service interface {
	SendDaily(ctx context.Context) (Report, error)
	SendWeekly(ctx context.Context) (Report, error)
	// DailyText renders the daily digest for a due-soon threshold. ok is
	// false when there is nothing to report.
	DailyText(ctx context.Context, dueSoonDays int) (text string, ok bool, err error)
	WeeklyText(ctx context.Context) (string, error)
}

type digestService struct {
	tasks    chore.Service
	sender   Sender
	eventBus events.EventBus
	config   Config
	logger   *zap.Logger
}

// NewDigestService creates a new digest service
func NewDigestService(tasks chore.Service, sender Sender, eventBus events.EventBus, cfg Config, logger *zap.Logger) Service {
	if cfg.DueSoonDays <= 0 {
		cfg.DueSoonDays = DefaultDueSoonDays
	}
	return &digestService{
		tasks:    tasks,
		sender:   sender,
		eventBus: eventBus,
		config:   cfg,
		logger:   logger,
	}
}

func (s *digestService) DailyText(ctx context.Context, dueSoonDays int) (string, bool, error) {
	overdue, err := s.tasks.Overdue(ctx)
	if err != nil {
		return "", false, err
	}
	dueSoon, err := s.tasks.DueSoon(ctx, dueSoonDays)
	if err != nil {
		return "", false, err
	}
	if len(overdue) == 0 && len(dueSoon) == 0 {
		return "", false, nil
	}

	s.logger.Debug("Daily digest content",
		zap.Int("overdue", len(overdue)),
		zap.Int("due_soon", len(dueSoon)))
	return FormatDaily(overdue, dueSoon, s.tasks.Now()), true, nil
}

func (s *digestService) WeeklyText(ctx context.Context) (string, error) {
	stats, err := s.tasks.Statistics(ctx, WeeklyWindowDays)
	if err != nil {
		return "", err
	}
	return FormatWeekly(stats), nil
}

// SendDaily sends nothing when no task is overdue or due soon
func (s *digestService) SendDaily(ctx context.Context) (Report, error) {
	report := Report{Kind: events.DigestDaily, Recipients: len(s.config.Recipients)}

	text, ok, err := s.DailyText(ctx, s.config.DueSoonDays)
	if err != nil {
		s.logger.Error("Failed to build daily digest", zap.Error(err))
		return report, err
	}
	if !ok {
		s.logger.Info("No reminders to send, all tasks are up to date")
		metrics.DigestDeliveries.WithLabelValues(string(events.DigestDaily), metrics.ResultSkipped).Inc()
		report.Skipped = true
		return report, nil
	}

	return s.fanOut(ctx, report, text), nil
}

func (s *digestService) SendWeekly(ctx context.Context) (Report, error) {
	report := Report{Kind: events.DigestWeekly, Recipients: len(s.config.Recipients)}

	text, err := s.WeeklyText(ctx)
	if err != nil {
		s.logger.Error("Failed to build weekly summary", zap.Error(err))
		return report, err
	}
	return s.fanOut(ctx, report, text), nil
}

// fanOut delivers text to every recipient in turn. A failed recipient does
// not stop delivery to the rest; a cancelled context does.
func (s *digestService) fanOut(ctx context.Context, report Report, text string) Report {
	kind := string(report.Kind)
	if len(s.config.Recipients) == 0 {
		s.logger.Warn("Digest has no recipients", zap.String("kind", kind))
	}

	for _, chatID := range s.config.Recipients {
		if ctx.Err() != nil {
			report.Failed = append(report.Failed, chatID)
			continue
		}
		if err := s.sender.SendMessage(ctx, chatID, text); err != nil {
			s.logger.Error("Failed to deliver digest",
				zap.String("kind", kind),
				zap.Int64("chat_id", chatID),
				zap.Error(err))
			metrics.DigestDeliveries.WithLabelValues(kind, metrics.ResultFailure).Inc()
			report.Failed = append(report.Failed, chatID)
			continue
		}
		metrics.DigestDeliveries.WithLabelValues(kind, metrics.ResultSuccess).Inc()
		report.Delivered++
	}

	s.logger.Info("Digest delivered",
		zap.String("kind", kind),
		zap.Int("delivered", report.Delivered),
		zap.Int("recipients", report.Recipients))

	if s.eventBus != nil {
		err := s.eventBus.Publish(events.TopicDigestSent, events.DigestSent{
			Event:      events.NewEvent(),
			Kind:       report.Kind,
			Recipients: report.Recipients,
			Delivered:  report.Delivered,
		})
		if err != nil {
			s.logger.Warn("Failed to publish event", zap.String("topic", events.TopicDigestSent), zap.Error(err))
		}
	}
	return report
}
