package shopping

import (
	"context"

	"chorebot-api/internal/common"
	"chorebot-api/internal/events"

	"go.uber.org/zap"
)

// Service defines the shopping list operations
type Service interface {
	AddItem(ctx context.Context, text, category string, source events.Source) (*Item, error)
	ListItems(ctx context.Context, filter Filter) ([]Item, error)
	ToggleItem(ctx context.Context, id uint) (*Item, error)
	ClearChecked(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
	Counts(ctx context.Context) (Counts, error)
}

type shoppingService struct {
	repo     Repository
	eventBus events.EventBus
	clock    common.Clock
	logger   *zap.Logger
}

// NewShoppingService creates a new shopping list service
func NewShoppingService(repo Repository, eventBus events.EventBus, clock common.Clock, logger *zap.Logger) Service {
	return &shoppingService{
		repo:     repo,
		eventBus: eventBus,
		clock:    clock,
		logger:   logger,
	}
}

func (s *shoppingService) AddItem(ctx context.Context, text, category string, source events.Source) (*Item, error) {
	item, err := s.repo.Add(ctx, text, category, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		err := s.eventBus.Publish(events.TopicShoppingItemAdded, events.ShoppingItemAdded{
			Event:    events.NewEvent(),
			ItemID:   item.ID,
			Text:     item.ItemText,
			Category: item.Category,
			Source:   source,
		})
		if err != nil {
			s.logger.Warn("Failed to publish event", zap.String("topic", events.TopicShoppingItemAdded), zap.Error(err))
		}
	}
	return item, nil
}

func (s *shoppingService) ListItems(ctx context.Context, filter Filter) ([]Item, error) {
	return s.repo.List(ctx, filter)
}

func (s *shoppingService) ToggleItem(ctx context.Context, id uint) (*Item, error) {
	return s.repo.Toggle(ctx, id)
}

func (s *shoppingService) ClearChecked(ctx context.Context) (int64, error) {
	return s.repo.ClearChecked(ctx)
}

func (s *shoppingService) ClearAll(ctx context.Context) (int64, error) {
	return s.repo.ClearAll(ctx)
}

func (s *shoppingService) Counts(ctx context.Context) (Counts, error) {
	return s.repo.Count(ctx)
}
