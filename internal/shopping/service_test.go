package shopping

import (
	"context"
	"testing"

	"chorebot-api/internal/common"
	"chorebot-api/internal/events"
	"chorebot-api/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"
)

func TestService_AddItemPublishesEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockEventBus(ctrl)
	repo, _ := newTestRepository(t)
	service := NewShoppingService(repo, bus, common.NewMockClock(baseTime), zaptest.NewLogger(t))

	var published events.ShoppingItemAdded
	bus.EXPECT().Publish(events.TopicShoppingItemAdded, gomock.Any()).DoAndReturn(func(_ string, data any) error {
		published = data.(events.ShoppingItemAdded)
		return nil
	})

	item, err := service.AddItem(context.Background(), "Сыр", "Dairy", events.SourceBot)
	require.NoError(t, err)
	assert.True(t, item.CreatedAt.Equal(baseTime))
	assert.Equal(t, item.ID, published.ItemID)
	assert.Equal(t, "dairy", published.Category)
	assert.Equal(t, events.SourceBot, published.Source)

	// the conflict path publishes nothing
	_, err = service.AddItem(context.Background(), "сыр", "", events.SourceAPI)
	assert.True(t, common.IsConflict(err))

	counts, err := service.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Total)
}

func TestService_PublishFailureDoesNotFailAdd(t *testing.T) {
	ctrl := gomock.NewController(t)
	bus := mocks.NewMockEventBus(ctrl)
	repo, _ := newTestRepository(t)
	service := NewShoppingService(repo, bus, common.NewMockClock(baseTime), zaptest.NewLogger(t))

	bus.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(events.ErrBusClosed)

	item, err := service.AddItem(context.Background(), "Bread", "", events.SourceAPI)
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
}
