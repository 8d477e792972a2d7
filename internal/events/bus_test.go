package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func waitTimeout(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event delivery")
	}
}

func TestEventBus_PublishSubscribe(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		event interface{}
	}{
		{
			name:  "task completed",
			topic: TopicTaskCompleted,
			event: TaskCompleted{Event: NewEvent(), TaskID: 3, TaskName: "Помыть полы", ChatID: 42, Source: SourceAPI},
		},
		{
			name:  "shopping item added",
			topic: TopicShoppingItemAdded,
			event: ShoppingItemAdded{Event: NewEvent(), ItemID: 1, Text: "Milk", Category: "supermarket", Source: SourceBot},
		},
		{
			name:  "digest sent",
			topic: TopicDigestSent,
			event: DigestSent{Event: NewEvent(), Kind: DigestDaily, Recipients: 2, Delivered: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := NewEventBus(zaptest.NewLogger(t))
			defer bus.Close()

			var wg sync.WaitGroup
			wg.Add(1)
			var received interface{}
			require.NoError(t, bus.Subscribe(tt.topic, func(event interface{}) {
				received = event
				wg.Done()
			}))

			require.NoError(t, bus.Publish(tt.topic, tt.event))
			waitTimeout(t, &wg)
			assert.Equal(t, tt.event, received)
		})
	}
}

func TestEventBus_TypedHandler(t *testing.T) {
	bus := NewEventBus(zaptest.NewLogger(t))
	defer bus.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	var got TaskCreated
	require.NoError(t, bus.Subscribe(TopicTaskCreated, func(event TaskCreated) {
		got = event
		wg.Done()
	}))

	require.NoError(t, bus.Publish(TopicTaskCreated, TaskCreated{Event: NewEvent(), TaskID: 9, Name: "Пропылесосить", IntervalDays: 7}))
	waitTimeout(t, &wg)
	assert.Equal(t, uint(9), got.TaskID)
	assert.Equal(t, 7, got.IntervalDays)
}

func TestEventBus_TopicIsolation(t *testing.T) {
	bus := NewEventBus(zaptest.NewLogger(t))

	var mu sync.Mutex
	var topics []string
	record := func(topic string) func(interface{}) {
		return func(interface{}) {
			mu.Lock()
			topics = append(topics, topic)
			mu.Unlock()
		}
	}
	require.NoError(t, bus.Subscribe(TopicTaskCreated, record(TopicTaskCreated)))
	require.NoError(t, bus.Subscribe(TopicTaskDeleted, record(TopicTaskDeleted)))

	require.NoError(t, bus.Publish(TopicTaskDeleted, TaskDeleted{Event: NewEvent(), TaskID: 1}))
	require.NoError(t, bus.Close())

	assert.Equal(t, []string{TopicTaskDeleted}, topics)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(zaptest.NewLogger(t))

	calls := 0
	handler := func(interface{}) { calls++ }
	require.NoError(t, bus.Subscribe(TopicDigestSent, handler))
	require.NoError(t, bus.Unsubscribe(TopicDigestSent, handler))
	require.NoError(t, bus.Publish(TopicDigestSent, DigestSent{Event: NewEvent()}))
	require.NoError(t, bus.Close())

	assert.Zero(t, calls)
}

func TestEventBus_ClosedBus(t *testing.T) {
	bus := NewEventBus(zaptest.NewLogger(t))
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close(), "closing twice is a no-op")

	assert.ErrorIs(t, bus.Publish(TopicTaskCreated, TaskCreated{}), ErrBusClosed)
	assert.ErrorIs(t, bus.Subscribe(TopicTaskCreated, func(interface{}) {}), ErrBusClosed)
	assert.ErrorIs(t, bus.Unsubscribe(TopicTaskCreated, func(interface{}) {}), ErrBusClosed)
}

func TestEventBus_CloseWaitsForHandlers(t *testing.T) {
	bus := NewEventBus(zaptest.NewLogger(t))

	var mu sync.Mutex
	handled := 0
	require.NoError(t, bus.Subscribe(TopicTaskCompleted, func(interface{}) {
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		handled++
		mu.Unlock()
	}))

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(TopicTaskCompleted, TaskCompleted{Event: NewEvent(), TaskID: uint(i)}))
	}
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, handled)
}

func TestNewEvent(t *testing.T) {
	a := NewEvent()
	b := NewEvent()

	assert.NotEmpty(t, a.CorrelationID)
	assert.NotEqual(t, a.CorrelationID, b.CorrelationID)
	assert.WithinDuration(t, time.Now(), a.Timestamp, time.Second)
}
