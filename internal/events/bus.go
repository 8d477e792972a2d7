package events

import (
	"errors"
	"sync"

	eventbus "github.com/asaskevich/EventBus"
	"go.uber.org/zap"
)

// ErrBusClosed is returned by every operation after Close
var ErrBusClosed = errors.New("event bus is closed")

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	Publish(topic string, data interface{}) error
	Subscribe(topic string, handler interface{}) error
	Unsubscribe(topic string, handler interface{}) error
	Close() error
}

// eventBus wraps the EventBus library. Handlers run asynchronously so a
// slow subscriber (a Telegram send) never holds up the publisher.
type eventBus struct {
	bus    eventbus.Bus
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// NewEventBus creates a new event bus instance
func NewEventBus(logger *zap.Logger) EventBus {
	return &eventBus{
		bus:    eventbus.New(),
		logger: logger,
	}
}

// Publish publishes an event to the specified topic
func (eb *eventBus) Publish(topic string, data interface{}) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return ErrBusClosed
	}

	eb.logger.Debug("Publishing event", zap.String("topic", topic))
	eb.bus.Publish(topic, data)
	return nil
}

// Subscribe registers an asynchronous handler. A handler processes one event
// at a time.
func (eb *eventBus) Subscribe(topic string, handler interface{}) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return ErrBusClosed
	}

	eb.logger.Debug("Subscribing to topic", zap.String("topic", topic))
	return eb.bus.SubscribeAsync(topic, handler, true)
}

// Unsubscribe unsubscribes from events on the specified topic
func (eb *eventBus) Unsubscribe(topic string, handler interface{}) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return ErrBusClosed
	}

	eb.logger.Debug("Unsubscribing from topic", zap.String("topic", topic))
	return eb.bus.Unsubscribe(topic, handler)
}

// Close stops accepting events and waits for in-flight handlers to finish
func (eb *eventBus) Close() error {
	eb.mu.Lock()
	if eb.closed {
		eb.mu.Unlock()
		return nil
	}
	eb.closed = true
	eb.mu.Unlock()

	eb.logger.Info("Closing event bus")
	eb.bus.WaitAsync()
	return nil
}
