package event

import (
	"sync"

	"github.com/go-arcade/ensemble/pkg/log"
	"github.com/go-arcade/ensemble/pkg/safe"
)

// AllEvents subscribes a handler to every event name.
const AllEvents = "*"

// EventBus dispatches events synchronously to the handlers registered for
// their name. A panicking handler is logged and does not affect the others.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

func (eb *EventBus) RegisterHandler(eventName string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[eventName] = append(eb.handlers[eventName], handler)
}

func (eb *EventBus) Publish(event Event) {
	eventName := event.EventName()

	eb.mu.RLock()
	handlers := make([]EventHandler, 0, len(eb.handlers[eventName])+len(eb.handlers[AllEvents]))
	handlers = append(handlers, eb.handlers[eventName]...)
	handlers = append(handlers, eb.handlers[AllEvents]...)
	eb.mu.RUnlock()

	log.Debugw("publish event", "event", eventName, "handlers", len(handlers))
	for _, handler := range handlers {
		if err := safe.Do(func() { handler.Handle(event) }); err != nil {
			log.Errorw("event handler failed", "event", eventName, "error", err)
		}
	}
}

func (eb *EventBus) Consume(event Event) {
	eb.Publish(event)
}
