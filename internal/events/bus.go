package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// HandlerFunc handles a single event.
type HandlerFunc func(ctx context.Context, event Event) error

// EventBus is an asynchronous publish-subscribe bus: every Emit fans out to
// its subscribers on their own goroutines so a slow or misbehaving handler
// (an MQTT publish stall, a CLI print) never blocks the lobby operation that
// raised the event.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]handlerEntry
	stopped  bool
	wg       sync.WaitGroup
}

type handlerEntry struct {
	name    string
	handler HandlerFunc
}

// NewEventBus creates an empty EventBus.
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[EventType][]handlerEntry)}
}

// Subscribe registers a named handler for an event type. name is used only
// for logging and Unsubscribe.
func (eb *EventBus) Subscribe(eventType EventType, name string, handler HandlerFunc) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[eventType] = append(eb.handlers[eventType], handlerEntry{name: name, handler: handler})
}

// Unsubscribe removes a previously registered handler.
func (eb *EventBus) Unsubscribe(eventType EventType, name string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	handlers, ok := eb.handlers[eventType]
	if !ok {
		return
	}
	filtered := handlers[:0]
	for _, h := range handlers {
		if h.name != name {
			filtered = append(filtered, h)
		}
	}
	eb.handlers[eventType] = filtered
}

// Emit publishes an event to every subscriber asynchronously.
func (eb *EventBus) Emit(ctx context.Context, event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if eb.stopped {
		return
	}
	handlers := eb.handlers[event.Type]
	for _, h := range handlers {
		h := h
		eb.wg.Add(1)
		go func() {
			defer eb.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Error().Str("event", string(event.Type)).Str("handler", h.name).
						Interface("panic", r).Msg("event handler panicked")
				}
			}()
			if err := h.handler(ctx, event); err != nil {
				log.Warn().Err(err).Str("event", string(event.Type)).Str("handler", h.name).
					Msg("event handler failed")
			}
		}()
	}
}

// Stop marks the bus closed to new events and waits for in-flight handlers.
func (eb *EventBus) Stop() {
	eb.mu.Lock()
	eb.stopped = true
	eb.mu.Unlock()
	eb.wg.Wait()
}
