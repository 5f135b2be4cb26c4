package event

import (
	"fmt"
	"log/slog"
	"sync"
)

type HandlerFunc func(raw any)

// Bus fans events out to subscribers. Handlers run on their own goroutines
// so a slow audio cue never stalls the tick.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
	inflight sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]HandlerFunc),
	}
}

func (b *Bus) Subscribe(eventName string, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// On subscribes fn to eventName for payloads of type T. Payloads of any
// other type are logged and dropped.
func On[T any](b *Bus, eventName string, fn func(T)) {
	b.Subscribe(eventName, func(raw any) {
		evt, ok := raw.(T)
		if !ok {
			slog.Warn("Event payload has unexpected type", "event", eventName, "type", fmt.Sprintf("%T", raw))
			return
		}
		fn(evt)
	})
}

func (b *Bus) Publish(eventName string, evt any) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]HandlerFunc, len(b.handlers[eventName]))
	copy(handlers, b.handlers[eventName])
	b.mu.RUnlock()

	b.inflight.Add(len(handlers))
	for _, handler := range handlers {
		go func(h HandlerFunc) {
			defer b.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Event handler panicked", "event", eventName, "panic", r)
				}
			}()
			h(evt)
		}(handler)
	}
}

// Wait blocks until every handler started by Publish so far has returned.
func (b *Bus) Wait() {
	b.inflight.Wait()
}
