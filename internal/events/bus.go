package events

import (
	"errors"
	"fmt"
	"sync"
)

// Handler consumes a progress event. Handlers run synchronously in the
// publishing request; a handler error never blocks the remaining handlers,
// because one failed side effect must not starve the others of the
// completion that triggered it.
type Handler func(Event) error

// Bus is a synchronous in-process event dispatcher. Every operation runs to
// completion within a single request, so there is no worker pool and no
// buffering: publish calls each subscribed handler in registration order
// before returning.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

// NewBus creates an empty event bus
func NewBus() *Bus {
	return &Bus{handlers: make(map[Type][]Handler)}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// Publish delivers the event to every handler subscribed to its type. All
// handlers run even when some fail; their errors are joined into the return
// value so the publisher can surface the failures to its caller.
func (b *Bus) Publish(e Event) error {
	b.mu.RLock()
	handlers := b.handlers[e.Type]
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := h(e); err != nil {
			errs = append(errs, fmt.Errorf("%s handler (child %d): %w", e.Type, e.ChildID, err))
		}
	}
	return errors.Join(errs...)
}
