// Package eventbus provides implementations of the EventBus interface.
package eventbus

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/tejashwikalptaru/goradio/internal/domain"
	"github.com/tejashwikalptaru/goradio/internal/ports"
)

// anyEvent keys the wildcard subscriptions registered through SubscribeAll.
const anyEvent domain.EventType = "*"

// errBusClosed is returned by a second Close.
var errBusClosed = errors.New("event bus already closed")

// SyncEventBus delivers events on the publishing goroutine.
//
// The playback controller publishes from the scheduler goroutine and the services
// publish from the UI goroutine, so handlers must be quick and hand UI work to fyne.Do.
// Type-specific handlers run first in subscription order, then wildcard handlers.
// A panicking handler or filter is logged and skipped; delivery continues.
type SyncEventBus struct {
	logger *slog.Logger

	mu     sync.RWMutex
	subs   map[domain.EventType][]subscription
	nextID uint64
	closed bool
}

type subscription struct {
	id      domain.SubscriptionID
	handler domain.EventHandler
	filter  ports.EventFilter // nil delivers every event
}

// NewSyncEventBus creates a new synchronous event bus.
func NewSyncEventBus() *SyncEventBus {
	return &SyncEventBus{
		logger: slog.New(slog.DiscardHandler),
		subs:   make(map[domain.EventType][]subscription),
	}
}

// SetLogger sets the logger used to report handler panics.
func (bus *SyncEventBus) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.logger = logger
}

// Publish delivers event to its subscribers. It does nothing after Close.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	// Copy so handlers may subscribe or unsubscribe while we deliver
	targets := slices.Concat(bus.subs[event.Type()], bus.subs[anyEvent])
	logger := bus.logger
	bus.mu.RUnlock()

	for _, sub := range targets {
		deliver(logger, sub, event)
	}
}

func deliver(logger *slog.Logger, sub subscription, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event subscriber panicked",
				slog.Any("panic", r),
				slog.String("event_type", string(event.Type())),
				slog.String("subscription", string(sub.id)))
		}
	}()

	if sub.filter != nil && !sub.filter(event) {
		return
	}
	sub.handler(event)
}

// Subscribe registers a handler for events of the specified type.
// The same handler can be registered multiple times with different IDs.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(eventType, "sub", nil, handler)
}

// SubscribeFiltered registers a handler that only receives events accepted by filter.
func (bus *SyncEventBus) SubscribeFiltered(eventType domain.EventType, filter ports.EventFilter, handler domain.EventHandler) domain.SubscriptionID {
	if filter == nil {
		panic("event filter cannot be nil")
	}
	return bus.add(eventType, "sub", filter, handler)
}

// SubscribeAll registers a handler that receives every event.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	return bus.add(anyEvent, "sub-all", nil, handler)
}

func (bus *SyncEventBus) add(key domain.EventType, prefix string, filter ports.EventFilter, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	bus.nextID++
	id := domain.SubscriptionID(fmt.Sprintf("%s-%d", prefix, bus.nextID))
	bus.subs[key] = append(bus.subs[key], subscription{id: id, handler: handler, filter: filter})
	return id
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	for key, subs := range bus.subs {
		i := slices.IndexFunc(subs, func(s subscription) bool { return s.id == id })
		if i < 0 {
			continue
		}
		// Delivery order of the remaining subscribers is preserved
		bus.subs[key] = slices.Delete(subs, i, i+1)
		return
	}
}

// HasSubscribers reports whether publishing eventType would reach any handler.
func (bus *SyncEventBus) HasSubscribers(eventType domain.EventType) bool {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subs[eventType]) > 0 || len(bus.subs[anyEvent]) > 0
}

// Close drops every subscription. Publishing afterwards is a no-op;
// a second Close returns an error.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return errBusClosed
	}
	bus.closed = true
	clear(bus.subs)
	return nil
}

// SubscriberCount returns the number of active subscriptions, wildcard ones included.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	count := 0
	for _, subs := range bus.subs {
		count += len(subs)
	}
	return count
}

// Verify that SyncEventBus implements the FilteringEventBus interface
var _ ports.FilteringEventBus = (*SyncEventBus)(nil)
