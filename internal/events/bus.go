// Package events implements the in-process change signal: every mutating
// store or mirror write publishes a Change, and subscribers re-query the
// collections they care about.
package events

import (
	"log/slog"
	"sync"
	"time"

	"skillhive/internal/observability"
)

// Op names the kind of write that produced a change.
type Op string

const (
	OpSave   Op = "save"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes one completed write.
type Change struct {
	Collection string    `json:"collection"`
	Op         Op        `json:"op"`
	ID         string    `json:"id,omitempty"`
	At         time.Time `json:"at"`
	// Origin is set on changes re-published from another process.
	Origin string `json:"origin,omitempty"`
}

// Publisher is the write side of the bus.
type Publisher interface {
	Publish(c Change)
}

const defaultBuffer = 64

// Bus is an in-process publish/subscribe hub for changes.
type Bus struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
}

// NewBus creates a bus whose subscriptions buffer up to buffer changes.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Bus{subs: make(map[*Subscription]struct{}), buffer: buffer}
}

// Subscription receives changes for a set of collections.
type Subscription struct {
	bus         *Bus
	collections map[string]struct{}
	ch          chan Change
	once        sync.Once
}

// C returns the receive channel. It is closed by Close.
func (s *Subscription) C() <-chan Change { return s.ch }

// Close detaches the subscription from the bus.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s)
		s.bus.mu.Unlock()
		close(s.ch)
	})
}

func (s *Subscription) wants(collection string) bool {
	if len(s.collections) == 0 {
		return true
	}
	_, ok := s.collections[collection]
	return ok
}

// Subscribe registers interest in collections. No collections means every change.
func (b *Bus) Subscribe(collections ...string) *Subscription {
	sub := &Subscription{
		bus:         b,
		collections: make(map[string]struct{}, len(collections)),
		ch:          make(chan Change, b.buffer),
	}
	for _, c := range collections {
		sub.collections[c] = struct{}{}
	}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Publish delivers c to every interested subscriber without blocking.
// A subscriber whose buffer is full misses the change.
func (b *Bus) Publish(c Change) {
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}
	observability.ChangeSignals.WithLabelValues(c.Collection).Inc()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		if !sub.wants(c.Collection) {
			continue
		}
		select {
		case sub.ch <- c:
		default:
			observability.ChangeSignalDrops.WithLabelValues(c.Collection).Inc()
			observability.Logger.Debug("change dropped for slow subscriber",
				slog.String("collection", c.Collection))
		}
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Discard is a Publisher that drops every change.
type Discard struct{}

// Publish implements Publisher.
func (Discard) Publish(Change) {}
