package events

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrClosed is returned when subscribing to a closed multiplexer.
var ErrClosed = errors.New("events: multiplexer closed")

// DefaultBuffer is the channel capacity used when Subscribe is given 0.
const DefaultBuffer = 64

// Subscription is a receiving end of a Multiplexer.
type Subscription struct {
	ID uuid.UUID
	C  <-chan Event

	ch chan Event
}

// Multiplexer fans every broadcast event out to all current subscribers.
// It is shared by reference: copy the pointer, never the value. Broadcast
// never blocks; a subscriber whose buffer is full misses the event.
type Multiplexer struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]*Subscription
	closed  bool
	dropped atomic.Uint64
}

// New creates an empty multiplexer.
func New() *Multiplexer {
	return &Multiplexer{subs: make(map[uuid.UUID]*Subscription)}
}

// Subscribe registers a new subscriber with the given channel capacity.
func (m *Multiplexer) Subscribe(buffer int) (*Subscription, error) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	ch := make(chan Event, buffer)
	sub := &Subscription{ID: uuid.New(), C: ch, ch: ch}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	m.subs[sub.ID] = sub
	return sub, nil
}

// Unsubscribe removes a subscriber and closes its channel. Unknown ids are ignored.
func (m *Multiplexer) Unsubscribe(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.subs[id]; ok {
		delete(m.subs, id)
		close(sub.ch)
	}
}

// Broadcast delivers ev to every subscriber and returns how many received it.
func (m *Multiplexer) Broadcast(ev Event) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0
	}

	delivered := 0
	for _, sub := range m.subs {
		select {
		case sub.ch <- ev:
			delivered++
		default:
			m.dropped.Add(1)
		}
	}
	return delivered
}

// Len returns the number of active subscribers.
func (m *Multiplexer) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (m *Multiplexer) Dropped() uint64 { return m.dropped.Load() }

// Close unsubscribes everyone. Further broadcasts are no-ops.
func (m *Multiplexer) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for id, sub := range m.subs {
		delete(m.subs, id)
		close(sub.ch)
	}
}
