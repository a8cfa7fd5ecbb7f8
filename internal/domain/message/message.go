// Package message carries origin-tagged messages from the login callback
// page to whoever is waiting on a handshake. It is the in-process stand-in
// for the browser's window.postMessage channel.
package message

import (
	"sync"
	"time"
)

// Message types posted by the login callback page.
const (
	TypeAuthSuccess = "GOOGLE_AUTH_SUCCESS"
	TypeAuthError   = "GOOGLE_AUTH_ERROR"
)

// Message is one posted message.
type Message struct {
	// Origin is the scheme://host[:port] the message was posted from.
	Origin string
	// Type is the message type, e.g. TypeAuthSuccess.
	Type string
	// Handshake is the handshake id echoed back by the callback page, if any.
	Handshake string
	// SessionToken is an optional credential handed over by the provider.
	SessionToken string
	// ReceivedAt is when the message was published (UTC).
	ReceivedAt time.Time
}

// Bus is a broadcast channel. Every subscriber sees every message published
// while it is subscribed; slow subscribers drop messages instead of
// blocking publishers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]*Subscription)}
}

// Subscription is a scoped handle on the bus. Close releases it.
type Subscription struct {
	// C delivers messages until the subscription is closed.
	C <-chan Message

	ch   chan Message
	bus  *Bus
	id   uint64
	once sync.Once
}

// Subscribe registers a new subscriber with the given buffer size.
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Message, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscription{C: ch, ch: ch, bus: b, id: b.nextID}
	b.subs[sub.id] = sub
	return sub
}

// Publish delivers m to every current subscriber and returns how many
// received it.
func (b *Bus) Publish(m Message) int {
	if m.ReceivedAt.IsZero() {
		m.ReceivedAt = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, sub := range b.subs {
		select {
		case sub.ch <- m:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close detaches the subscription and closes C. Safe to call multiple times.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
		close(s.ch)
	})
}
