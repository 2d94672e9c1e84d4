package store

import (
	"sync"

	"github.com/rs/zerolog"
)

const defaultSubscriberBuffer = 16

// Field names the piece of store state an Event refers to.
type Field string

const (
	FieldHobbies        Field = "hobbies"
	FieldCurrentUser    Field = "current_user"
	FieldUsers          Field = "users"
	FieldFriendRequests Field = "pending_friend_requests"
	FieldFriends        Field = "friends"
	FieldReset          Field = "reset"
)

// Event tells a subscriber that a field of a store was replaced. Read the
// new value from the store itself.
type Event struct {
	Store string
	Field Field
}

// Option configures a store.
type Option func(*notifier)

// WithSubscriberBuffer sets the channel capacity handed to each subscriber.
func WithSubscriberBuffer(n int) Option {
	return func(nt *notifier) {
		if n > 0 {
			nt.buffer = n
		}
	}
}

// notifier fans events out to subscriber channels. A subscriber that does
// not keep up loses events instead of blocking the store.
type notifier struct {
	name   string
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	buffer int
	closed bool
	log    zerolog.Logger
}

func newNotifier(name string, logger zerolog.Logger, opts []Option) *notifier {
	n := &notifier{
		name:   name,
		subs:   make(map[chan Event]struct{}),
		buffer: defaultSubscriberBuffer,
		log:    logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe returns a channel of change events and a function that
// unsubscribes and closes it. Subscribing to a closed store yields an
// already closed channel.
func (n *notifier) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, n.buffer)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		close(ch)
		return ch, func() {}
	}
	n.subs[ch] = struct{}{}

	return ch, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if _, ok := n.subs[ch]; ok {
			delete(n.subs, ch)
			close(ch)
		}
	}
}

func (n *notifier) publish(fields ...Field) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, f := range fields {
		ev := Event{Store: n.name, Field: f}
		for ch := range n.subs {
			select {
			case ch <- ev:
			default:
				n.log.Warn().Str("field", string(f)).Msg("subscriber channel full, dropping event")
			}
		}
	}
}

func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for ch := range n.subs {
		delete(n.subs, ch)
		close(ch)
	}
}
