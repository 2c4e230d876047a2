// Package bus implements a synchronous, in-process publish/subscribe bus
// with exact topic matching.
//
// Publish blocks until every handler registered for the topic has run, in
// registration order. There is no cross-goroutine delivery guarantee: the
// bus is built for the single-threaded cooperative model where mutations
// and handlers share one event loop. The mutex only protects the
// subscription table itself against registrations from other goroutines.
package bus

import (
	"fmt"
	"log/slog"
	"sync"
)

// Message is what a handler receives: the full topic string the message
// was published under and an optional payload. Refresh-style topics carry
// a nil payload.
type Message struct {
	Topic   string
	Payload any
}

// Handler is a subscriber callback. Handlers run synchronously inside
// Publish; a handler that hangs, hangs the publisher.
type Handler func(msg Message)

// Subscription identifies one registered handler. Pass it back to
// Unsubscribe to remove the handler.
type Subscription struct {
	Token string
	Topic string
}

type entry struct {
	token   string
	handler Handler
}

// Bus dispatches messages to handlers by exact topic string.
type Bus struct {
	mu     sync.Mutex
	subs   map[string][]entry
	tokens TokenGenerator
	logger *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for debug-level publish/subscribe
// tracing. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) { b.logger = l }
}

// WithTokenGenerator overrides the subscription token source.
// Tests use FixedGenerator for deterministic tokens.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(b *Bus) { b.tokens = g }
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[string][]entry),
		tokens: UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a handler for an exact topic string and returns its
// subscription handle. Handlers for the same topic are invoked in
// registration order.
func (b *Bus) Subscribe(topic string, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	tok := b.tokens.Generate()
	b.subs[topic] = append(b.subs[topic], entry{token: tok, handler: h})

	b.logger.Debug("bus subscribe", "topic", topic, "token", tok)
	return Subscription{Token: tok, Topic: topic}
}

// Unsubscribe removes a previously registered handler. Removing a
// subscription that is not registered fails loudly.
func (b *Bus) Unsubscribe(sub Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.subs[sub.Topic]
	for i, e := range entries {
		if e.token == sub.Token {
			b.subs[sub.Topic] = append(entries[:i:i], entries[i+1:]...)
			if len(b.subs[sub.Topic]) == 0 {
				delete(b.subs, sub.Topic)
			}
			b.logger.Debug("bus unsubscribe", "topic", sub.Topic, "token", sub.Token)
			return nil
		}
	}
	return fmt.Errorf("unsubscribe %q: no subscription with token %s", sub.Topic, sub.Token)
}

// Publish delivers the payload to every handler subscribed to exactly this
// topic, in registration order, and returns once all have run. Publishing
// to a topic with no subscribers is a no-op.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.Lock()
	entries := b.subs[topic]
	// Copy so a handler that subscribes/unsubscribes mid-dispatch does not
	// perturb this delivery round.
	snapshot := make([]entry, len(entries))
	copy(snapshot, entries)
	b.mu.Unlock()

	b.logger.Debug("bus publish", "topic", topic, "subscribers", len(snapshot))

	msg := Message{Topic: topic, Payload: payload}
	for _, e := range snapshot {
		e.handler(msg)
	}
}

// SubscriberCount reports how many handlers are registered for a topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}
