// Package eventbus provides an in-process, topic-keyed publish/subscribe bus.
package eventbus

import (
	"log/slog"
	"sync"
)

// Handler receives events published on a topic. Handlers run on the
// publisher's goroutine and must not block.
type Handler[E any] func(E)

// Bus fans events out to the handlers subscribed to a topic.
// Delivery is synchronous and follows registration order.
type Bus[E any] struct {
	mu     sync.RWMutex
	topics map[string][]*Subscription[E]
	logger *slog.Logger
}

// New creates an empty Bus
func New[E any](logger *slog.Logger) *Bus[E] {
	return &Bus[E]{
		topics: make(map[string][]*Subscription[E]),
		logger: logger.With(slog.String("component", "eventbus")),
	}
}

// Subscription is the handle returned by Subscribe
type Subscription[E any] struct {
	bus     *Bus[E]
	topic   string
	handler Handler[E]
	once    sync.Once
	done    chan struct{}
}

// Topic returns the topic the subscription listens on
func (s *Subscription[E]) Topic() string {
	return s.topic
}

// Done is closed once the subscription has been removed, either by
// Unsubscribe or by the topic being closed.
func (s *Subscription[E]) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe removes the handler from the bus. Calling it more than once is a no-op.
func (s *Subscription[E]) Unsubscribe() {
	s.bus.remove(s)
}

// Subscribe registers handler for topic
func (b *Bus[E]) Subscribe(topic string, handler Handler[E]) *Subscription[E] {
	sub := &Subscription[E]{
		bus:     b,
		topic:   topic,
		handler: handler,
		done:    make(chan struct{}),
	}

	b.mu.Lock()
	b.topics[topic] = append(b.topics[topic], sub)
	count := len(b.topics[topic])
	b.mu.Unlock()

	b.logger.Debug("subscribed", slog.String("topic", topic), slog.Int("subscribers", count))
	return sub
}

// Publish delivers event to every current subscriber of topic, in
// registration order, before returning. Events on a topic with no
// subscribers are dropped.
func (b *Bus[E]) Publish(topic string, event E) {
	b.mu.RLock()
	subs := append([]*Subscription[E](nil), b.topics[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-sub.done:
			continue
		default:
		}
		sub.handler(event)
	}
}

// CloseTopic removes every subscription on topic and closes their Done channels
func (b *Bus[E]) CloseTopic(topic string) {
	b.mu.Lock()
	subs := b.topics[topic]
	delete(b.topics, topic)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.once.Do(func() { close(sub.done) })
	}
	if len(subs) > 0 {
		b.logger.Debug("topic closed", slog.String("topic", topic), slog.Int("subscribers", len(subs)))
	}
}

// SubscriberCount returns the number of live subscriptions on topic
func (b *Bus[E]) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

func (b *Bus[E]) remove(sub *Subscription[E]) {
	sub.once.Do(func() {
		b.mu.Lock()
		subs := b.topics[sub.topic]
		for i, s := range subs {
			if s == sub {
				subs = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(subs) == 0 {
			delete(b.topics, sub.topic)
		} else {
			b.topics[sub.topic] = subs
		}
		b.mu.Unlock()

		close(sub.done)
		b.logger.Debug("unsubscribed", slog.String("topic", sub.topic))
	})
}
