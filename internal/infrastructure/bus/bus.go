// Package bus carries "something changed" notifications between the code
// that writes entities and the views that must be rebuilt. Deliveries are
// debounced per subscription on the trailing edge.
package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"delegation-service/pkg/logger"
	"delegation-service/pkg/metrics"
)

// Topic names a category of entity that changed
type Topic string

const (
	TopicMember     Topic = "member"
	TopicDelegation Topic = "delegation"
	TopicSession    Topic = "session"
	TopicEvent      Topic = "event"
	TopicGeneric    Topic = "generic"
)

// DefaultWindow is the quiet period used when none is configured
const DefaultWindow = 100 * time.Millisecond

// AllTopics returns every known topic
func AllTopics() []Topic {
	return []Topic{TopicMember, TopicDelegation, TopicSession, TopicEvent, TopicGeneric}
}

// ParseTopic validates a topic name
func ParseTopic(name string) (Topic, error) {
	for _, t := range AllTopics() {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown topic %q", name)
}

// Handler is invoked once per coalesced burst
type Handler func(ctx context.Context) error

// Publisher is the write side of the bus
type Publisher interface {
	Publish(topic Topic)
}

// Bus is an in-process publish/subscribe channel with per-subscription debounce
type Bus struct {
	mu     sync.Mutex
	window time.Duration
	subs   map[Topic][]*subscription
	nextID uint64
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger  logger.Logger
	metrics *metrics.Metrics
}

type subscription struct {
	id      uint64
	topics  []Topic
	handler Handler
	run     sync.Mutex // one invocation at a time

	// guarded by Bus.mu
	timer   *time.Timer
	gen     uint64
	pending Topic
	active  bool
}

// Option configures a Bus
type Option func(*Bus)

// WithWindow sets the debounce quiet window
func WithWindow(window time.Duration) Option {
	return func(b *Bus) {
		if window > 0 {
			b.window = window
		}
	}
}

// WithMetrics records publishes, deliveries and handler failures
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Bus) {
		b.metrics = m
	}
}

// New creates a bus. Close it to stop pending deliveries.
func New(log logger.Logger, opts ...Option) *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bus{
		window: DefaultWindow,
		subs:   make(map[Topic][]*subscription),
		ctx:    ctx,
		cancel: cancel,
		logger: log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Window returns the configured quiet window
func (b *Bus) Window() time.Duration {
	return b.window
}

// Subscribe registers handler for topic and returns a function that removes it.
func (b *Bus) Subscribe(topic Topic, handler Handler) (unsubscribe func()) {
	return b.SubscribeTopics(handler, topic)
}

// SubscribeTopics registers one handler for several topics sharing a single
// debounce timer, so a burst spanning topics still yields one invocation.
func (b *Bus) SubscribeTopics(handler Handler, topics ...Topic) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription{
		id:      b.nextID,
		topics:  uniqueTopics(topics),
		handler: handler,
		active:  true,
	}
	for _, t := range sub.topics {
		b.subs[t] = append(b.subs[t], sub)
	}

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub) })
	}
}

func (b *Bus) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub.active = false
	if sub.timer != nil {
		sub.timer.Stop()
		sub.timer = nil
	}
	for _, t := range sub.topics {
		list := b.subs[t]
		for i, el := range list {
			if el == sub {
				b.subs[t] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(b.subs[t]) == 0 {
			delete(b.subs, t)
		}
	}
}

// Publish signals that entities of topic changed. Every subscription of the
// topic gets its pending timer reset; the handler runs once the window has
// elapsed since the last publish.
func (b *Bus) Publish(topic Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	if b.metrics != nil {
		b.metrics.Publishes.WithLabelValues(string(topic)).Inc()
	}

	for _, sub := range b.subs[topic] {
		b.schedule(sub, topic)
	}
}

// schedule must be called with b.mu held
func (b *Bus) schedule(sub *subscription, topic Topic) {
	if sub.timer != nil {
		sub.timer.Stop()
	}
	sub.gen++
	sub.pending = topic
	gen := sub.gen
	sub.timer = time.AfterFunc(b.window, func() {
		b.fire(sub, gen)
	})
}

func (b *Bus) fire(sub *subscription, gen uint64) {
	b.mu.Lock()
	if b.closed || !sub.active || sub.gen != gen {
		// superseded by a later publish or removed
		b.mu.Unlock()
		return
	}
	sub.timer = nil
	topic := sub.pending
	b.wg.Add(1)
	b.mu.Unlock()

	defer b.wg.Done()
	b.invoke(sub, topic)
}

func (b *Bus) invoke(sub *subscription, topic Topic) {
	sub.run.Lock()
	defer sub.run.Unlock()
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Invalidation handler panicked",
				"topic", topic,
				"subscription", sub.id,
				"panic", r)
			b.countFailure(topic)
		}
	}()

	if b.metrics != nil {
		b.metrics.Deliveries.WithLabelValues(string(topic)).Inc()
	}
	if err := sub.handler(b.ctx); err != nil {
		b.logger.Error("Invalidation handler failed",
			"topic", topic,
			"subscription", sub.id,
			"error", err)
		b.countFailure(topic)
	}
}

func (b *Bus) countFailure(topic Topic) {
	if b.metrics != nil {
		b.metrics.HandlerFailures.WithLabelValues(string(topic)).Inc()
	}
}

// Close drops pending deliveries and waits for running handlers to return
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, list := range b.subs {
		for _, sub := range list {
			if sub.timer != nil {
				sub.timer.Stop()
				sub.timer = nil
			}
		}
	}
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
}

func uniqueTopics(topics []Topic) []Topic {
	out := make([]Topic, 0, len(topics))
	seen := make(map[Topic]bool, len(topics))
	for _, t := range topics {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
