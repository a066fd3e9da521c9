package notify

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/dmitrymomot/socialauth/pkg/logger"
)

// CredentialRevoked is published when the platform revokes an Apple credential.
const CredentialRevoked = "ANCredentialRevokedNotification"

// Handler is invoked synchronously on the publishing goroutine.
type Handler func(topic string)

// Subscription is a handle returned by Subscribe.
type Subscription struct {
	owner any
	fn    Handler
	topic string
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string {
	return s.topic
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the logger used to report recovered handler panics.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// Hub is a process-wide publish/subscribe channel keyed by topic.
// Publishing a topic nobody listens to is a no-op.
type Hub struct {
	logger *slog.Logger
	subs   map[string][]*Subscription
	mu     sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		logger: logger.NewNope(),
		subs:   make(map[string][]*Subscription),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers fn for topic on behalf of owner.
// owner groups subscriptions for Unsubscribe and should be a comparable value
// such as a pointer. A non-comparable owner never matches, so its
// subscriptions can only be removed through their handle.
func (h *Hub) Subscribe(topic string, owner any, fn Handler) *Subscription {
	sub := &Subscription{owner: owner, fn: fn, topic: topic}

	h.mu.Lock()
	h.subs[topic] = append(h.subs[topic], sub)
	h.mu.Unlock()

	return sub
}

// Unsubscribe removes sub. When sub is nil every subscription held by owner
// is removed.
func (h *Hub) Unsubscribe(owner any, sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for topic, list := range h.subs {
		kept := list[:0:0]
		for _, s := range list {
			if sub != nil && s == sub {
				continue
			}
			if sub == nil && sameOwner(s.owner, owner) {
				continue
			}
			kept = append(kept, s)
		}
		if len(kept) == 0 {
			delete(h.subs, topic)
			continue
		}
		h.subs[topic] = kept
	}
}

// sameOwner reports whether a and b are the same owner without panicking on
// values such as slices, maps or funcs.
func sameOwner(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}

// Publish delivers topic to a snapshot of its subscribers.
// Subscriptions added or removed by a handler take effect on the next Publish.
func (h *Hub) Publish(topic string) int {
	h.mu.RLock()
	list := append([]*Subscription(nil), h.subs[topic]...)
	h.mu.RUnlock()

	for _, s := range list {
		h.deliver(s, topic)
	}
	return len(list)
}

// Subscribers returns how many handlers listen on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}

func (h *Hub) deliver(s *Subscription, topic string) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("notification handler panicked",
				slog.String("topic", topic),
				slog.Any("error", fmt.Errorf("%w: %v", ErrHandlerPanic, r)),
			)
		}
	}()
	s.fn(topic)
}

var defaultHub = NewHub()

// Default returns the process-wide hub.
func Default() *Hub {
	return defaultHub
}
