package notify

import "sync"

// Observer tracks a single subscription that can be switched on and off.
// Starting an already started observer is a no-op.
type Observer struct {
	hub   *Hub
	sub   *Subscription
	fn    Handler
	topic string
	mu    sync.Mutex
}

// NewObserver creates a stopped observer for topic.
func NewObserver(hub *Hub, topic string, fn Handler) *Observer {
	return &Observer{hub: hub, topic: topic, fn: fn}
}

// Start subscribes the handler.
func (o *Observer) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.sub != nil {
		return
	}
	o.sub = o.hub.Subscribe(o.topic, o, o.fn)
}

// Stop removes the subscription.
func (o *Observer) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.sub == nil {
		return
	}
	o.hub.Unsubscribe(o, o.sub)
	o.sub = nil
}

// Active reports whether the observer is subscribed.
func (o *Observer) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sub != nil
}
