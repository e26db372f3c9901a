package eventbus

import (
	evbus "github.com/asaskevich/EventBus"
)

// Bus is a process-local publish/subscribe hub. Handlers registered with
// Subscribe run synchronously inside Publish.
type Bus struct {
	bus evbus.Bus
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{bus: evbus.New()}
}

// Publish delivers args to every handler of topic.
func (b *Bus) Publish(topic string, args ...interface{}) {
	if b == nil {
		return
	}
	b.bus.Publish(topic, args...)
}

// Subscribe registers a synchronous handler for topic.
func (b *Bus) Subscribe(topic string, fn interface{}) error {
	return b.bus.Subscribe(topic, fn)
}

// SubscribeAsync registers a handler that runs on its own goroutine.
// Transactional handlers for the same topic run one at a time.
func (b *Bus) SubscribeAsync(topic string, fn interface{}, transactional bool) error {
	return b.bus.SubscribeAsync(topic, fn, transactional)
}

// Unsubscribe removes a previously registered handler.
func (b *Bus) Unsubscribe(topic string, fn interface{}) error {
	return b.bus.Unsubscribe(topic, fn)
}

// HasSubscribers reports whether topic has at least one handler.
func (b *Bus) HasSubscribers(topic string) bool {
	return b.bus.HasCallback(topic)
}

// WaitAsync blocks until all async handlers have returned.
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}
