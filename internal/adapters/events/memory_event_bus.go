package events

import (
	"context"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/providers"
)

// MemoryEventBus delivers events within one process. It backs the SSE stream
// when Redis is disabled.
type MemoryEventBus struct {
	subscribers *fanout
}

// NewMemoryEventBus creates an in-process event bus
func NewMemoryEventBus() providers.EventBus {
	return &MemoryEventBus{subscribers: newFanout()}
}

// Publish fans the event out to current subscribers without blocking
func (b *MemoryEventBus) Publish(ctx context.Context, channel string, event *entities.DatasetEvent) error {
	b.subscribers.broadcast(channel, event)
	return nil
}

// Subscribe registers a subscriber until ctx is cancelled
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.DatasetEvent, error) {
	eventChan, ok := b.subscribers.add(channel)
	if ok {
		go func() {
			<-ctx.Done()
			b.subscribers.remove(channel, eventChan)
		}()
	}
	return eventChan, nil
}

// Unsubscribe closes every subscriber of the channel
func (b *MemoryEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.subscribers.closeChannel(channel)
	return nil
}

// Close closes all subscriptions; later subscribers get a closed channel
func (b *MemoryEventBus) Close() error {
	b.subscribers.closeAll()
	return nil
}
