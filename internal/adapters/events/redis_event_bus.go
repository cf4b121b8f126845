package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/doctordirectory/backend/internal/infrastructure/clients/redis"
)

// RedisEventBus carries dataset events between instances over Redis Pub/Sub.
// Each channel holds one Redis subscription, shared by all local subscribers
// and closed with the last of them.
type RedisEventBus struct {
	client      *redisclient.Client
	subscribers *fanout

	mu      sync.Mutex
	pubsubs map[string]*redis.PubSub

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:      client,
		subscribers: newFanout(),
		pubsubs:     make(map[string]*redis.PubSub),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Publish sends the event to every instance subscribed to channel
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.DatasetEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	receivers, err := b.client.Client().Publish(ctx, channel, data).Result()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().
		Str("channel", channel).
		Str("event_id", event.ID).
		Str("version", event.Version).
		Int64("receivers", receivers).
		Msg("Published dataset event")
	return nil
}

// Subscribe registers a local subscriber until ctx is cancelled. The Redis
// subscription is confirmed before returning, so no event published after
// Subscribe returns is missed.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.DatasetEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ctx.Err() != nil {
		eventChan, _ := b.subscribers.add(channel)
		return eventChan, nil
	}

	if _, ok := b.pubsubs[channel]; !ok {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		if _, err := pubsub.Receive(ctx); err != nil {
			_ = pubsub.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		b.pubsubs[channel] = pubsub
		go b.receive(channel, pubsub)
	}

	eventChan, _ := b.subscribers.add(channel)
	log.Info().Str("channel", channel).Int("subscribers", b.subscribers.count(channel)).Msg("Subscribed to channel")

	go func() {
		<-ctx.Done()
		b.dropSubscriber(channel, eventChan)
	}()

	return eventChan, nil
}

// receive decodes Redis messages until the subscription is closed
func (b *RedisEventBus) receive(channel string, pubsub *redis.PubSub) {
	for msg := range pubsub.Channel() {
		var event entities.DatasetEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("Failed to unmarshal event")
			continue
		}
		b.subscribers.broadcast(channel, &event)
	}
}

func (b *RedisEventBus) dropSubscriber(channel string, eventChan chan *entities.DatasetEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subscribers.remove(channel, eventChan) {
		if err := b.closePubSub(channel); err != nil {
			log.Error().Err(err).Str("channel", channel).Msg("Failed to close subscription")
		}
	}
}

// closePubSub must be called with b.mu held
func (b *RedisEventBus) closePubSub(channel string) error {
	pubsub, ok := b.pubsubs[channel]
	if !ok {
		return nil
	}
	delete(b.pubsubs, channel)
	if err := pubsub.Close(); err != nil {
		return fmt.Errorf("failed to close subscription %s: %w", channel, err)
	}
	log.Info().Str("channel", channel).Msg("Closed subscription")
	return nil
}

// Unsubscribe closes every local subscriber of channel and its Redis subscription
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers.closeChannel(channel)
	return b.closePubSub(channel)
}

// Close closes every subscription; later subscribers get a closed channel
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers.closeAll()
	var errs []error
	for channel := range b.pubsubs {
		if err := b.closePubSub(channel); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("errors closing event bus: %w", err)
	}

	log.Info().Msg("Event bus closed")
	return nil
}
