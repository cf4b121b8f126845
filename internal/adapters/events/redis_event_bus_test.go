package events

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/doctordirectory/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/doctordirectory/backend/pkg/config"
)

// newRedisClient starts a Redis container, or skips when Docker is unavailable
func newRedisClient(t *testing.T) *redisclient.Client {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	host, portText, err := net.SplitHostPort(opts.Addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portText)
	require.NoError(t, err)

	client, err := redisclient.NewClient(ctx, &config.RedisConfig{Enabled: true, Host: host, Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func receiveEvent(t *testing.T, ch <-chan *entities.DatasetEvent) *entities.DatasetEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "subscriber channel closed")
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
		return nil
	}
}

func requireClosed(t *testing.T, ch <-chan *entities.DatasetEvent) {
	t.Helper()
	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber channel not closed")
	}
}

func TestRedisEventBus_BroadcastAndUnsubscribe(t *testing.T) {
	client := newRedisClient(t)
	bus := NewRedisEventBus(client)
	defer bus.Close()

	ctx := context.Background()
	leaving, cancelLeaving := context.WithCancel(ctx)

	first, err := bus.Subscribe(leaving, providers.EventChannelDatasetUpdates)
	require.NoError(t, err)
	second, err := bus.Subscribe(ctx, providers.EventChannelDatasetUpdates)
	require.NoError(t, err)

	event := entities.NewDatasetEvent(entities.DatasetEventTypeRegenerated, "v1", 12, "")
	require.NoError(t, bus.Publish(ctx, providers.EventChannelDatasetUpdates, event))

	for _, ch := range []<-chan *entities.DatasetEvent{first, second} {
		got := receiveEvent(t, ch)
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, "v1", got.Version)
		assert.Equal(t, 12, got.Doctors)
	}

	cancelLeaving()
	requireClosed(t, first)

	failed := entities.NewDatasetEvent(entities.DatasetEventTypeRegenerationFailed, "v1", 12, "regeneration failed")
	require.NoError(t, bus.Publish(ctx, providers.EventChannelDatasetUpdates, failed))
	assert.Equal(t, entities.DatasetEventTypeRegenerationFailed, receiveEvent(t, second).EventType)

	require.NoError(t, bus.Unsubscribe(ctx, providers.EventChannelDatasetUpdates))
	requireClosed(t, second)
}

func TestRedisEventBus_ResubscribesAfterLastSubscriberLeft(t *testing.T) {
	client := newRedisClient(t)
	bus := NewRedisEventBus(client)
	defer bus.Close()

	ctx := context.Background()
	once, cancel := context.WithCancel(ctx)
	ch, err := bus.Subscribe(once, providers.EventChannelDatasetUpdates)
	require.NoError(t, err)
	cancel()
	requireClosed(t, ch)

	again, err := bus.Subscribe(ctx, providers.EventChannelDatasetUpdates)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, providers.EventChannelDatasetUpdates,
		entities.NewDatasetEvent(entities.DatasetEventTypeRegenerated, "v2", 3, "")))
	assert.Equal(t, "v2", receiveEvent(t, again).Version)
}

func TestRedisEventBus_CloseClosesSubscribers(t *testing.T) {
	client := newRedisClient(t)
	bus := NewRedisEventBus(client)

	ch, err := bus.Subscribe(context.Background(), providers.EventChannelDatasetUpdates)
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	requireClosed(t, ch)

	late, err := bus.Subscribe(context.Background(), providers.EventChannelDatasetUpdates)
	require.NoError(t, err)
	requireClosed(t, late)
}
