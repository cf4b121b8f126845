package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/providers"
)

func TestMemoryEventBus_PublishReachesSubscribers(t *testing.T) {
	bus := NewMemoryEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := bus.Subscribe(ctx, providers.EventChannelDatasetUpdates)
	require.NoError(t, err)
	second, err := bus.Subscribe(ctx, providers.EventChannelDatasetUpdates)
	require.NoError(t, err)

	event := entities.NewDatasetEvent(entities.DatasetEventTypeRegenerated, "v1", 3, "")
	require.NoError(t, bus.Publish(ctx, providers.EventChannelDatasetUpdates, event))

	for _, ch := range []<-chan *entities.DatasetEvent{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, "v1", got.Version)
			assert.Equal(t, 3, got.Doctors)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestMemoryEventBus_CancelledSubscriberIsClosed(t *testing.T) {
	bus := NewMemoryEventBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := bus.Subscribe(ctx, providers.EventChannelDatasetUpdates)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscriber channel not closed")
	}

	// Publishing after the subscriber left must not panic.
	event := entities.NewDatasetEvent(entities.DatasetEventTypeRegenerationFailed, "v1", 3, "source down")
	assert.NoError(t, bus.Publish(context.Background(), providers.EventChannelDatasetUpdates, event))
}

func TestMemoryEventBus_CloseClosesSubscribers(t *testing.T) {
	bus := NewMemoryEventBus()

	ch, err := bus.Subscribe(context.Background(), providers.EventChannelDatasetUpdates)
	require.NoError(t, err)

	require.NoError(t, bus.Close())

	_, ok := <-ch
	assert.False(t, ok)

	late, err := bus.Subscribe(context.Background(), providers.EventChannelDatasetUpdates)
	require.NoError(t, err)
	_, ok = <-late
	assert.False(t, ok)
}
