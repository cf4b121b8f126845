package events

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
)

// subscriberBuffer is how many undelivered events a slow SSE client may queue
const subscriberBuffer = 16

// fanout delivers events to the in-process subscribers of each channel. A full
// subscriber misses the event and catches up on the next one, since every
// event carries the current version.
type fanout struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *entities.DatasetEvent]struct{}
	closed      bool
}

func newFanout() *fanout {
	return &fanout{subscribers: make(map[string]map[chan *entities.DatasetEvent]struct{})}
}

// add registers a subscriber. Once the fanout is closed the returned channel
// is already closed and ok is false.
func (f *fanout) add(channel string) (eventChan chan *entities.DatasetEvent, ok bool) {
	eventChan = make(chan *entities.DatasetEvent, subscriberBuffer)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(eventChan)
		return eventChan, false
	}
	if f.subscribers[channel] == nil {
		f.subscribers[channel] = make(map[chan *entities.DatasetEvent]struct{})
	}
	f.subscribers[channel][eventChan] = struct{}{}
	return eventChan, true
}

// broadcast returns how many subscribers received the event
func (f *fanout) broadcast(channel string, event *entities.DatasetEvent) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	delivered := 0
	for subscriber := range f.subscribers[channel] {
		select {
		case subscriber <- event:
			delivered++
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("Subscriber channel full, skipping event")
		}
	}
	return delivered
}

// remove closes one subscriber and reports whether it was the channel's last
func (f *fanout) remove(channel string, eventChan chan *entities.DatasetEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	subscribers := f.subscribers[channel]
	if _, ok := subscribers[eventChan]; !ok {
		return false
	}
	delete(subscribers, eventChan)
	close(eventChan)
	if len(subscribers) > 0 {
		return false
	}
	delete(f.subscribers, channel)
	return true
}

// closeChannel closes every subscriber of channel
func (f *fanout) closeChannel(channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for subscriber := range f.subscribers[channel] {
		close(subscriber)
	}
	delete(f.subscribers, channel)
}

// closeAll closes every subscriber; later add calls get a closed channel
func (f *fanout) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()

	for channel, subscribers := range f.subscribers {
		for subscriber := range subscribers {
			close(subscriber)
		}
		delete(f.subscribers, channel)
	}
	f.closed = true
}

func (f *fanout) count(channel string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers[channel])
}
