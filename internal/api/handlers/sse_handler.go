package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/doctordirectory/backend/internal/domain/entities"
	"github.com/zatekoja/doctordirectory/backend/internal/domain/providers"
)

const defaultHeartbeatInterval = 30 * time.Second

// CurrentDataset exposes the dataset being served
type CurrentDataset interface {
	Current() *entities.Dataset
}

// SSEHandler streams dataset regeneration events to connected clients
type SSEHandler struct {
	eventBus  providers.EventBus
	dataset   CurrentDataset
	heartbeat time.Duration
	clients   map[chan *entities.DatasetEvent]struct{}
	mu        sync.RWMutex
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus, dataset CurrentDataset) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		dataset:   dataset,
		heartbeat: defaultHeartbeatInterval,
		clients:   make(map[chan *entities.DatasetEvent]struct{}),
	}
}

// WithHeartbeat overrides the heartbeat interval
func (h *SSEHandler) WithHeartbeat(interval time.Duration) *SSEHandler {
	h.heartbeat = interval
	return h
}

// StreamDatasetUpdates handles GET /api/stream/dataset
func (h *SSEHandler) StreamDatasetUpdates(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ctx := r.Context()
	eventChan, err := h.eventBus.Subscribe(ctx, providers.EventChannelDatasetUpdates)
	if err != nil {
		log.Error().Err(err).Str("channel", providers.EventChannelDatasetUpdates).Msg("Failed to subscribe to channel")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	// Streams outlive the server's write timeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Debug().Err(err).Msg("Write deadline not adjustable for SSE stream")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := make(chan *entities.DatasetEvent, 10)
	h.registerClient(clientChan)
	defer h.unregisterClient(clientChan)

	connected := map[string]interface{}{"timestamp": time.Now().UTC()}
	if current := h.dataset.Current(); current != nil {
		connected["version"] = current.Version
		connected["doctors"] = len(current.Doctors)
	}
	h.sendEvent(w, "connected", connected)
	flusher.Flush()

	go h.forwardEvents(ctx, eventChan, clientChan)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Client disconnected from dataset stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now().UTC(),
			})
			flusher.Flush()
		case event := <-clientChan:
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

// forwardEvents forwards events from the event bus to a client channel
func (h *SSEHandler) forwardEvents(ctx context.Context, eventChan <-chan *entities.DatasetEvent, clientChan chan<- *entities.DatasetEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			select {
			case clientChan <- event:
			default:
				log.Warn().Str("event_id", event.ID).Msg("SSE client too slow, skipping event")
			}
		}
	}
}

func (h *SSEHandler) registerClient(clientChan chan *entities.DatasetEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[clientChan] = struct{}{}
	log.Debug().Int("clients", len(h.clients)).Msg("SSE client registered")
}

func (h *SSEHandler) unregisterClient(clientChan chan *entities.DatasetEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, clientChan)
	log.Debug().Int("clients", len(h.clients)).Msg("SSE client unregistered")
}

// sendEvent writes one SSE frame
func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("Failed to marshal event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of connected clients
func (h *SSEHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
