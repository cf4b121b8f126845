package entities

import (
	"time"

	"github.com/google/uuid"
)

// DatasetEventType represents the outcome of a regeneration cycle
type DatasetEventType string

const (
	DatasetEventTypeRegenerated        DatasetEventType = "dataset_regenerated"
	DatasetEventTypeRegenerationFailed DatasetEventType = "regeneration_failed"
)

// DatasetEvent notifies listeners that the served entity set changed (or did not)
type DatasetEvent struct {
	ID        string           `json:"id"`
	EventType DatasetEventType `json:"event_type"`
	Version   string           `json:"version"`
	Doctors   int              `json:"doctors"`
	Message   string           `json:"message,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewDatasetEvent creates an event describing the currently served version
func NewDatasetEvent(eventType DatasetEventType, version string, doctors int, message string) *DatasetEvent {
	return &DatasetEvent{
		ID:        uuid.NewString(),
		EventType: eventType,
		Version:   version,
		Doctors:   doctors,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}
