package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "RECORDING_SAVED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Well-known event types emitted by the connector.
const (
	TypeRecordingStarted = "RECORDING_STARTED"
	TypeRecordingStopped = "RECORDING_STOPPED"
	TypeRecordingSaved   = "RECORDING_SAVED"
	TypeScreenshotSaved  = "SCREENSHOT_SAVED"
	TypeURLVisited       = "URL_VISITED"
)

// NewRecordingStarted builds the event published when a start announcement
// arrives from the extension.
func NewRecordingStarted(recordingID, tabID, description string) BaseEvent {
	return BaseEvent{
		Type: TypeRecordingStarted,
		Data: map[string]interface{}{
			"recording_id": recordingID,
			"tab_id":       tabID,
			"description":  description,
		},
		OccurredAt: time.Now(),
	}
}

// NewRecordingStopped builds the event published on a stop announcement. The
// path is where the artifact is expected to land once uploaded.
func NewRecordingStopped(recordingID, path string) BaseEvent {
	return BaseEvent{
		Type: TypeRecordingStopped,
		Data: map[string]interface{}{
			"recording_id": recordingID,
			"path":         path,
		},
		OccurredAt: time.Now(),
	}
}

// NewScreenshotSaved builds the event published after a screenshot has been
// written to disk.
func NewScreenshotSaved(path string, sizeBytes int64) BaseEvent {
	return BaseEvent{
		Type: TypeScreenshotSaved,
		Data: map[string]interface{}{
			"path":       path,
			"size_bytes": sizeBytes,
		},
		OccurredAt: time.Now(),
	}
}

// NewRecordingSaved builds the event published after an artifact has been
// written to disk. The filename is relative to the recordings directory.
func NewRecordingSaved(recordingID, filename string, durationMs int64) BaseEvent {
	return BaseEvent{
		Type: TypeRecordingSaved,
		Data: map[string]interface{}{
			"recording_id": recordingID,
			"filename":     filename,
			"duration_ms":  durationMs,
		},
		OccurredAt: time.Now(),
	}
}

// NewURLVisited builds the navigation telemetry event.
func NewURLVisited(tabID, url, source string) BaseEvent {
	return BaseEvent{
		Type: TypeURLVisited,
		Data: map[string]interface{}{
			"tab_id": tabID,
			"url":    url,
			"source": source,
		},
		OccurredAt: time.Now(),
	}
}
