package dto

// RecordingSavedMessage travels the internal bus from the recording service
// to the viz pipeline once an artifact hits disk.
type RecordingSavedMessage struct {
	RecordingID string `json:"recording_id"`
	Filename    string `json:"filename"`
	Path        string `json:"path"`
	Description string `json:"description"`
	DurationMs  int64  `json:"duration_ms"`
}
