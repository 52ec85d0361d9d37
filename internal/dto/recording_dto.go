package dto

type StartRecordingRequest struct {
	TabID       FlexID `json:"tabId"`
	RecordingID string `json:"recordingId" validate:"required"`
	Description string `json:"description"`
	Timestamp   int64  `json:"timestamp"`
}

type StartRecordingResponse struct {
	RecordingID string `json:"recordingId"`
}

type StopRecordingRequest struct {
	TabID       FlexID `json:"tabId"`
	RecordingID string `json:"recordingId" validate:"required"`
	Timestamp   int64  `json:"timestamp"`
}

type StopRecordingResponse struct {
	Path string `json:"path"`
}

// RecordingDataRequest carries the finished artifact as a base64 data URL.
type RecordingDataRequest struct {
	Data        string `json:"data" validate:"required"`
	Description string `json:"description"`
	Duration    int64  `json:"duration"`
	Timestamp   int64  `json:"timestamp"`
}

type RecordingDataResponse struct {
	Filename string `json:"filename"`
}
