package dto

// ScreenshotRequest carries a captured image as a png data URL. Path is an
// optional save location hint from the client.
type ScreenshotRequest struct {
	Data string `json:"data" validate:"required"`
	Path string `json:"path"`
}

type ScreenshotResponse struct {
	Path string `json:"path"`
}
