package dto

type CurrentURLRequest struct {
	URL       string `json:"url" validate:"required"`
	TabID     FlexID `json:"tabId"`
	Timestamp int64  `json:"timestamp"`
	Source    string `json:"source"`
}

type CurrentURLResponse struct {
	Status string `json:"status"`
	URL    string `json:"url"`
}
