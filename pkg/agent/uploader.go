package agent

import (
	"context"
	"fmt"
	"time"

	"browser-connector-be/pkg/collector"
	"browser-connector-be/pkg/retry"
)

// UploadMetadata travels with the finished artifact.
type UploadMetadata struct {
	Description string
	Duration    time.Duration
	Timestamp   time.Time
}

// Uploader hands a finished artifact to the collector. One POST per call; the
// session-stop flow treats a failure as "saved locally", never as a failed
// recording.
type Uploader struct {
	client *collector.Client
	policy retry.Policy
}

func NewUploader(client *collector.Client) *Uploader {
	return &Uploader{
		client: client,
		policy: retry.NoRetry(collector.PushTimeout),
	}
}

// Upload converts the artifact to its transport encoding and POSTs it.
// Returns the filename the collector stored it under.
func (u *Uploader) Upload(ctx context.Context, artifact []byte, meta UploadMetadata) (string, error) {
	var filename string
	err := u.policy.Do(ctx, func(ctx context.Context) error {
		name, err := u.client.UploadRecording(ctx, artifact, meta.Description, meta.Duration)
		if err != nil {
			return err
		}
		filename = name
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return filename, nil
}
