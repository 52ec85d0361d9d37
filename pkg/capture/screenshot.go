package capture

import "context"

// ScreenshotCapturer grabs a still of the window showing a target. The
// platform returns it as a png data URL, which is also the wire format the
// collector expects.
type ScreenshotCapturer interface {
	CaptureVisibleTarget(ctx context.Context, targetID string) (dataURL string, err error)
}
