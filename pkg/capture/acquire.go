package capture

import (
	"context"
	"errors"
	"fmt"
)

// Bounds applied to every capture, matching what common playback tooling
// handles without transcoding.
type Constraints struct {
	MaxWidth     int
	MaxHeight    int
	MaxFrameRate int
}

func DefaultConstraints() Constraints {
	return Constraints{MaxWidth: 1920, MaxHeight: 1080, MaxFrameRate: 30}
}

const (
	MimeTypeTabRecording     = "video/webm;codecs=vp9,opus"
	MimeTypeDesktopRecording = "video/webm;codecs=vp9"
)

// Typed acquisition failures. Callers branch on these to decide between a
// fallback acquisition method and surfacing the error to the user.
var (
	ErrPermissionDenied   = errors.New("capture: permission denied")
	ErrInvalidStreamToken = errors.New("capture: invalid or expired stream token")
	ErrNoActiveTarget     = errors.New("capture: no active capture target")
)

// TabCapturer acquires combined audio/video scoped to one tab. The direct
// path can fail in contexts without user activation; MediaStreamID plus
// CaptureWithStreamID is the fallback route.
type TabCapturer interface {
	CaptureTab(ctx context.Context, targetID string, c Constraints) (*Stream, error)
	MediaStreamID(ctx context.Context, targetID string) (string, error)
	CaptureWithStreamID(ctx context.Context, streamID string, c Constraints) (*Stream, error)
}

// DesktopCapturer acquires a video-only stream for a screen/window source
// chosen through the platform picker.
type DesktopCapturer interface {
	PickSource(ctx context.Context) (streamID string, err error)
	CaptureDesktop(ctx context.Context, streamID string, c Constraints) (*Stream, error)
}

// MicrophoneCapturer acquires a standalone microphone audio track.
type MicrophoneCapturer interface {
	CaptureMicrophone(ctx context.Context) (*Track, error)
}

// Acquisition fronts the platform capture surface and applies the
// microphone-overlay rules per recording kind. Bounds are fixed at
// construction and applied to every capture.
type Acquisition struct {
	tabs        TabCapturer
	desktop     DesktopCapturer
	mic         MicrophoneCapturer
	constraints Constraints
}

func NewAcquisition(tabs TabCapturer, desktop DesktopCapturer, mic MicrophoneCapturer, c Constraints) *Acquisition {
	defaults := DefaultConstraints()
	if c.MaxWidth <= 0 {
		c.MaxWidth = defaults.MaxWidth
	}
	if c.MaxHeight <= 0 {
		c.MaxHeight = defaults.MaxHeight
	}
	if c.MaxFrameRate <= 0 {
		c.MaxFrameRate = defaults.MaxFrameRate
	}
	return &Acquisition{tabs: tabs, desktop: desktop, mic: mic, constraints: c}
}

// AcquireTab captures a tab. With the microphone requested, the mic audio is
// mixed with the tab audio into a single track that replaces the original tab
// audio; the video track is untouched and the result carries exactly one
// audio track.
func (a *Acquisition) AcquireTab(ctx context.Context, targetID string, withMic bool) (*Stream, error) {
	c := a.constraints

	stream, err := a.tabs.CaptureTab(ctx, targetID, c)
	if err != nil {
		// One fallback via the stream-id route before giving up.
		streamID, idErr := a.tabs.MediaStreamID(ctx, targetID)
		if idErr != nil {
			return nil, fmt.Errorf("tab capture failed (%w) and fallback failed: %w", err, idErr)
		}
		stream, err = a.tabs.CaptureWithStreamID(ctx, streamID, c)
		if err != nil {
			return nil, err
		}
	}

	if !withMic {
		return stream, nil
	}

	micTrack, err := a.mic.CaptureMicrophone(ctx)
	if err != nil {
		stream.StopAll()
		return nil, err
	}

	audio := stream.AudioTracks()
	if len(audio) == 0 {
		stream.StopAll()
		micTrack.Stop()
		return nil, errors.New("capture: tab stream has no audio track to mix with")
	}

	mixed, err := MixAudio(audio[0], micTrack)
	if err != nil {
		stream.StopAll()
		micTrack.Stop()
		return nil, err
	}

	stream.ReplaceAudioTrack(mixed)
	stream.SetMicTrack(micTrack)
	return stream, nil
}

// AcquireDesktop captures the chosen screen/window source. The microphone, if
// requested, rides along as a second independent track since there is no
// competing desktop audio to mix against.
func (a *Acquisition) AcquireDesktop(ctx context.Context, withMic bool) (*Stream, error) {
	streamID, err := a.desktop.PickSource(ctx)
	if err != nil {
		return nil, err
	}

	stream, err := a.desktop.CaptureDesktop(ctx, streamID, a.constraints)
	if err != nil {
		return nil, err
	}

	if withMic {
		micTrack, err := a.mic.CaptureMicrophone(ctx)
		if err != nil {
			stream.StopAll()
			return nil, err
		}
		stream.AddTrack(micTrack)
		stream.SetMicTrack(micTrack)
	}

	return stream, nil
}
