package agent

import (
	"context"
	"sync"
	"time"

	"browser-connector-be/internal/pkg/logger"
	"browser-connector-be/pkg/capture"
	"browser-connector-be/pkg/collector"
)

// DesktopTargetID keys desktop sessions; unlike tabs there is only one
// desktop per browser profile.
const DesktopTargetID = "desktop"

// Outcome distinguishes remote durability from local completion. A session
// whose upload failed still completed; the artifact just never left the
// machine.
type Outcome string

const (
	OutcomeUploaded     Outcome = "uploaded"
	OutcomeSavedLocally Outcome = "saved_locally"
)

type StartRequest struct {
	TargetID          string
	Kind              Kind
	IncludeMicrophone bool
	Description       string
	FlushInterval     time.Duration
}

type StopResult struct {
	SessionID  string
	Outcome    Outcome
	RemotePath string
	Filename   string
	Duration   time.Duration
}

// Engine coordinates the full capture flow: identity gate, registry
// transition, acquisition, recording, and the stop/upload handoff.
type Engine struct {
	registry    *Registry
	acquisition *capture.Acquisition
	client      *collector.Client
	uploader    *Uploader
	screenshots capture.ScreenshotCapturer
	newEncoder  capture.EncoderFactory
	logger      logger.ILogger

	mu        sync.Mutex
	recorders map[string]*Recorder
}

func NewEngine(
	registry *Registry,
	acquisition *capture.Acquisition,
	client *collector.Client,
	uploader *Uploader,
	screenshots capture.ScreenshotCapturer,
	newEncoder capture.EncoderFactory,
	log logger.ILogger,
) *Engine {
	return &Engine{
		registry:    registry,
		acquisition: acquisition,
		client:      client,
		uploader:    uploader,
		screenshots: screenshots,
		newEncoder:  newEncoder,
		logger:      log,
		recorders:   make(map[string]*Recorder),
	}
}

// StartRecording runs the begin flow. Gate and acquisition failures surface
// synchronously; a failed start-announcement does not abort the recording.
func (e *Engine) StartRecording(ctx context.Context, req StartRequest) (string, error) {
	if !e.client.ValidateIdentity(ctx) {
		return "", ErrNotConnected
	}

	targetID := req.TargetID
	if req.Kind == DesktopRecording && targetID == "" {
		targetID = DesktopTargetID
	}

	session, err := e.registry.Begin(targetID, req.Kind, req.IncludeMicrophone, req.Description)
	if err != nil {
		return "", err
	}

	stream, mimeType, err := e.acquire(ctx, req.Kind, targetID, req.IncludeMicrophone)
	if err != nil {
		e.registry.Fail(session.ID)
		return "", err
	}

	encoder, err := e.newEncoder(stream, mimeType)
	if err != nil {
		stream.StopAll()
		e.registry.Fail(session.ID)
		return "", err
	}

	recorder := NewRecorder(e.registry, session.ID, stream, encoder)
	recorder.OnExternalStop(func() {
		// Converge the revocation path on the normal finish logic.
		if _, err := e.finalize(context.Background(), session.ID); err != nil {
			e.logger.Warn("Engine", "Finalize after external stop failed", map[string]interface{}{
				"session_id": session.ID,
				"error":      err.Error(),
			})
		}
	})

	if err := recorder.Start(req.FlushInterval); err != nil {
		stream.StopAll()
		e.registry.Fail(session.ID)
		return "", err
	}

	e.mu.Lock()
	e.recorders[session.ID] = recorder
	e.mu.Unlock()

	if err := e.client.AnnounceStart(ctx, targetID, session.ID, req.Description); err != nil {
		// Recording is already running; the announcement is best-effort.
		e.logger.Warn("Engine", "Failed to announce recording start", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
	}

	e.logger.Info("Engine", "Recording started", map[string]interface{}{
		"session_id": session.ID,
		"target_id":  targetID,
		"kind":       string(req.Kind),
		"microphone": req.IncludeMicrophone,
	})
	return session.ID, nil
}

func (e *Engine) acquire(ctx context.Context, kind Kind, targetID string, withMic bool) (*capture.Stream, string, error) {
	switch kind {
	case DesktopRecording:
		stream, err := e.acquisition.AcquireDesktop(ctx, withMic)
		mimeType := capture.MimeTypeDesktopRecording
		if withMic {
			mimeType = capture.MimeTypeTabRecording
		}
		return stream, mimeType, err
	default:
		stream, err := e.acquisition.AcquireTab(ctx, targetID, withMic)
		return stream, capture.MimeTypeTabRecording, err
	}
}

// StopRecording stops the active session for a target and runs the upload
// handoff. Upload failure downgrades the result to saved-locally; it never
// fails the stop.
func (e *Engine) StopRecording(ctx context.Context, targetID string) (*StopResult, error) {
	session, ok := e.registry.ActiveSession(targetID)
	if !ok {
		return nil, ErrNoActiveRecording
	}

	e.mu.Lock()
	recorder := e.recorders[session.ID]
	e.mu.Unlock()
	if recorder != nil {
		recorder.Stop()
	}

	return e.finalize(ctx, session.ID)
}

// Pause suspends the active recording for a target; a no-op when nothing is
// recording.
func (e *Engine) Pause(targetID string) {
	if recorder := e.activeRecorder(targetID); recorder != nil {
		recorder.Pause()
	}
}

func (e *Engine) Resume(targetID string) {
	if recorder := e.activeRecorder(targetID); recorder != nil {
		recorder.Resume()
	}
}

// SetMuted toggles the audio of the active recording for a target.
func (e *Engine) SetMuted(targetID string, muted bool) {
	if recorder := e.activeRecorder(targetID); recorder != nil {
		recorder.Mute(muted)
	}
}

// CaptureScreenshot grabs a still of the target's window and uploads it.
// Gated by the identity probe like every other collector-bound operation.
func (e *Engine) CaptureScreenshot(ctx context.Context, targetID, path string) (string, error) {
	if !e.client.ValidateIdentity(ctx) {
		return "", ErrNotConnected
	}

	dataURL, err := e.screenshots.CaptureVisibleTarget(ctx, targetID)
	if err != nil {
		return "", err
	}
	return e.client.UploadScreenshot(ctx, dataURL, path)
}

func (e *Engine) activeRecorder(targetID string) *Recorder {
	session, ok := e.registry.ActiveSession(targetID)
	if !ok {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recorders[session.ID]
}

func (e *Engine) finalize(ctx context.Context, sessionID string) (*StopResult, error) {
	session, err := e.registry.Get(sessionID)
	if err != nil {
		return nil, ErrNoActiveRecording
	}

	artifact, err := e.registry.End(sessionID)
	if err != nil {
		// Another path already finalized this session.
		return nil, ErrNoActiveRecording
	}

	if err := e.registry.Transition(sessionID, StateUploading); err != nil {
		e.logger.Warn("Engine", "Skipping illegal transition to Uploading", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	remotePath, err := e.client.AnnounceStop(ctx, session.TargetID, session.ID)
	if err != nil {
		e.logger.Warn("Engine", "Failed to announce recording stop", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	result := &StopResult{
		SessionID:  sessionID,
		Outcome:    OutcomeUploaded,
		RemotePath: remotePath,
		Duration:   session.Duration(),
	}

	filename, err := e.uploader.Upload(ctx, artifact, UploadMetadata{
		Description: session.Description,
		Duration:    session.Duration(),
		Timestamp:   session.StoppedAt,
	})
	if err != nil {
		// Durability is decoupled from recording success.
		result.Outcome = OutcomeSavedLocally
		e.logger.Warn("Engine", "Artifact upload failed, recording saved locally", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	} else {
		result.Filename = filename
	}

	if err := e.registry.Transition(sessionID, StateCompleted); err != nil {
		e.logger.Warn("Engine", "Skipping illegal transition to Completed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	e.mu.Lock()
	delete(e.recorders, sessionID)
	e.mu.Unlock()

	e.logger.Info("Engine", "Recording finished", map[string]interface{}{
		"session_id": sessionID,
		"outcome":    string(result.Outcome),
		"duration":   result.Duration.String(),
	})
	return result, nil
}
