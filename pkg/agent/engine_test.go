package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"browser-connector-be/internal/pkg/logger"
	"browser-connector-be/pkg/capture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTabCapturer struct{}

func (stubTabCapturer) CaptureTab(ctx context.Context, targetID string, c capture.Constraints) (*capture.Stream, error) {
	return capture.NewStream(
		capture.NewTrack("tab-video", capture.KindVideo, capture.SourceTab, nil),
		capture.NewTrack("tab-audio", capture.KindAudio, capture.SourceTab, nil),
	), nil
}

func (stubTabCapturer) MediaStreamID(ctx context.Context, targetID string) (string, error) {
	return "stream-id", nil
}

func (stubTabCapturer) CaptureWithStreamID(ctx context.Context, streamID string, c capture.Constraints) (*capture.Stream, error) {
	return capture.NewStream(capture.NewTrack("tab-video", capture.KindVideo, capture.SourceTab, nil)), nil
}

type stubDesktopCapturer struct{}

func (stubDesktopCapturer) PickSource(ctx context.Context) (string, error) { return "desk", nil }

func (stubDesktopCapturer) CaptureDesktop(ctx context.Context, streamID string, c capture.Constraints) (*capture.Stream, error) {
	return capture.NewStream(capture.NewTrack("screen", capture.KindVideo, capture.SourceDesktop, nil)), nil
}

type stubMicCapturer struct{}

func (stubMicCapturer) CaptureMicrophone(ctx context.Context) (*capture.Track, error) {
	return capture.NewTrack("mic", capture.KindAudio, capture.SourceMicrophone, nil), nil
}

type stubScreenshotCapturer struct{}

func (stubScreenshotCapturer) CaptureVisibleTarget(ctx context.Context, targetID string) (string, error) {
	return "data:image/png;base64,aGk=", nil
}

// collectorState controls what the fake collector answers with.
type collectorState struct {
	identityOK  bool
	uploadFails bool
	uploads     int32
}

func fakeCollector(state *collectorState) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/.identity", func(w http.ResponseWriter, r *http.Request) {
		sig := "mcp-browser-connector-24x7"
		if !state.identityOK {
			sig = "impostor"
		}
		json.NewEncoder(w).Encode(map[string]string{"signature": sig})
	})
	mux.HandleFunc("/start-recording", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"recordingId": "ack"})
	})
	mux.HandleFunc("/stop-recording", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"path": "recordings/out.webm"})
	})
	mux.HandleFunc("/recording-data", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&state.uploads, 1)
		if state.uploadFails {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"filename": "recording_9.webm"})
	})
	mux.HandleFunc("/screenshot", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"path": "screenshots/shot.png"})
	})
	return httptest.NewServer(mux)
}

func newTestEngine(t *testing.T, state *collectorState) (*Engine, *capture.ChunkBuffer, func()) {
	t.Helper()
	srv := fakeCollector(state)
	client := collectorClientFor(t, srv)

	encoder := capture.NewChunkBuffer()
	factory := func(stream *capture.Stream, mimeType string) (capture.Encoder, error) {
		assert.Contains(t, mimeType, "video/webm")
		return encoder, nil
	}

	engine := NewEngine(
		NewRegistry(),
		capture.NewAcquisition(stubTabCapturer{}, stubDesktopCapturer{}, stubMicCapturer{}, capture.DefaultConstraints()),
		client,
		NewUploader(client),
		stubScreenshotCapturer{},
		factory,
		logger.NewNopLogger(),
	)
	return engine, encoder, srv.Close
}

func TestEngineStartStopUploadsArtifact(t *testing.T) {
	state := &collectorState{identityOK: true}
	engine, encoder, cleanup := newTestEngine(t, state)
	defer cleanup()

	sessionID, err := engine.StartRecording(context.Background(), StartRequest{
		TargetID:      "42",
		Kind:          TabRecording,
		FlushInterval: 5 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)

	encoder.Push([]byte("webm-bytes"))
	assert.Eventually(t, func() bool {
		s, err := engine.registry.Get(sessionID)
		return err == nil && len(s.Chunks) > 0
	}, time.Second, 5*time.Millisecond)

	result, err := engine.StopRecording(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUploaded, result.Outcome)
	assert.Equal(t, "recording_9.webm", result.Filename)
	assert.Equal(t, "recordings/out.webm", result.RemotePath)

	// Session is terminal and purged.
	_, ok := engine.registry.ActiveSession("42")
	assert.False(t, ok)
}

func TestEngineUploadFailureDowngradesToSavedLocally(t *testing.T) {
	state := &collectorState{identityOK: true, uploadFails: true}
	engine, encoder, cleanup := newTestEngine(t, state)
	defer cleanup()

	_, err := engine.StartRecording(context.Background(), StartRequest{
		TargetID:      "42",
		Kind:          TabRecording,
		FlushInterval: time.Hour,
	})
	require.NoError(t, err)
	encoder.Push([]byte("webm-bytes"))

	result, err := engine.StopRecording(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSavedLocally, result.Outcome)
	assert.Empty(t, result.Filename)
}

func TestEngineIdentityGateBlocksStart(t *testing.T) {
	state := &collectorState{identityOK: false}
	engine, _, cleanup := newTestEngine(t, state)
	defer cleanup()

	_, err := engine.StartRecording(context.Background(), StartRequest{TargetID: "42", Kind: TabRecording})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestEngineRejectsConcurrentSessionForTarget(t *testing.T) {
	state := &collectorState{identityOK: true}
	engine, _, cleanup := newTestEngine(t, state)
	defer cleanup()

	_, err := engine.StartRecording(context.Background(), StartRequest{
		TargetID:      "42",
		Kind:          TabRecording,
		FlushInterval: time.Hour,
	})
	require.NoError(t, err)

	_, err = engine.StartRecording(context.Background(), StartRequest{TargetID: "42", Kind: TabRecording})
	assert.ErrorIs(t, err, ErrAlreadyActive)
}

func TestEngineStopWithoutActiveRecording(t *testing.T) {
	state := &collectorState{identityOK: true}
	engine, _, cleanup := newTestEngine(t, state)
	defer cleanup()

	_, err := engine.StopRecording(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNoActiveRecording)
}

func TestEngineExternalStreamEndFinalizesSession(t *testing.T) {
	state := &collectorState{identityOK: true}
	engine, _, cleanup := newTestEngine(t, state)
	defer cleanup()

	sessionID, err := engine.StartRecording(context.Background(), StartRequest{
		TargetID:      "42",
		Kind:          TabRecording,
		FlushInterval: time.Hour,
	})
	require.NoError(t, err)

	engine.mu.Lock()
	recorder := engine.recorders[sessionID]
	engine.mu.Unlock()
	require.NotNil(t, recorder)

	// The user revokes capture; the recorder must converge on the same
	// finish path an explicit stop uses.
	for _, track := range recorder.stream.VideoTracks() {
		track.EndExternally()
	}

	assert.Eventually(t, func() bool {
		_, ok := engine.registry.ActiveSession("42")
		return !ok && atomic.LoadInt32(&state.uploads) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err = engine.StopRecording(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNoActiveRecording)
}

func TestEngineDesktopRecordingUsesDesktopTarget(t *testing.T) {
	state := &collectorState{identityOK: true}
	engine, _, cleanup := newTestEngine(t, state)
	defer cleanup()

	sessionID, err := engine.StartRecording(context.Background(), StartRequest{
		Kind:          DesktopRecording,
		FlushInterval: time.Hour,
	})
	require.NoError(t, err)

	session, err := engine.registry.Get(sessionID)
	require.NoError(t, err)
	assert.Equal(t, DesktopTargetID, session.TargetID)

	_, err = engine.StopRecording(context.Background(), DesktopTargetID)
	require.NoError(t, err)
}

func TestEngineCaptureScreenshot(t *testing.T) {
	state := &collectorState{identityOK: true}
	engine, _, cleanup := newTestEngine(t, state)
	defer cleanup()

	path, err := engine.CaptureScreenshot(context.Background(), "42", "")
	require.NoError(t, err)
	assert.Equal(t, "screenshots/shot.png", path)
}
