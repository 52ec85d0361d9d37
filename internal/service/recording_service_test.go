package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"browser-connector-be/internal/dto"
	"browser-connector-be/internal/model"
	"browser-connector-be/internal/pkg/logger"
	"browser-connector-be/internal/repository/memory"
	"browser-connector-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "RECORDING_SAVED_EVENTS_TEST"

// capturingEventPublisher records mirrored bus events for assertions.
type capturingEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturingEventPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingEventPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func newRecordingService(t *testing.T) (IRecordingService, *gochannel.GoChannel, *capturingEventPublisher, string) {
	t.Helper()
	dir := t.TempDir()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	eventsPub := &capturingEventPublisher{}
	svc := NewRecordingService(
		memory.NewRecordingRepository(),
		NewPublisherService(testTopic, pubSub),
		eventsPub,
		logger.NewNopLogger(),
		dir,
	)
	return svc, pubSub, eventsPub, dir
}

func TestAnnounceLifecycle(t *testing.T) {
	svc, _, eventsPub, dir := newRecordingService(t)
	ctx := context.Background()

	started, err := svc.AnnounceStart(ctx, &dto.StartRecordingRequest{
		RecordingID: "recording_42_1",
		Description: "run",
		Timestamp:   time.Now().UnixMilli(),
	})
	require.NoError(t, err)
	assert.Equal(t, "recording_42_1", started.RecordingID)

	stopped, err := svc.AnnounceStop(ctx, &dto.StopRecordingRequest{RecordingID: "recording_42_1"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "recording_42_1.webm"), stopped.Path)

	assert.Equal(t, []string{events.TypeRecordingStarted, events.TypeRecordingStopped}, eventsPub.types())
}

func TestAnnounceStopUnknownRecordingStillReturnsPath(t *testing.T) {
	svc, _, _, dir := newRecordingService(t)

	stopped, err := svc.AnnounceStop(context.Background(), &dto.StopRecordingRequest{RecordingID: "recording_ghost_1"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "recording_ghost_1.webm"), stopped.Path)
}

func TestSaveArtifactWritesFileAndPublishes(t *testing.T) {
	svc, pubSub, _, dir := newRecordingService(t)
	ctx := context.Background()

	messages, err := pubSub.Subscribe(ctx, testTopic)
	require.NoError(t, err)

	_, err = svc.AnnounceStart(ctx, &dto.StartRecordingRequest{RecordingID: "recording_42_1"})
	require.NoError(t, err)
	_, err = svc.AnnounceStop(ctx, &dto.StopRecordingRequest{RecordingID: "recording_42_1"})
	require.NoError(t, err)

	saved, err := svc.SaveArtifact(ctx, &dto.RecordingDataRequest{
		Data:     "data:video/webm;base64,GkXfow==",
		Duration: 1500,
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, saved.Filename))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1A, 0x45, 0xDF, 0xA3}, raw)

	select {
	case msg := <-messages:
		var payload dto.RecordingSavedMessage
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, "recording_42_1", payload.RecordingID)
		assert.Equal(t, saved.Filename, payload.Filename)
		assert.Equal(t, int64(1500), payload.DurationMs)
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("no saved event published")
	}

	recent, err := svc.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, model.RecordingStatusSaved, recent[0].Status)
	assert.Equal(t, saved.Filename, recent[0].Filename)
}

func TestSaveArtifactRejectsBadPayloads(t *testing.T) {
	svc, _, _, _ := newRecordingService(t)
	ctx := context.Background()

	_, err := svc.SaveArtifact(ctx, &dto.RecordingDataRequest{Data: "nonsense"})
	assert.ErrorIs(t, err, ErrInvalidDataURL)

	_, err = svc.SaveArtifact(ctx, &dto.RecordingDataRequest{Data: "data:video/webm;base64,%%%"})
	assert.ErrorIs(t, err, ErrInvalidDataURL)
}
