package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"browser-connector-be/internal/dto"
	"browser-connector-be/internal/model"
	"browser-connector-be/internal/pkg/logger"
	"browser-connector-be/internal/repository/contract"
	"browser-connector-be/pkg/events"

	"github.com/google/uuid"
)

// ErrInvalidDataURL is returned when an artifact payload is not a valid
// base64 data URL.
var ErrInvalidDataURL = errors.New("invalid data url payload")

type IRecordingService interface {
	AnnounceStart(ctx context.Context, req *dto.StartRecordingRequest) (*dto.StartRecordingResponse, error)
	AnnounceStop(ctx context.Context, req *dto.StopRecordingRequest) (*dto.StopRecordingResponse, error)
	SaveArtifact(ctx context.Context, req *dto.RecordingDataRequest) (*dto.RecordingDataResponse, error)
	ListRecent(ctx context.Context, limit int) ([]*model.Recording, error)
}

type recordingService struct {
	recordingRepo    contract.RecordingRepository
	publisherService IPublisherService
	eventsPub        IEventPublisher
	logger           logger.ILogger
	recordingsDir    string
}

func NewRecordingService(
	recordingRepo contract.RecordingRepository,
	publisherService IPublisherService,
	eventsPub IEventPublisher,
	log logger.ILogger,
	recordingsDir string,
) IRecordingService {
	return &recordingService{
		recordingRepo:    recordingRepo,
		publisherService: publisherService,
		eventsPub:        eventsPub,
		logger:           log,
		recordingsDir:    recordingsDir,
	}
}

// mirrorEvent pushes lifecycle telemetry onto the capture stream. Best-effort;
// the protocol response never waits on the bus.
func (s *recordingService) mirrorEvent(ctx context.Context, event events.Event) {
	if s.eventsPub == nil {
		return
	}
	if err := s.eventsPub.Publish(ctx, event); err != nil {
		s.logger.Warn("RecordingService", "Failed to mirror event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func (s *recordingService) AnnounceStart(ctx context.Context, req *dto.StartRecordingRequest) (*dto.StartRecordingResponse, error) {
	startedAt := time.Now()
	if req.Timestamp > 0 {
		startedAt = time.UnixMilli(req.Timestamp)
	}

	recording := model.Recording{
		Id:          uuid.New(),
		RecordingID: req.RecordingID,
		TabID:       req.TabID.String(),
		Description: req.Description,
		Status:      model.RecordingStatusAnnounced,
		StartedAt:   startedAt,
		CreatedAt:   time.Now(),
	}

	if err := s.recordingRepo.Create(ctx, &recording); err != nil {
		return nil, err
	}

	s.logger.Info("RecordingService", "Recording announced", map[string]interface{}{
		"recording_id": req.RecordingID,
		"tab_id":       recording.TabID,
	})
	s.mirrorEvent(ctx, events.NewRecordingStarted(req.RecordingID, recording.TabID, req.Description))

	return &dto.StartRecordingResponse{RecordingID: req.RecordingID}, nil
}

func (s *recordingService) AnnounceStop(ctx context.Context, req *dto.StopRecordingRequest) (*dto.StopRecordingResponse, error) {
	path := filepath.Join(s.recordingsDir, req.RecordingID+".webm")
	s.mirrorEvent(ctx, events.NewRecordingStopped(req.RecordingID, path))

	recording, err := s.recordingRepo.FindByRecordingID(ctx, req.RecordingID)
	if err != nil {
		// The extension still expects the projected path even when the start
		// announcement never reached us.
		s.logger.Warn("RecordingService", "Stop announced for unknown recording", map[string]interface{}{
			"recording_id": req.RecordingID,
		})
		return &dto.StopRecordingResponse{Path: path}, nil
	}

	stoppedAt := time.Now()
	if req.Timestamp > 0 {
		stoppedAt = time.UnixMilli(req.Timestamp)
	}
	recording.Status = model.RecordingStatusStopped
	recording.StoppedAt = &stoppedAt

	if err := s.recordingRepo.Update(ctx, recording); err != nil {
		return nil, err
	}

	return &dto.StopRecordingResponse{Path: path}, nil
}

func (s *recordingService) SaveArtifact(ctx context.Context, req *dto.RecordingDataRequest) (*dto.RecordingDataResponse, error) {
	raw, err := decodeDataURL(req.Data)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.recordingsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create recordings dir: %w", err)
	}

	ts := req.Timestamp
	if ts <= 0 {
		ts = time.Now().UnixMilli()
	}
	filename := fmt.Sprintf("recording_%d.webm", ts)

	if err := os.WriteFile(filepath.Join(s.recordingsDir, filename), raw, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write artifact: %w", err)
	}

	recording := s.pendingRecording(ctx)
	if recording == nil {
		// Artifact arrived without a preceding announcement. Index it anyway
		// so it shows up in listings.
		recording = &model.Recording{
			Id:          uuid.New(),
			RecordingID: fmt.Sprintf("recording_unknown_%d", ts),
			Description: req.Description,
			StartedAt:   time.UnixMilli(ts),
			CreatedAt:   time.Now(),
		}
		if err := s.recordingRepo.Create(ctx, recording); err != nil {
			return nil, err
		}
	}

	recording.Filename = filename
	recording.DurationMs = req.Duration
	recording.Status = model.RecordingStatusSaved
	if req.Description != "" {
		recording.Description = req.Description
	}

	if err := s.recordingRepo.Update(ctx, recording); err != nil {
		return nil, err
	}

	msg := dto.RecordingSavedMessage{
		RecordingID: recording.RecordingID,
		Filename:    filename,
		Path:        filepath.Join(s.recordingsDir, filename),
		Description: recording.Description,
		DurationMs:  req.Duration,
	}
	if err := s.publisherService.PublishRecordingSaved(ctx, msg); err != nil {
		s.logger.Warn("RecordingService", "Failed to publish saved event", map[string]interface{}{
			"recording_id": recording.RecordingID,
			"error":        err.Error(),
		})
	}

	s.logger.Info("RecordingService", "Artifact saved", map[string]interface{}{
		"recording_id": recording.RecordingID,
		"filename":     filename,
		"size_bytes":   len(raw),
	})

	return &dto.RecordingDataResponse{Filename: filename}, nil
}

func (s *recordingService) ListRecent(ctx context.Context, limit int) ([]*model.Recording, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.recordingRepo.FindRecent(ctx, limit)
}

// pendingRecording returns the most recent stopped-but-unsaved recording, if
// any. The data upload does not carry a recording id, so the freshest stopped
// session is the one the artifact belongs to.
func (s *recordingService) pendingRecording(ctx context.Context) *model.Recording {
	recent, err := s.recordingRepo.FindRecent(ctx, 10)
	if err != nil {
		return nil
	}
	for _, r := range recent {
		if r.Status == model.RecordingStatusStopped || r.Status == model.RecordingStatusAnnounced {
			return r
		}
	}
	return nil
}

func decodeDataURL(data string) ([]byte, error) {
	idx := strings.Index(data, ",")
	if idx < 0 || !strings.HasPrefix(data, "data:") {
		return nil, ErrInvalidDataURL
	}
	raw, err := base64.StdEncoding.DecodeString(data[idx+1:])
	if err != nil {
		return nil, ErrInvalidDataURL
	}
	return raw, nil
}
