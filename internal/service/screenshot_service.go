package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"browser-connector-be/internal/dto"
	"browser-connector-be/internal/model"
	"browser-connector-be/internal/pkg/logger"
	"browser-connector-be/internal/repository/contract"
	"browser-connector-be/pkg/events"

	"github.com/google/uuid"
)

type IScreenshotService interface {
	Save(ctx context.Context, req *dto.ScreenshotRequest) (*dto.ScreenshotResponse, error)
	ListRecent(ctx context.Context, limit int) ([]*model.Screenshot, error)
}

type screenshotService struct {
	screenshotRepo contract.ScreenshotRepository
	eventsPub      IEventPublisher
	logger         logger.ILogger
	screenshotsDir string
}

func NewScreenshotService(
	screenshotRepo contract.ScreenshotRepository,
	eventsPub IEventPublisher,
	log logger.ILogger,
	screenshotsDir string,
) IScreenshotService {
	return &screenshotService{
		screenshotRepo: screenshotRepo,
		eventsPub:      eventsPub,
		logger:         log,
		screenshotsDir: screenshotsDir,
	}
}

func (s *screenshotService) Save(ctx context.Context, req *dto.ScreenshotRequest) (*dto.ScreenshotResponse, error) {
	raw, err := decodeDataURL(req.Data)
	if err != nil {
		return nil, err
	}

	dir := s.screenshotsDir
	if req.Path != "" {
		dir = req.Path
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create screenshots dir: %w", err)
	}

	filename := fmt.Sprintf("screenshot_%d.png", time.Now().UnixMilli())
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write screenshot: %w", err)
	}

	screenshot := model.Screenshot{
		Id:        uuid.New(),
		Path:      path,
		SizeBytes: int64(len(raw)),
		CreatedAt: time.Now(),
	}
	if err := s.screenshotRepo.Create(ctx, &screenshot); err != nil {
		return nil, err
	}

	s.logger.Info("ScreenshotService", "Screenshot saved", map[string]interface{}{
		"path":       path,
		"size_bytes": screenshot.SizeBytes,
	})
	if s.eventsPub != nil {
		if err := s.eventsPub.Publish(ctx, events.NewScreenshotSaved(path, screenshot.SizeBytes)); err != nil {
			s.logger.Warn("ScreenshotService", "Failed to mirror saved event", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
	}

	return &dto.ScreenshotResponse{Path: path}, nil
}

func (s *screenshotService) ListRecent(ctx context.Context, limit int) ([]*model.Screenshot, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.screenshotRepo.FindRecent(ctx, limit)
}
