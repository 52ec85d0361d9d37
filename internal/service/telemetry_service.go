package service

import (
	"context"

	"browser-connector-be/internal/dto"
	"browser-connector-be/internal/pkg/logger"
	"browser-connector-be/pkg/events"

	"github.com/patrickmn/go-cache"
)

const latestURLKey = "latest"

type ITelemetryService interface {
	UpdateCurrentURL(ctx context.Context, req *dto.CurrentURLRequest) (*dto.CurrentURLResponse, error)
	CurrentURL(tabID string) (string, bool)
	LatestURL() (string, bool)
}

// telemetryService keeps the per-tab URL map in memory. The extension
// re-pushes on every navigation, so nothing here needs to survive a restart.
type telemetryService struct {
	urls      *cache.Cache
	eventsPub IEventPublisher
	logger    logger.ILogger
}

func NewTelemetryService(eventsPub IEventPublisher, log logger.ILogger) ITelemetryService {
	return &telemetryService{
		urls:      cache.New(cache.NoExpiration, cache.NoExpiration),
		eventsPub: eventsPub,
		logger:    log,
	}
}

func (s *telemetryService) UpdateCurrentURL(ctx context.Context, req *dto.CurrentURLRequest) (*dto.CurrentURLResponse, error) {
	if tabID := req.TabID.String(); tabID != "" {
		s.urls.Set(tabID, req.URL, cache.NoExpiration)
	}
	s.urls.Set(latestURLKey, req.URL, cache.NoExpiration)

	s.logger.Debug("TelemetryService", "Current URL updated", map[string]interface{}{
		"tab_id": req.TabID.String(),
		"url":    req.URL,
		"source": req.Source,
	})
	if s.eventsPub != nil {
		if err := s.eventsPub.Publish(ctx, events.NewURLVisited(req.TabID.String(), req.URL, req.Source)); err != nil {
			s.logger.Warn("TelemetryService", "Failed to mirror navigation event", map[string]interface{}{
				"url":   req.URL,
				"error": err.Error(),
			})
		}
	}

	return &dto.CurrentURLResponse{Status: "ok", URL: req.URL}, nil
}

func (s *telemetryService) CurrentURL(tabID string) (string, bool) {
	if v, ok := s.urls.Get(tabID); ok {
		return v.(string), true
	}
	return "", false
}

func (s *telemetryService) LatestURL() (string, bool) {
	if v, ok := s.urls.Get(latestURLKey); ok {
		return v.(string), true
	}
	return "", false
}
