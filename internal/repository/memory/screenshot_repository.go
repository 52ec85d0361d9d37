package memory

import (
	"context"
	"sort"
	"time"

	"browser-connector-be/internal/model"
	"browser-connector-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type ScreenshotRepository struct {
	cache *cache.Cache
}

func NewScreenshotRepository() contract.ScreenshotRepository {
	return &ScreenshotRepository{
		cache: cache.New(24*time.Hour, 1*time.Hour),
	}
}

func (r *ScreenshotRepository) Create(ctx context.Context, screenshot *model.Screenshot) error {
	r.cache.Set(screenshot.Id.String(), screenshot, cache.DefaultExpiration)
	return nil
}

func (r *ScreenshotRepository) FindRecent(ctx context.Context, limit int) ([]*model.Screenshot, error) {
	var screenshots []*model.Screenshot
	for _, item := range r.cache.Items() {
		screenshots = append(screenshots, item.Object.(*model.Screenshot))
	}
	sort.Slice(screenshots, func(i, j int) bool {
		return screenshots[i].CreatedAt.After(screenshots[j].CreatedAt)
	})
	if limit > 0 && len(screenshots) > limit {
		screenshots = screenshots[:limit]
	}
	return screenshots, nil
}
