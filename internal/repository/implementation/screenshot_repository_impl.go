package implementation

import (
	"context"

	"browser-connector-be/internal/model"
	"browser-connector-be/internal/repository/contract"

	"gorm.io/gorm"
)

type ScreenshotRepositoryImpl struct {
	db *gorm.DB
}

func NewScreenshotRepository(db *gorm.DB) contract.ScreenshotRepository {
	return &ScreenshotRepositoryImpl{db: db}
}

func (r *ScreenshotRepositoryImpl) Create(ctx context.Context, screenshot *model.Screenshot) error {
	return r.db.WithContext(ctx).Create(screenshot).Error
}

func (r *ScreenshotRepositoryImpl) FindRecent(ctx context.Context, limit int) ([]*model.Screenshot, error) {
	var screenshots []*model.Screenshot
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&screenshots).Error
	return screenshots, err
}
