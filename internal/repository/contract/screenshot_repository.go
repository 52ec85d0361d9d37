package contract

import (
	"context"

	"browser-connector-be/internal/model"
)

type ScreenshotRepository interface {
	Create(ctx context.Context, screenshot *model.Screenshot) error
	FindRecent(ctx context.Context, limit int) ([]*model.Screenshot, error)
}
