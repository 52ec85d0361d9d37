package contract

import (
	"context"

	"browser-connector-be/internal/model"
)

type RecordingRepository interface {
	Create(ctx context.Context, recording *model.Recording) error
	Update(ctx context.Context, recording *model.Recording) error
	FindByRecordingID(ctx context.Context, recordingID string) (*model.Recording, error)
	FindRecent(ctx context.Context, limit int) ([]*model.Recording, error)
}
