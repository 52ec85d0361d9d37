package implementation

import (
	"context"
	"errors"

	"browser-connector-be/internal/model"
	"browser-connector-be/internal/repository/contract"

	"gorm.io/gorm"
)

var ErrRecordingNotFound = errors.New("recording not found")

type RecordingRepositoryImpl struct {
	db *gorm.DB
}

func NewRecordingRepository(db *gorm.DB) contract.RecordingRepository {
	return &RecordingRepositoryImpl{db: db}
}

func (r *RecordingRepositoryImpl) Create(ctx context.Context, recording *model.Recording) error {
	return r.db.WithContext(ctx).Create(recording).Error
}

func (r *RecordingRepositoryImpl) Update(ctx context.Context, recording *model.Recording) error {
	return r.db.WithContext(ctx).Save(recording).Error
}

func (r *RecordingRepositoryImpl) FindByRecordingID(ctx context.Context, recordingID string) (*model.Recording, error) {
	var recording model.Recording
	err := r.db.WithContext(ctx).
		Where("recording_id = ?", recordingID).
		First(&recording).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordingNotFound
		}
		return nil, err
	}
	return &recording, nil
}

func (r *RecordingRepositoryImpl) FindRecent(ctx context.Context, limit int) ([]*model.Recording, error) {
	var recordings []*model.Recording
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&recordings).Error
	return recordings, err
}
