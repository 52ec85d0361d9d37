package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"browser-connector-be/internal/model"
	"browser-connector-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

var ErrRecordingNotFound = errors.New("recording not found")

// RecordingRepository is the in-memory fallback used when no database is
// configured. The connector stays fully functional; the index just does not
// survive restarts.
type RecordingRepository struct {
	cache *cache.Cache
}

func NewRecordingRepository() contract.RecordingRepository {
	return &RecordingRepository{
		cache: cache.New(24*time.Hour, 1*time.Hour),
	}
}

func (r *RecordingRepository) Create(ctx context.Context, recording *model.Recording) error {
	r.cache.Set(recording.RecordingID, recording, cache.DefaultExpiration)
	return nil
}

func (r *RecordingRepository) Update(ctx context.Context, recording *model.Recording) error {
	r.cache.Set(recording.RecordingID, recording, cache.DefaultExpiration)
	return nil
}

func (r *RecordingRepository) FindByRecordingID(ctx context.Context, recordingID string) (*model.Recording, error) {
	if x, found := r.cache.Get(recordingID); found {
		return x.(*model.Recording), nil
	}
	return nil, ErrRecordingNotFound
}

func (r *RecordingRepository) FindRecent(ctx context.Context, limit int) ([]*model.Recording, error) {
	var recordings []*model.Recording
	for _, item := range r.cache.Items() {
		recordings = append(recordings, item.Object.(*model.Recording))
	}
	sort.Slice(recordings, func(i, j int) bool {
		return recordings[i].CreatedAt.After(recordings[j].CreatedAt)
	})
	if limit > 0 && len(recordings) > limit {
		recordings = recordings[:limit]
	}
	return recordings, nil
}
