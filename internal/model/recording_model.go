package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RecordingStatusAnnounced = "ANNOUNCED"
	RecordingStatusStopped   = "STOPPED"
	RecordingStatusSaved     = "SAVED"
)

// Recording indexes one capture session reported by the extension. The
// artifact itself lives on disk; this row carries the metadata.
type Recording struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RecordingID string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"recording_id"`
	TabID       string         `gorm:"type:varchar(64);index" json:"tab_id"`
	Description string         `gorm:"type:text" json:"description"`
	Filename    string         `gorm:"type:varchar(255)" json:"filename"`
	DurationMs  int64          `json:"duration_ms"`
	Status      string         `gorm:"type:varchar(20);default:'ANNOUNCED'" json:"status"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	StoppedAt   *time.Time     `json:"stopped_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Recording) TableName() string {
	return "recordings"
}
