package model

import (
	"time"

	"github.com/google/uuid"
)

// Screenshot indexes one saved capture image.
type Screenshot struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Path      string    `gorm:"type:varchar(512);not null" json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Screenshot) TableName() string {
	return "screenshots"
}
