package model

import (
	"time"

	"gorm.io/datatypes"

	"crewsync.com/crewsync/internal/constants"
)

type Notification struct {
	ID            string                     `gorm:"primaryKey;size:36" json:"id"`
	UserID        string                     `gorm:"size:36;not null;index" json:"user_id"`
	Type          constants.NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Title         string                     `gorm:"not null" json:"title"`
	Message       string                     `json:"message"`
	RelatedTaskID *string                    `gorm:"size:36" json:"related_task_id,omitempty"`
	Data          datatypes.JSON             `json:"data,omitempty"`
	ReadAt        *time.Time                 `json:"read_at,omitempty"`
	CreatedAt     time.Time                  `json:"created_at"`
}
