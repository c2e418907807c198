package model

import (
	"time"

	"crewsync.com/crewsync/internal/constants"
)

type TimeEntry struct {
	ID        string                  `gorm:"primaryKey;size:36" json:"id"`
	UserID    string                  `gorm:"size:36;not null;index" json:"user_id"`
	EntryType constants.TimeEntryType `gorm:"type:varchar(20);not null" json:"entry_type"`
	Timestamp time.Time               `gorm:"not null;index" json:"timestamp"`
}
