package model

import (
	"time"

	"crewsync.com/crewsync/internal/constants"
)

// SmsCodeRequest rows are append-only: requesters insert new rows, never
// mutate existing ones.
type SmsCodeRequest struct {
	ID          string                     `gorm:"primaryKey;size:36" json:"id"`
	TaskID      string                     `gorm:"size:36;not null;index" json:"task_id"`
	UserID      string                     `gorm:"size:36;not null" json:"user_id"`
	Status      constants.SmsRequestStatus `gorm:"type:varchar(20);not null" json:"status"`
	SmsCode     *string                    `json:"sms_code,omitempty"`
	RequestedAt time.Time                  `gorm:"not null" json:"requested_at"`
}
