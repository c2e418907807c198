package model

import "time"

type ChatMessage struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	SenderID       string     `gorm:"size:36;not null;index" json:"sender_id"`
	RecipientID    *string    `gorm:"size:36;index" json:"recipient_id,omitempty"`
	IsGroupMessage bool       `gorm:"not null;default:false" json:"is_group_message"`
	Message        string     `gorm:"not null" json:"message"`
	ImageRef       string     `json:"image_ref,omitempty"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
