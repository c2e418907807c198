package model

import (
	"time"

	"crewsync.com/crewsync/internal/constants"
)

type Task struct {
	ID                  string                 `gorm:"primaryKey;size:36" json:"id"`
	Title               string                 `gorm:"not null" json:"title"`
	Description         string                 `json:"description,omitempty"`
	CustomerName        string                 `gorm:"not null" json:"customer_name"`
	CustomerPhone       string                 `json:"customer_phone,omitempty"`
	Deadline            *time.Time             `json:"deadline,omitempty"`
	Priority            constants.TaskPriority `gorm:"type:varchar(10);not null" json:"priority"`
	Status              constants.TaskStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	SpecialCompensation string                 `json:"special_compensation,omitempty"`
	TestEmail           string                 `json:"test_email,omitempty"`
	TestPassword        string                 `json:"test_password,omitempty"`
	WebIdentURL         string                 `json:"web_ident_url,omitempty"`
	CompletionNotes     string                 `json:"completion_notes,omitempty"`
	CreatedBy           string                 `gorm:"size:36;not null;index" json:"created_by"`
	Version             uint                   `gorm:"not null;default:1" json:"version"`
	CreatedAt           time.Time              `json:"created_at"`
	CompletedAt         *time.Time             `json:"completed_at,omitempty"`
}

type TaskAssignment struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	TaskID          string     `gorm:"size:36;not null;uniqueIndex" json:"task_id"`
	UserID          string     `gorm:"size:36;not null;index" json:"user_id"`
	AssignedAt      time.Time  `gorm:"not null" json:"assigned_at"`
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`
	ProgressNotes   string     `json:"progress_notes,omitempty"`
	WorkflowStep    int        `gorm:"not null;default:0" json:"workflow_step"`
	WorkflowDigital *bool      `json:"workflow_digital,omitempty"`
}

type TaskDocument struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID    string    `gorm:"size:36;not null;index" json:"task_id"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	FileName  string    `gorm:"not null" json:"file_name"`
	BlobRef   string    `gorm:"not null" json:"blob_ref"`
	CreatedAt time.Time `json:"created_at"`
}
