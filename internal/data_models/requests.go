package dto

import "time"

type CreateTaskRequest struct {
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	CustomerName        string     `json:"customer_name"`
	CustomerPhone       string     `json:"customer_phone"`
	Deadline            *time.Time `json:"deadline"`
	Priority            string     `json:"priority"`
	SpecialCompensation string     `json:"special_compensation"`
	TestEmail           string     `json:"test_email"`
	TestPassword        string     `json:"test_password"`
	WebIdentURL         string     `json:"web_ident_url"`
}

type AssignTaskRequest struct {
	UserID string `json:"user_id"`
}

type CompleteTaskRequest struct {
	Notes string `json:"notes"`
}

type ProgressUpdateRequest struct {
	ProgressNotes   string `json:"progress_notes"`
	WorkflowStep    int    `json:"workflow_step"`
	WorkflowDigital *bool  `json:"workflow_digital"`
}

type FulfillSmsRequest struct {
	Code string `json:"code"`
}

type SendMessageRequest struct {
	RecipientID *string `json:"recipient_id"`
	Message     string  `json:"message"`
	ImageRef    string  `json:"image_ref"`
}

type PresenceRequest struct {
	Status string `json:"status"`
}

type TimeEntryRequest struct {
	EntryType string `json:"entry_type"`
}

type AddDocumentRequest struct {
	FileName string `json:"file_name"`
	BlobRef  string `json:"blob_ref"`
}

type UpsertProfileRequest struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	AvatarRef string `json:"avatar_ref"`
	Role      string `json:"role"`
}
