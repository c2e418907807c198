package constants

type TaskStatus string

const (
	StatusPending       TaskStatus = "pending"
	StatusAssigned      TaskStatus = "assigned"
	StatusInProgress    TaskStatus = "in_progress"
	StatusSmsRequested  TaskStatus = "sms_requested"
	StatusPendingReview TaskStatus = "pending_review"
	StatusCompleted     TaskStatus = "completed"
	StatusCancelled     TaskStatus = "cancelled"
)

// Terminal reports whether no further lifecycle transition is allowed.
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var AllStatuses = []TaskStatus{
	StatusPending,
	StatusAssigned,
	StatusInProgress,
	StatusSmsRequested,
	StatusPendingReview,
	StatusCompleted,
	StatusCancelled,
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

func ValidPriority(p TaskPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceAway    PresenceStatus = "away"
	PresenceBusy    PresenceStatus = "busy"
	PresenceOffline PresenceStatus = "offline"
)

func ValidPresence(s PresenceStatus) bool {
	switch s {
	case PresenceOnline, PresenceAway, PresenceBusy, PresenceOffline:
		return true
	}
	return false
}

type SmsRequestStatus string

const (
	SmsPending         SmsRequestStatus = "pending"
	SmsResendRequested SmsRequestStatus = "resend_requested"
	SmsFulfilled       SmsRequestStatus = "fulfilled"
)

type TimeEntryType string

const (
	EntryCheckIn    TimeEntryType = "check_in"
	EntryCheckOut   TimeEntryType = "check_out"
	EntryPauseStart TimeEntryType = "pause_start"
	EntryPauseEnd   TimeEntryType = "pause_end"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

type NotificationType string

const (
	NotifyTaskAssigned  NotificationType = "task_assigned"
	NotifyTaskCompleted NotificationType = "task_completed"
	NotifyTaskReturned  NotificationType = "task_returned"
	NotifySmsRequested  NotificationType = "sms_requested"
	NotifySmsCode       NotificationType = "sms_code"
	NotifyChatMessage   NotificationType = "chat_message"
)
