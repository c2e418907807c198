package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"crewsync.com/crewsync/internal/constants"
	apperrors "crewsync.com/crewsync/internal/errors"
	model "crewsync.com/crewsync/internal/models"
	"crewsync.com/crewsync/internal/realtime"
	repository "crewsync.com/crewsync/internal/repositories"
)

// SmsService runs the one-time-code exchange. Request rows are append-only:
// every request, resend and fulfilment inserts a fresh row, and the task's
// sms_requested status is driven by request state rather than explicit
// transition events.
type SmsService struct {
	sms           *repository.SmsRepository
	tasks         *repository.TaskRepository
	notifications *NotificationService
	feed          realtime.Feed
}

func NewSmsService(
	sms *repository.SmsRepository,
	tasks *repository.TaskRepository,
	notifications *NotificationService,
	feed realtime.Feed,
) *SmsService {
	return &SmsService{sms: sms, tasks: tasks, notifications: notifications, feed: feed}
}

// Request asks for a one-time code: inserts a pending row and moves the task
// to sms_requested. Only the assignee.
func (s *SmsService) Request(ctx context.Context, caller Identity, taskID string) (*model.SmsCodeRequest, error) {
	task, err := s.taskForAssignee(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}

	if task.Status == constants.StatusInProgress {
		err = s.tasks.SetStatus(ctx, taskID,
			[]constants.TaskStatus{constants.StatusInProgress}, constants.StatusSmsRequested)
		if err != nil && !errors.Is(err, repository.ErrStatusConflict) {
			return nil, err
		}
	} else if task.Status != constants.StatusSmsRequested {
		return nil, apperrors.ErrInvalidTransition
	}

	req, err := s.sms.Insert(ctx, taskID, caller.UserID, constants.SmsPending, nil)
	if err != nil {
		return nil, err
	}

	if _, err := s.notifications.NotifyUser(ctx, task.CreatedBy, constants.NotifySmsRequested,
		"SMS code requested", "A verification code is needed for \""+task.Title+"\"", &taskID); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.feed, realtime.TopicSmsRequests, realtime.EventInsert, req.ID)
	publishEvent(ctx, s.feed, realtime.TopicTasks, realtime.EventUpdate, taskID)
	return req, nil
}

// RequestResend never touches previous rows; it appends a resend_requested
// row. Only valid while the task is waiting on a code.
func (s *SmsService) RequestResend(ctx context.Context, caller Identity, taskID string) (*model.SmsCodeRequest, error) {
	task, err := s.taskForAssignee(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != constants.StatusSmsRequested {
		return nil, apperrors.ErrInvalidTransition
	}

	req, err := s.sms.Insert(ctx, taskID, caller.UserID, constants.SmsResendRequested, nil)
	if err != nil {
		return nil, err
	}

	if _, err := s.notifications.NotifyUser(ctx, task.CreatedBy, constants.NotifySmsRequested,
		"SMS code resend requested", "A new verification code is needed for \""+task.Title+"\"", &taskID); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.feed, realtime.TopicSmsRequests, realtime.EventInsert, req.ID)
	return req, nil
}

// Fulfill delivers the code: the admin appends a fulfilled row carrying it
// and the task drops back to in_progress. No explicit resume event is needed
// on the assignee side.
func (s *SmsService) Fulfill(ctx context.Context, caller Identity, taskID, code string) (*model.SmsCodeRequest, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	assignment, err := s.tasks.FindAssignment(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, err
	}

	req, err := s.sms.Insert(ctx, taskID, assignment.UserID, constants.SmsFulfilled, &code)
	if err != nil {
		return nil, err
	}

	err = s.tasks.SetStatus(ctx, taskID,
		[]constants.TaskStatus{constants.StatusSmsRequested}, constants.StatusInProgress)
	if err != nil && !errors.Is(err, repository.ErrStatusConflict) {
		return nil, err
	}

	if _, err := s.notifications.NotifyUser(ctx, assignment.UserID, constants.NotifySmsCode,
		"Code received", "A verification code has arrived", &taskID); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.feed, realtime.TopicSmsRequests, realtime.EventInsert, req.ID)
	publishEvent(ctx, s.feed, realtime.TopicTasks, realtime.EventUpdate, taskID)
	return req, nil
}

// Current resolves the current request: the most recent row carrying a code,
// else the most recent row overall.
func (s *SmsService) Current(ctx context.Context, caller Identity, taskID string) (*model.SmsCodeRequest, error) {
	if !caller.IsAdmin() {
		if _, err := s.taskForAssignee(ctx, caller, taskID); err != nil {
			return nil, err
		}
	}

	req, err := s.sms.Current(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

func (s *SmsService) History(ctx context.Context, caller Identity, taskID string) ([]model.SmsCodeRequest, error) {
	if !caller.IsAdmin() {
		if _, err := s.taskForAssignee(ctx, caller, taskID); err != nil {
			return nil, err
		}
	}
	return s.sms.ListByTask(ctx, taskID)
}

func (s *SmsService) taskForAssignee(ctx context.Context, caller Identity, taskID string) (*model.Task, error) {
	assignment, err := s.tasks.FindAssignment(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	if assignment.UserID != caller.UserID {
		return nil, apperrors.ErrNotAssignee
	}
	return s.tasks.FindByID(ctx, taskID)
}
