package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"crewsync.com/crewsync/internal/constants"
	apperrors "crewsync.com/crewsync/internal/errors"
	model "crewsync.com/crewsync/internal/models"
	"crewsync.com/crewsync/internal/realtime"
	repository "crewsync.com/crewsync/internal/repositories"
)

// TaskService is the task lifecycle controller. Every transition runs as a
// single guarded server-side operation; clients never apply partial writes.
type TaskService struct {
	tasks         *repository.TaskRepository
	docs          *repository.DocumentRepository
	timesheet     *repository.TimesheetRepository
	notifications *NotificationService
	feed          realtime.Feed

	// reviewRequired routes completion through pending_review with an
	// admin approve step instead of landing directly on completed.
	reviewRequired bool
}

func NewTaskService(
	tasks *repository.TaskRepository,
	docs *repository.DocumentRepository,
	timesheet *repository.TimesheetRepository,
	notifications *NotificationService,
	feed realtime.Feed,
	reviewRequired bool,
) *TaskService {
	return &TaskService{
		tasks:          tasks,
		docs:           docs,
		timesheet:      timesheet,
		notifications:  notifications,
		feed:           feed,
		reviewRequired: reviewRequired,
	}
}

func (s *TaskService) Create(ctx context.Context, caller Identity, p repository.CreateTaskParams) (*model.Task, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	p.CreatedBy = caller.UserID
	task, err := s.tasks.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.feed, realtime.TopicTasks, realtime.EventInsert, task.ID)
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, caller Identity, taskID string) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}

	if !caller.IsAdmin() {
		assignment, err := s.tasks.FindAssignment(ctx, taskID)
		if err != nil || assignment.UserID != caller.UserID {
			return nil, apperrors.ErrTaskNotFound
		}
	}

	return task, nil
}

// List scopes by role: admins see everything, employees only their own
// assignments.
func (s *TaskService) List(ctx context.Context, caller Identity) ([]model.Task, error) {
	if caller.IsAdmin() {
		return s.tasks.List(ctx)
	}
	return s.tasks.ListByAssignee(ctx, caller.UserID)
}

// Assign creates the one assignment row for a pending task. Concurrent
// assigns race on the unique index and the status guard; the loser gets a
// retryable conflict.
func (s *TaskService) Assign(ctx context.Context, caller Identity, taskID, userID string) (*model.TaskAssignment, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}
	if _, err := s.tasks.FindByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}

	assignment, err := s.tasks.Assign(ctx, taskID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAssignmentTaken):
			return nil, apperrors.ErrTaskAlreadyAssigned
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, apperrors.ErrInvalidTransition
		}
		return nil, err
	}

	if _, err := s.notifications.NotifyUser(ctx, userID, constants.NotifyTaskAssigned,
		"New task", "A task has been assigned to you", &taskID); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.feed, realtime.TopicAssignments, realtime.EventInsert, assignment.ID)
	publishEvent(ctx, s.feed, realtime.TopicTasks, realtime.EventUpdate, taskID)
	return assignment, nil
}

// Accept moves assigned → in_progress. Only the assignee, and only while the
// assignee's latest same-day time entry indicates a checked-in state.
// Repeating accept on an already-accepted task is a no-op.
func (s *TaskService) Accept(ctx context.Context, caller Identity, taskID string) (*model.Task, error) {
	assignment, err := s.assignmentFor(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}

	if assignment.AcceptedAt != nil {
		return s.tasks.FindByID(ctx, taskID)
	}

	checkedIn, err := s.timesheet.CheckedIn(ctx, caller.UserID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !checkedIn {
		return nil, apperrors.ErrNotCheckedIn
	}

	if err := s.tasks.Accept(ctx, taskID, time.Now().UTC()); err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, apperrors.ErrInvalidTransition
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}

	publishEvent(ctx, s.feed, realtime.TopicAssignments, realtime.EventUpdate, assignment.ID)
	publishEvent(ctx, s.feed, realtime.TopicTasks, realtime.EventUpdate, taskID)
	return s.tasks.FindByID(ctx, taskID)
}

// UpdateProgress lets the assignee record notes and the workflow position.
func (s *TaskService) UpdateProgress(ctx context.Context, caller Identity, taskID, notes string, step int, digital *bool) (*model.TaskAssignment, error) {
	assignment, err := s.assignmentFor(ctx, caller, taskID)
	if err != nil {
		return nil, err
	}

	assignment.ProgressNotes = notes
	assignment.WorkflowStep = step
	if digital != nil {
		assignment.WorkflowDigital = digital
	}
	if err := s.tasks.UpdateAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.feed, realtime.TopicAssignments, realtime.EventUpdate, assignment.ID)
	return assignment, nil
}

// Complete finishes the task. Only the assignee, and only with at least one
// supporting document uploaded for the task. Lands on pending_review when
// review is required, completed otherwise. The assignment row is removed in
// the same transaction.
func (s *TaskService) Complete(ctx context.Context, caller Identity, taskID, notes string) (*model.Task, error) {
	if _, err := s.assignmentFor(ctx, caller, taskID); err != nil {
		return nil, err
	}

	docCount, err := s.docs.CountForTaskUser(ctx, taskID, caller.UserID)
	if err != nil {
		return nil, err
	}
	if docCount == 0 {
		return nil, apperrors.ErrNoDocuments
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	switch task.Status {
	case constants.StatusAssigned, constants.StatusInProgress, constants.StatusSmsRequested:
	default:
		return nil, apperrors.ErrInvalidTransition
	}

	now := time.Now().UTC()
	task.Status = constants.StatusCompleted
	if s.reviewRequired {
		task.Status = constants.StatusPendingReview
	}
	task.CompletionNotes = notes
	task.CompletedAt = &now

	if err := s.tasks.Complete(ctx, task); err != nil {
		if errors.Is(err, repository.ErrOptimisticLock) {
			return nil, apperrors.ErrOptimisticLock
		}
		return nil, err
	}

	if _, err := s.notifications.NotifyUser(ctx, task.CreatedBy, constants.NotifyTaskCompleted,
		"Task completed", "Task \""+task.Title+"\" was completed", &taskID); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.feed, realtime.TopicAssignments, realtime.EventDelete, taskID)
	publishEvent(ctx, s.feed, realtime.TopicTasks, realtime.EventUpdate, taskID)
	return task, nil
}

// Approve moves pending_review → completed. Admin only.
func (s *TaskService) Approve(ctx context.Context, caller Identity, taskID string) (*model.Task, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	err := s.tasks.SetStatus(ctx, taskID,
		[]constants.TaskStatus{constants.StatusPendingReview}, constants.StatusCompleted)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperrors.ErrInvalidTransition
		}
		return nil, err
	}

	publishEvent(ctx, s.feed, realtime.TopicTasks, realtime.EventUpdate, taskID)
	return s.tasks.FindByID(ctx, taskID)
}

// Return relinquishes the assignment: deletes the row, resets the task to
// pending, tells the admin who created it.
func (s *TaskService) Return(ctx context.Context, caller Identity, taskID string) (*model.Task, error) {
	if _, err := s.assignmentFor(ctx, caller, taskID); err != nil {
		return nil, err
	}

	err := s.tasks.Release(ctx, taskID,
		[]constants.TaskStatus{constants.StatusAssigned, constants.StatusInProgress})
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperrors.ErrInvalidTransition
		}
		return nil, err
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.notifications.NotifyUser(ctx, task.CreatedBy, constants.NotifyTaskReturned,
		"Task returned", "Task \""+task.Title+"\" was returned to the pool", &taskID); err != nil {
		return nil, err
	}

	publishEvent(ctx, s.feed, realtime.TopicAssignments, realtime.EventDelete, taskID)
	publishEvent(ctx, s.feed, realtime.TopicTasks, realtime.EventUpdate, taskID)
	return task, nil
}

// Cancel is admin-only and reachable from any non-terminal state. A lingering
// assignment row is cleaned up alongside.
func (s *TaskService) Cancel(ctx context.Context, caller Identity, taskID string) (*model.Task, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}

	nonTerminal := []constants.TaskStatus{
		constants.StatusPending,
		constants.StatusAssigned,
		constants.StatusInProgress,
		constants.StatusSmsRequested,
		constants.StatusPendingReview,
	}
	if err := s.tasks.Cancel(ctx, taskID, nonTerminal); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, apperrors.ErrInvalidTransition
		}
		return nil, err
	}

	publishEvent(ctx, s.feed, realtime.TopicAssignments, realtime.EventDelete, taskID)
	publishEvent(ctx, s.feed, realtime.TopicTasks, realtime.EventUpdate, taskID)
	return s.tasks.FindByID(ctx, taskID)
}

// Delete cascades the task and its dependent rows atomically. Admin only.
func (s *TaskService) Delete(ctx context.Context, caller Identity, taskID string) error {
	if !caller.IsAdmin() {
		return apperrors.ErrPermissionDenied
	}
	if _, err := s.tasks.FindByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTaskNotFound
		}
		return err
	}

	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}

	publishEvent(ctx, s.feed, realtime.TopicTasks, realtime.EventDelete, taskID)
	publishEvent(ctx, s.feed, realtime.TopicAssignments, realtime.EventDelete, taskID)
	publishEvent(ctx, s.feed, realtime.TopicSmsRequests, realtime.EventDelete, taskID)
	return nil
}

func (s *TaskService) AddDocument(ctx context.Context, caller Identity, taskID, fileName, blobRef string) (*model.TaskDocument, error) {
	if _, err := s.assignmentFor(ctx, caller, taskID); err != nil {
		return nil, err
	}
	return s.docs.Create(ctx, taskID, caller.UserID, fileName, blobRef)
}

func (s *TaskService) ListDocuments(ctx context.Context, caller Identity, taskID string) ([]model.TaskDocument, error) {
	if !caller.IsAdmin() {
		if _, err := s.assignmentFor(ctx, caller, taskID); err != nil {
			return nil, err
		}
	}
	return s.docs.ListByTask(ctx, taskID)
}

func (s *TaskService) Stats(ctx context.Context, caller Identity) (map[constants.TaskStatus]int64, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}
	return s.tasks.CountByStatus(ctx)
}

func (s *TaskService) ListAssignments(ctx context.Context, caller Identity) ([]model.TaskAssignment, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.ErrPermissionDenied
	}
	return s.tasks.ListAssignments(ctx)
}

// assignmentFor resolves the task's assignment and checks the caller owns it.
func (s *TaskService) assignmentFor(ctx context.Context, caller Identity, taskID string) (*model.TaskAssignment, error) {
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
	return assignment, nil
}
