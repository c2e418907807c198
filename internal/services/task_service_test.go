package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"crewsync.com/crewsync/internal/constants"
	apperrors "crewsync.com/crewsync/internal/errors"
	model "crewsync.com/crewsync/internal/models"
	"crewsync.com/crewsync/internal/realtime"
	repository "crewsync.com/crewsync/internal/repositories"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&model.Task{},
		&model.TaskAssignment{},
		&model.TaskDocument{},
		&model.SmsCodeRequest{},
		&model.Profile{},
		&model.ChatMessage{},
		&model.Notification{},
		&model.TimeEntry{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	return db
}

type fixture struct {
	db            *gorm.DB
	feed          *realtime.MemoryFeed
	tasks         *TaskService
	sms           *SmsService
	chat          *ChatService
	presence      *PresenceService
	timesheet     *TimesheetService
	notifications *NotificationService

	taskRepo      *repository.TaskRepository
	docRepo       *repository.DocumentRepository
	smsRepo       *repository.SmsRepository
	chatRepo      *repository.ChatRepository
	profileRepo   *repository.ProfileRepository
	notifRepo     *repository.NotificationRepository
	timesheetRepo *repository.TimesheetRepository

	admin    Identity
	employee Identity
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithReview(t, false)
}

func newFixtureWithReview(t *testing.T, reviewRequired bool) *fixture {
	t.Helper()

	db := setupTestDB(t)
	feed := realtime.NewMemoryFeed()

	f := &fixture{
		db:            db,
		feed:          feed,
		taskRepo:      repository.NewTaskRepository(db),
		docRepo:       repository.NewDocumentRepository(db),
		smsRepo:       repository.NewSmsRepository(db),
		chatRepo:      repository.NewChatRepository(db),
		profileRepo:   repository.NewProfileRepository(db),
		notifRepo:     repository.NewNotificationRepository(db),
		timesheetRepo: repository.NewTimesheetRepository(db),
		admin:         Identity{UserID: uuid.NewString(), Role: constants.RoleAdmin},
		employee:      Identity{UserID: uuid.NewString(), Role: constants.RoleEmployee},
	}

	f.notifications = NewNotificationService(f.notifRepo, feed)
	f.tasks = NewTaskService(f.taskRepo, f.docRepo, f.timesheetRepo, f.notifications, feed, reviewRequired)
	f.sms = NewSmsService(f.smsRepo, f.taskRepo, f.notifications, feed)
	f.chat = NewChatService(f.chatRepo, feed)
	f.presence = NewPresenceService(f.profileRepo, feed)
	f.timesheet = NewTimesheetService(f.timesheetRepo, feed)

	ctx := context.Background()
	for _, id := range []struct {
		identity Identity
		name     string
	}{
		{f.admin, "Ada Admin"},
		{f.employee, "Eli Employee"},
	} {
		err := f.profileRepo.Upsert(ctx, &model.Profile{
			UserID:    id.identity.UserID,
			FirstName: id.name[:3],
			LastName:  id.name[4:],
			Email:     id.identity.UserID + "@example.test",
			Role:      id.identity.Role,
			Status:    constants.PresenceOffline,
		})
		require.NoError(t, err)
	}

	return f
}

func (f *fixture) createTask(t *testing.T, title string) *model.Task {
	t.Helper()

	task, err := f.tasks.Create(context.Background(), f.admin, repository.CreateTaskParams{
		Title:        title,
		CustomerName: "Acme GmbH",
		Priority:     constants.PriorityMedium,
	})
	require.NoError(t, err)
	return task
}

func (f *fixture) checkIn(t *testing.T, who Identity) {
	t.Helper()
	_, err := f.timesheet.Record(context.Background(), who, constants.EntryCheckIn)
	require.NoError(t, err)
}

func (f *fixture) uploadDocument(t *testing.T, who Identity, taskID string) {
	t.Helper()
	_, err := f.tasks.AddDocument(context.Background(), who, taskID, "report.pdf", "blob://report")
	require.NoError(t, err)
}

func TestTaskLifecycle_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := f.createTask(t, "Install router")
	assert.Equal(t, constants.StatusPending, task.Status)

	assignment, err := f.tasks.Assign(ctx, f.admin, task.ID, f.employee.UserID)
	require.NoError(t, err)
	assert.Equal(t, f.employee.UserID, assignment.UserID)

	got, err := f.taskRepo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusAssigned, got.Status)

	f.checkIn(t, f.employee)

	got, err = f.tasks.Accept(ctx, f.employee, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusInProgress, got.Status)

	assignment, err = f.taskRepo.FindAssignment(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, assignment.AcceptedAt)

	req, err := f.sms.Request(ctx, f.employee, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.SmsPending, req.Status)

	got, err = f.taskRepo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusSmsRequested, got.Status)

	fulfilled, err := f.sms.Fulfill(ctx, f.admin, task.ID, "482913")
	require.NoError(t, err)
	require.NotNil(t, fulfilled.SmsCode)
	assert.Equal(t, "482913", *fulfilled.SmsCode)

	got, err = f.taskRepo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusInProgress, got.Status)

	f.uploadDocument(t, f.employee, task.ID)

	got, err = f.tasks.Complete(ctx, f.employee, task.ID, "all done")
	require.NoError(t, err)
	assert.Equal(t, constants.StatusCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)

	// Completion cleanup removed the assignment row.
	_, err = f.taskRepo.FindAssignment(ctx, task.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The creating admin got a task_completed notification.
	notifications, err := f.notifRepo.ListByUser(ctx, f.admin.UserID, true)
	require.NoError(t, err)
	found := false
	for _, n := range notifications {
		if n.Type == constants.NotifyTaskCompleted {
			found = true
		}
	}
	assert.True(t, found, "admin should receive a task_completed notification")
}

func TestAssign_ConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := f.createTask(t, "Contested task")

	const attempts = 2
	var wg sync.WaitGroup
	wg.Add(attempts)
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := f.tasks.Assign(ctx, f.admin, task.ID, uuid.NewString())
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	var wins, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case err == apperrors.ErrTaskAlreadyAssigned || err == apperrors.ErrInvalidTransition:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins, "exactly one assign must win")
	assert.Equal(t, attempts-1, conflicts)

	var count int64
	require.NoError(t, f.db.Model(&model.TaskAssignment{}).Where("task_id = ?", task.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "at most one assignment row per task")
}

func TestAccept_RequiresCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := f.createTask(t, "Early shift")
	_, err := f.tasks.Assign(ctx, f.admin, task.ID, f.employee.UserID)
	require.NoError(t, err)

	// No time entry today.
	_, err = f.tasks.Accept(ctx, f.employee, task.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotCheckedIn)

	// Checked out is not checked in.
	f.checkIn(t, f.employee)
	_, err = f.timesheet.Record(ctx, f.employee, constants.EntryCheckOut)
	require.NoError(t, err)
	_, err = f.tasks.Accept(ctx, f.employee, task.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotCheckedIn)

	// Back from pause counts as checked in.
	_, err = f.timesheet.Record(ctx, f.employee, constants.EntryPauseEnd)
	require.NoError(t, err)
	got, err := f.tasks.Accept(ctx, f.employee, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusInProgress, got.Status)
}

func TestAccept_IdempotentAndAssigneeOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := f.createTask(t, "One-shot accept")
	_, err := f.tasks.Assign(ctx, f.admin, task.ID, f.employee.UserID)
	require.NoError(t, err)
	f.checkIn(t, f.employee)

	first, err := f.tasks.Accept(ctx, f.employee, task.ID)
	require.NoError(t, err)

	assignment, err := f.taskRepo.FindAssignment(ctx, task.ID)
	require.NoError(t, err)
	acceptedAt := *assignment.AcceptedAt

	// Repeat accept is a no-op, not a double apply.
	second, err := f.tasks.Accept(ctx, f.employee, task.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)

	assignment, err = f.taskRepo.FindAssignment(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, acceptedAt, *assignment.AcceptedAt)

	// A stranger cannot accept.
	stranger := Identity{UserID: uuid.NewString(), Role: constants.RoleEmployee}
	_, err = f.tasks.Accept(ctx, stranger, task.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotAssignee)
}

func TestAccept_RollsBackStatusWithoutAssignmentRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := f.createTask(t, "Vanishing assignment")
	_, err := f.tasks.Assign(ctx, f.admin, task.ID, f.employee.UserID)
	require.NoError(t, err)

	// Pull the assignment row out from under the accept.
	require.NoError(t, f.db.Delete(&model.TaskAssignment{}, "task_id = ?", task.ID).Error)

	err = f.taskRepo.Accept(ctx, task.ID, time.Now().UTC())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The status flip must not survive the failed stamp: the task stays
	// assignable instead of being stuck in_progress with accepted_at nil.
	got, err := f.taskRepo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusAssigned, got.Status)
}

func TestCancel_RemovesAssignmentWithStatusFlip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := f.createTask(t, "Cancelled mid-flight")
	_, err := f.tasks.Assign(ctx, f.admin, task.ID, f.employee.UserID)
	require.NoError(t, err)

	got, err := f.tasks.Cancel(ctx, f.admin, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusCancelled, got.Status)

	// No live assignment row may outlast the cancelled status.
	_, err = f.taskRepo.FindAssignment(ctx, task.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestComplete_RequiresDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := f.createTask(t, "Paperwork required")
	_, err := f.tasks.Assign(ctx, f.admin, task.ID, f.employee.UserID)
	require.NoError(t, err)
	f.checkIn(t, f.employee)
	_, err = f.tasks.Accept(ctx, f.employee, task.ID)
	require.NoError(t, err)

	_, err = f.tasks.Complete(ctx, f.employee, task.ID, "done")
	assert.ErrorIs(t, err, apperrors.ErrNoDocuments)

	f.uploadDocument(t, f.employee, task.ID)
	got, err := f.tasks.Complete(ctx, f.employee, task.ID, "done")
	require.NoError(t, err)
	assert.Equal(t, constants.StatusCompleted, got.Status)
}

func TestComplete_ReviewRequired(t *testing.T) {
	f := newFixtureWithReview(t, true)
	ctx := context.Background()

	task := f.createTask(t, "Reviewed work")
	_, err := f.tasks.Assign(ctx, f.admin, task.ID, f.employee.UserID)
	require.NoError(t, err)
	f.checkIn(t, f.employee)
	_, err = f.tasks.Accept(ctx, f.employee, task.ID)
	require.NoError(t, err)
	f.uploadDocument(t, f.employee, task.ID)

	got, err := f.tasks.Complete(ctx, f.employee, task.ID, "please review")
	require.NoError(t, err)
	assert.Equal(t, constants.StatusPendingReview, got.Status)

	// Approval is admin-only.
	_, err = f.tasks.Approve(ctx, f.employee, task.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	approved, err := f.tasks.Approve(ctx, f.admin, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusCompleted, approved.Status)
}

func TestReturn_ResetsToPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := f.createTask(t, "Returned task")
	_, err := f.tasks.Assign(ctx, f.admin, task.ID, f.employee.UserID)
	require.NoError(t, err)

	got, err := f.tasks.Return(ctx, f.employee, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusPending, got.Status)

	_, err = f.taskRepo.FindAssignment(ctx, task.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The task can be assigned again after the return.
	_, err = f.tasks.Assign(ctx, f.admin, task.ID, f.employee.UserID)
	require.NoError(t, err)
}

func TestCancel_AdminOnlyAndTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := f.createTask(t, "Doomed task")

	_, err := f.tasks.Cancel(ctx, f.employee, task.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	got, err := f.tasks.Cancel(ctx, f.admin, task.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.StatusCancelled, got.Status)

	// Terminal states cannot be cancelled again.
	_, err = f.tasks.Cancel(ctx, f.admin, task.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestDelete_CascadesDependents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := f.createTask(t, "Short-lived task")
	_, err := f.tasks.Assign(ctx, f.admin, task.ID, f.employee.UserID)
	require.NoError(t, err)
	f.checkIn(t, f.employee)
	_, err = f.tasks.Accept(ctx, f.employee, task.ID)
	require.NoError(t, err)
	_, err = f.sms.Request(ctx, f.employee, task.ID)
	require.NoError(t, err)
	f.uploadDocument(t, f.employee, task.ID)

	require.NoError(t, f.tasks.Delete(ctx, f.admin, task.ID))

	_, err = f.taskRepo.FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	for _, m := range []interface{}{&model.TaskAssignment{}, &model.SmsCodeRequest{}, &model.TaskDocument{}} {
		var count int64
		require.NoError(t, f.db.Model(m).Where("task_id = ?", task.ID).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestStats_CountsEveryStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createTask(t, "A")
	b := f.createTask(t, "B")
	_, err := f.tasks.Assign(ctx, f.admin, b.ID, f.employee.UserID)
	require.NoError(t, err)

	counts, err := f.tasks.Stats(ctx, f.admin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[constants.StatusPending])
	assert.EqualValues(t, 1, counts[constants.StatusAssigned])
	assert.Contains(t, counts, constants.StatusPendingReview)

	_, err = f.tasks.Stats(ctx, f.employee)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestList_ScopedByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.createTask(t, "Mine")
	f.createTask(t, "Someone else's")
	_, err := f.tasks.Assign(ctx, f.admin, mine.ID, f.employee.UserID)
	require.NoError(t, err)

	all, err := f.tasks.List(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	visible, err := f.tasks.List(ctx, f.employee)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, mine.ID, visible[0].ID)
}
