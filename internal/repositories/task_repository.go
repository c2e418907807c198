package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"crewsync.com/crewsync/internal/constants"
	model "crewsync.com/crewsync/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

var (
	ErrOptimisticLock  = errors.New("optimistic locking conflict")
	ErrAssignmentTaken = errors.New("assignment already exists for task")
	ErrStatusConflict  = errors.New("task status changed concurrently")
)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

type CreateTaskParams struct {
	Title               string
	Description         string
	CustomerName        string
	CustomerPhone       string
	Deadline            *time.Time
	Priority            constants.TaskPriority
	SpecialCompensation string
	TestEmail           string
	TestPassword        string
	WebIdentURL         string
	CreatedBy           string
}

func (r *TaskRepository) Create(ctx context.Context, p CreateTaskParams) (*model.Task, error) {
	task := &model.Task{
		ID:                  uuid.NewString(),
		Title:               p.Title,
		Description:         p.Description,
		CustomerName:        p.CustomerName,
		CustomerPhone:       p.CustomerPhone,
		Deadline:            p.Deadline,
		Priority:            p.Priority,
		Status:              constants.StatusPending,
		SpecialCompensation: p.SpecialCompensation,
		TestEmail:           p.TestEmail,
		TestPassword:        p.TestPassword,
		WebIdentURL:         p.WebIdentURL,
		CreatedBy:           p.CreatedBy,
		Version:             1,
		CreatedAt:           time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, err
	}

	return task, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListByAssignee(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id").
		Where("task_assignments.user_id = ?", userID).
		Order("tasks.created_at desc").
		Find(&tasks).Error
	return tasks, err
}

// Update writes all mutable task fields, guarded by the version column.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.update(r.db, ctx, task)
}

func (r *TaskRepository) update(db *gorm.DB, ctx context.Context, task *model.Task) error {
	res := db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND version = ?", task.ID, task.Version).
		Updates(map[string]interface{}{
			"title":            task.Title,
			"description":      task.Description,
			"status":           task.Status,
			"priority":         task.Priority,
			"completion_notes": task.CompletionNotes,
			"completed_at":     task.CompletedAt,
			"version":          gorm.Expr("version + 1"),
		})

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrOptimisticLock
	}

	task.Version++
	return nil
}

// SetStatus moves a task from one status to another only if it still holds
// one of the expected statuses. Zero rows affected means another writer won.
func (r *TaskRepository) SetStatus(ctx context.Context, taskID string, from []constants.TaskStatus, to constants.TaskStatus) error {
	return r.setStatus(r.db, ctx, taskID, from, to)
}

func (r *TaskRepository) setStatus(db *gorm.DB, ctx context.Context, taskID string, from []constants.TaskStatus, to constants.TaskStatus) error {
	res := db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND status IN ?", taskID, from).
		Updates(map[string]interface{}{
			"status":  to,
			"version": gorm.Expr("version + 1"),
		})

	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

// Assign creates the single assignment row for a task and flips its status to
// assigned in one transaction. The unique index on task_id plus the
// status-guarded update guarantee exactly one winner under concurrent assigns.
func (r *TaskRepository) Assign(ctx context.Context, taskID, userID string) (*model.TaskAssignment, error) {
	assignment := &model.TaskAssignment{
		ID:         uuid.NewString(),
		TaskID:     taskID,
		UserID:     userID,
		AssignedAt: time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(assignment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAssignmentTaken
			}
			return err
		}

		return r.setStatus(tx, ctx, taskID,
			[]constants.TaskStatus{constants.StatusPending}, constants.StatusAssigned)
	})
	if err != nil {
		return nil, err
	}

	return assignment, nil
}

func (r *TaskRepository) FindAssignment(ctx context.Context, taskID string) (*model.TaskAssignment, error) {
	var assignment model.TaskAssignment
	err := r.db.WithContext(ctx).First(&assignment, "task_id = ?", taskID).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *TaskRepository) FindAssignmentByID(ctx context.Context, id string) (*model.TaskAssignment, error) {
	var assignment model.TaskAssignment
	err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *TaskRepository) ListAssignments(ctx context.Context) ([]model.TaskAssignment, error) {
	var assignments []model.TaskAssignment
	err := r.db.WithContext(ctx).Order("assigned_at desc").Find(&assignments).Error
	return assignments, err
}

func (r *TaskRepository) UpdateAssignment(ctx context.Context, a *model.TaskAssignment) error {
	return r.db.WithContext(ctx).Model(&model.TaskAssignment{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"accepted_at":      a.AcceptedAt,
			"progress_notes":   a.ProgressNotes,
			"workflow_step":    a.WorkflowStep,
			"workflow_digital": a.WorkflowDigital,
		}).Error
}

// Accept flips assigned → in_progress and stamps the assignment's accepted_at
// in one transaction. A vanished assignment row rolls the status flip back.
func (r *TaskRepository) Accept(ctx context.Context, taskID string, acceptedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := r.setStatus(tx, ctx, taskID,
			[]constants.TaskStatus{constants.StatusAssigned}, constants.StatusInProgress)
		if err != nil {
			return err
		}

		res := tx.Model(&model.TaskAssignment{}).
			Where("task_id = ?", taskID).
			Update("accepted_at", acceptedAt)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Cancel moves the task to cancelled and removes any lingering assignment row
// in one transaction.
func (r *TaskRepository) Cancel(ctx context.Context, taskID string, from []constants.TaskStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.setStatus(tx, ctx, taskID, from, constants.StatusCancelled); err != nil {
			return err
		}
		return tx.Delete(&model.TaskAssignment{}, "task_id = ?", taskID).Error
	})
}

// Release deletes the assignment row and resets the task to pending.
func (r *TaskRepository) Release(ctx context.Context, taskID string, from []constants.TaskStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.TaskAssignment{}, "task_id = ?", taskID).Error; err != nil {
			return err
		}
		return r.setStatus(tx, ctx, taskID, from, constants.StatusPending)
	})
}

// Complete records completion fields and removes the assignment row in one
// transaction.
func (r *TaskRepository) Complete(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.update(tx, ctx, task); err != nil {
			return err
		}
		return tx.Delete(&model.TaskAssignment{}, "task_id = ?", task.ID).Error
	})
}

// Delete cascades the task, its assignment, its code requests and its
// documents atomically.
func (r *TaskRepository) Delete(ctx context.Context, taskID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.TaskAssignment{}, "task_id = ?", taskID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.SmsCodeRequest{}, "task_id = ?", taskID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.TaskDocument{}, "task_id = ?", taskID).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Task{}, "id = ?", taskID).Error
	})
}

func (r *TaskRepository) CountByStatus(ctx context.Context) (map[constants.TaskStatus]int64, error) {
	type row struct {
		Status constants.TaskStatus
		N      int64
	}

	var rows []row
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[constants.TaskStatus]int64, len(constants.AllStatuses))
	for _, s := range constants.AllStatuses {
		counts[s] = 0
	}
	for _, rw := range rows {
		counts[rw.Status] = rw.N
	}
	return counts, nil
}
