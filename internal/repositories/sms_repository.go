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

// SmsRepository only ever inserts request rows; requesters have no update
// path, so the request history stays append-only.
type SmsRepository struct {
	db *gorm.DB
}

func NewSmsRepository(db *gorm.DB) *SmsRepository {
	return &SmsRepository{db: db}
}

func (r *SmsRepository) Insert(ctx context.Context, taskID, userID string, status constants.SmsRequestStatus, code *string) (*model.SmsCodeRequest, error) {
	req := &model.SmsCodeRequest{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		UserID:      userID,
		Status:      status,
		SmsCode:     code,
		RequestedAt: time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, err
	}

	return req, nil
}

func (r *SmsRepository) FindByID(ctx context.Context, id string) (*model.SmsCodeRequest, error) {
	var req model.SmsCodeRequest
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *SmsRepository) ListByTask(ctx context.Context, taskID string) ([]model.SmsCodeRequest, error) {
	var reqs []model.SmsCodeRequest
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("requested_at desc, id desc").
		Find(&reqs).Error
	return reqs, err
}

// Current resolves the current request for a task: the most recent row
// carrying a code, falling back to the most recent row overall.
func (r *SmsRepository) Current(ctx context.Context, taskID string) (*model.SmsCodeRequest, error) {
	var req model.SmsCodeRequest
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND sms_code IS NOT NULL", taskID).
		Order("requested_at desc, id desc").
		First(&req).Error
	if err == nil {
		return &req, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("requested_at desc, id desc").
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}
