package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"crewsync.com/crewsync/internal/constants"
	model "crewsync.com/crewsync/internal/models"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, userID string, typ constants.NotificationType, title, message string, relatedTaskID *string, data datatypes.JSON) (*model.Notification, error) {
	n := &model.Notification{
		ID:            uuid.NewString(),
		UserID:        userID,
		Type:          typ,
		Title:         title,
		Message:       message,
		RelatedTaskID: relatedTaskID,
		Data:          data,
		CreatedAt:     time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}

	return n, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	var notifications []model.Notification
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	err := q.Order("created_at desc").Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", at)
	return res.RowsAffected, res.Error
}
