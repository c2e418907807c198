package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "crewsync.com/crewsync/internal/models"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, taskID, userID, fileName, blobRef string) (*model.TaskDocument, error) {
	doc := &model.TaskDocument{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		UserID:    userID,
		FileName:  fileName,
		BlobRef:   blobRef,
		CreatedAt: time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}

	return doc, nil
}

func (r *DocumentRepository) ListByTask(ctx context.Context, taskID string) ([]model.TaskDocument, error) {
	var docs []model.TaskDocument
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at asc").
		Find(&docs).Error
	return docs, err
}

func (r *DocumentRepository) CountForTaskUser(ctx context.Context, taskID, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.TaskDocument{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Count(&n).Error
	return n, err
}
