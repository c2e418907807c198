package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "crewsync.com/crewsync/internal/models"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, senderID string, recipientID *string, message, imageRef string) (*model.ChatMessage, error) {
	msg := &model.ChatMessage{
		ID:             uuid.NewString(),
		SenderID:       senderID,
		RecipientID:    recipientID,
		IsGroupMessage: recipientID == nil,
		Message:        message,
		ImageRef:       imageRef,
		CreatedAt:      time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}

	return msg, nil
}

func (r *ChatRepository) FindByID(ctx context.Context, id string) (*model.ChatMessage, error) {
	var msg model.ChatMessage
	err := r.db.WithContext(ctx).First(&msg, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListDirect returns the conversation between two users, oldest first.
func (r *ChatRepository) ListDirect(ctx context.Context, userA, userB string, limit int) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	q := r.db.WithContext(ctx).
		Where("is_group_message = ? AND ((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?))",
			false, userA, userB, userB, userA).
		Order("created_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&msgs).Error
	return msgs, err
}

func (r *ChatRepository) ListGroup(ctx context.Context, limit int) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	q := r.db.WithContext(ctx).
		Where("is_group_message = ?", true).
		Order("created_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&msgs).Error
	return msgs, err
}

// MarkRead sets read_at exactly once. A second call matches zero rows and
// reports zero affected, leaving the original timestamp intact.
func (r *ChatRepository) MarkRead(ctx context.Context, messageID, recipientID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.ChatMessage{}).
		Where("id = ? AND recipient_id = ? AND read_at IS NULL", messageID, recipientID).
		Update("read_at", at)
	return res.RowsAffected, res.Error
}

// MarkConversationRead is a single batched update over all unread messages
// from one sender to one recipient.
func (r *ChatRepository) MarkConversationRead(ctx context.Context, recipientID, senderID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.ChatMessage{}).
		Where("recipient_id = ? AND sender_id = ? AND read_at IS NULL", recipientID, senderID).
		Update("read_at", at)
	return res.RowsAffected, res.Error
}

func (r *ChatRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ChatMessage{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&n).Error
	return n, err
}
