package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"gorm.io/datatypes"

	"crewsync.com/crewsync/internal/constants"
	apperrors "crewsync.com/crewsync/internal/errors"
	model "crewsync.com/crewsync/internal/models"
	"crewsync.com/crewsync/internal/push"
	"crewsync.com/crewsync/internal/realtime"
	repository "crewsync.com/crewsync/internal/repositories"
)

type NotificationService struct {
	notifications *repository.NotificationRepository
	feed          realtime.Feed
}

func NewNotificationService(notifications *repository.NotificationRepository, feed realtime.Feed) *NotificationService {
	return &NotificationService{notifications: notifications, feed: feed}
}

// NotifyUser persists a notification row and hands the matching web-push
// payload to the delivery boundary. Push transport itself is external.
func (s *NotificationService) NotifyUser(ctx context.Context, userID string, typ constants.NotificationType, title, message string, relatedTaskID *string) (*model.Notification, error) {
	var data datatypes.JSON
	if relatedTaskID != nil {
		raw, err := json.Marshal(map[string]string{"task_id": *relatedTaskID})
		if err == nil {
			data = raw
		}
	}

	n, err := s.notifications.Create(ctx, userID, typ, title, message, relatedTaskID, data)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.feed, realtime.TopicNotifications, realtime.EventInsert, n.ID)

	payload := push.NewPayload(title, message, string(typ))
	if raw, err := json.Marshal(payload); err == nil {
		log.Printf("push: queued for %s: %s", userID, raw)
	}

	return n, nil
}

// Notify adapts lifecycle alerts from a client session onto NotifyUser.
func (s *NotificationService) Notify(ctx context.Context, userID string, typ constants.NotificationType, title, body string, taskID *string) error {
	_, err := s.NotifyUser(ctx, userID, typ, title, body, taskID)
	return err
}

func (s *NotificationService) List(ctx context.Context, caller Identity, unreadOnly bool) ([]model.Notification, error) {
	return s.notifications.ListByUser(ctx, caller.UserID, unreadOnly)
}

// MarkRead is idempotent: a second call on an already-read notification is a
// no-op success.
func (s *NotificationService) MarkRead(ctx context.Context, caller Identity, id string) error {
	affected, err := s.notifications.MarkRead(ctx, id, caller.UserID, time.Now().UTC())
	if err != nil {
		return err
	}
	if affected == 0 {
		n, err := s.notifications.FindByID(ctx, id)
		if err != nil {
			return apperrors.ErrNotificationNotFound
		}
		if n.UserID != caller.UserID {
			return apperrors.ErrPermissionDenied
		}
		// Already read: leave the original timestamp intact.
		return nil
	}

	publishEvent(ctx, s.feed, realtime.TopicNotifications, realtime.EventUpdate, id)
	return nil
}
