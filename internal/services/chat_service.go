package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "crewsync.com/crewsync/internal/errors"
	model "crewsync.com/crewsync/internal/models"
	"crewsync.com/crewsync/internal/realtime"
	repository "crewsync.com/crewsync/internal/repositories"
)

type ChatService struct {
	chat *repository.ChatRepository
	feed realtime.Feed
}

func NewChatService(chat *repository.ChatRepository, feed realtime.Feed) *ChatService {
	return &ChatService{chat: chat, feed: feed}
}

// Send stores a direct or group message. Group messages carry no recipient.
func (s *ChatService) Send(ctx context.Context, caller Identity, recipientID *string, message, imageRef string) (*model.ChatMessage, error) {
	msg, err := s.chat.Create(ctx, caller.UserID, recipientID, message, imageRef)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.feed, realtime.TopicChat, realtime.EventInsert, msg.ID)
	return msg, nil
}

func (s *ChatService) ListDirect(ctx context.Context, caller Identity, peerID string, limit int) ([]model.ChatMessage, error) {
	return s.chat.ListDirect(ctx, caller.UserID, peerID, limit)
}

func (s *ChatService) ListGroup(ctx context.Context, limit int) ([]model.ChatMessage, error) {
	return s.chat.ListGroup(ctx, limit)
}

// MarkRead sets read_at once. Re-reading an already-read message is a no-op;
// only the recipient may read it.
func (s *ChatService) MarkRead(ctx context.Context, caller Identity, messageID string) (*model.ChatMessage, error) {
	affected, err := s.chat.MarkRead(ctx, messageID, caller.UserID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if affected == 0 {
		msg, err := s.chat.FindByID(ctx, messageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrMessageNotFound
			}
			return nil, err
		}
		if msg.RecipientID == nil || *msg.RecipientID != caller.UserID {
			return nil, apperrors.ErrPermissionDenied
		}
		// Already read: read_at stays as first written.
		return msg, nil
	}

	publishEvent(ctx, s.feed, realtime.TopicChat, realtime.EventUpdate, messageID)
	return s.chat.FindByID(ctx, messageID)
}

// MarkConversationRead clears every unread message from one sender in a
// single batched update, bounding latency under high unread counts.
func (s *ChatService) MarkConversationRead(ctx context.Context, caller Identity, senderID string) (int64, error) {
	affected, err := s.chat.MarkConversationRead(ctx, caller.UserID, senderID, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	if affected > 0 {
		publishEvent(ctx, s.feed, realtime.TopicChat, realtime.EventUpdate, senderID)
	}
	return affected, nil
}

func (s *ChatService) UnreadCount(ctx context.Context, caller Identity) (int64, error) {
	return s.chat.CountUnread(ctx, caller.UserID)
}
