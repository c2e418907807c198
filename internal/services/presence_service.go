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

// PresenceService tracks the per-user status enum. Writes are last-write-wins
// and ride the same change feed as task data; subscribers render them
// immediately, outside the notification startup gate.
type PresenceService struct {
	profiles *repository.ProfileRepository
	feed     realtime.Feed
}

func NewPresenceService(profiles *repository.ProfileRepository, feed realtime.Feed) *PresenceService {
	return &PresenceService{profiles: profiles, feed: feed}
}

func (s *PresenceService) SetStatus(ctx context.Context, caller Identity, status constants.PresenceStatus) error {
	if !constants.ValidPresence(status) {
		return apperrors.ErrInvalidPresence
	}

	if err := s.profiles.SetStatus(ctx, caller.UserID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProfileNotFound
		}
		return err
	}

	publishEvent(ctx, s.feed, realtime.TopicPresence, realtime.EventUpdate, caller.UserID)
	return nil
}

// ForceOffline is the sign-out hook.
func (s *PresenceService) ForceOffline(ctx context.Context, caller Identity) error {
	return s.SetStatus(ctx, caller, constants.PresenceOffline)
}

func (s *PresenceService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PresenceService) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	return s.profiles.List(ctx)
}

func (s *PresenceService) UpsertProfile(ctx context.Context, caller Identity, p *model.Profile) error {
	if !caller.IsAdmin() && caller.UserID != p.UserID {
		return apperrors.ErrPermissionDenied
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return err
	}

	publishEvent(ctx, s.feed, realtime.TopicPresence, realtime.EventUpdate, p.UserID)
	return nil
}

// HasRole is the fallback role check used when a direct profile lookup is
// denied by access policy.
func (s *PresenceService) HasRole(ctx context.Context, userID string, role constants.Role) (bool, error) {
	return s.profiles.HasRole(ctx, userID, role)
}
