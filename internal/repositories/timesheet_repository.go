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

type TimesheetRepository struct {
	db *gorm.DB
}

func NewTimesheetRepository(db *gorm.DB) *TimesheetRepository {
	return &TimesheetRepository{db: db}
}

func (r *TimesheetRepository) Insert(ctx context.Context, userID string, entryType constants.TimeEntryType, at time.Time) (*model.TimeEntry, error) {
	entry := &model.TimeEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		EntryType: entryType,
		Timestamp: at.UTC(),
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}

	return entry, nil
}

func (r *TimesheetRepository) ListForDay(ctx context.Context, userID string, day time.Time) ([]model.TimeEntry, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	var entries []model.TimeEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND timestamp >= ? AND timestamp < ?", userID, start, end).
		Order("timestamp asc").
		Find(&entries).Error
	return entries, err
}

// CheckedIn reports whether the user's most recent entry for the given day is
// check_in or pause_end. No entry for the day means not checked in.
func (r *TimesheetRepository) CheckedIn(ctx context.Context, userID string, day time.Time) (bool, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	var entry model.TimeEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND timestamp >= ? AND timestamp < ?", userID, start, end).
		Order("timestamp desc").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return entry.EntryType == constants.EntryCheckIn || entry.EntryType == constants.EntryPauseEnd, nil
}
