package services

import (
	"context"
	"time"

	"crewsync.com/crewsync/internal/constants"
	apperrors "crewsync.com/crewsync/internal/errors"
	model "crewsync.com/crewsync/internal/models"
	"crewsync.com/crewsync/internal/realtime"
	repository "crewsync.com/crewsync/internal/repositories"
)

// TimesheetService records the check-in/check-out sequence that gates task
// acceptance.
type TimesheetService struct {
	timesheet *repository.TimesheetRepository
	feed      realtime.Feed
}

func NewTimesheetService(timesheet *repository.TimesheetRepository, feed realtime.Feed) *TimesheetService {
	return &TimesheetService{timesheet: timesheet, feed: feed}
}

func (s *TimesheetService) Record(ctx context.Context, caller Identity, entryType constants.TimeEntryType) (*model.TimeEntry, error) {
	switch entryType {
	case constants.EntryCheckIn, constants.EntryCheckOut, constants.EntryPauseStart, constants.EntryPauseEnd:
	default:
		return nil, apperrors.ErrInvalidEntryType
	}

	entry, err := s.timesheet.Insert(ctx, caller.UserID, entryType, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.feed, realtime.TopicTimeEntries, realtime.EventInsert, entry.ID)
	return entry, nil
}

func (s *TimesheetService) Today(ctx context.Context, caller Identity) ([]model.TimeEntry, error) {
	return s.timesheet.ListForDay(ctx, caller.UserID, time.Now().UTC())
}

func (s *TimesheetService) CheckedIn(ctx context.Context, caller Identity) (bool, error) {
	return s.timesheet.CheckedIn(ctx, caller.UserID, time.Now().UTC())
}
