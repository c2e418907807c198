// Package session is the client-side half of the realtime core: one Session
// per connected client, combining the initial load, the subscription
// supervisor, the notification dedup gate and the canonical-refetch rule.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"crewsync.com/crewsync/internal/constants"
	model "crewsync.com/crewsync/internal/models"
	"crewsync.com/crewsync/internal/realtime"
	repository "crewsync.com/crewsync/internal/repositories"
)

// Alert is a user-visible notification decision: sound, toast or system
// notification on the consuming surface.
type Alert struct {
	Type   constants.NotificationType `json:"type"`
	Title  string                     `json:"title"`
	Body   string                     `json:"body"`
	Tag    string                     `json:"tag"`
	TaskID string                     `json:"task_id,omitempty"`
}

// Snapshot is the canonical state a UI derives its display from. It is
// replaced wholesale on every refetch, never merged from event payloads.
type Snapshot struct {
	Tasks         []model.Task
	Assignments   []model.TaskAssignment
	SmsRequests   []model.SmsCodeRequest
	Notifications []model.Notification
	Profiles      []model.Profile
	TimeEntries   []model.TimeEntry
	UnreadChat    int64
}

type Stores struct {
	Tasks         *repository.TaskRepository
	Sms           *repository.SmsRepository
	Chat          *repository.ChatRepository
	Profiles      *repository.ProfileRepository
	Notifications *repository.NotificationRepository
	Timesheet     *repository.TimesheetRepository
}

type Config struct {
	UserID         string
	Feed           realtime.Feed
	Stores         Stores
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	// SettleDelay is the grace period after the subscribed handshake during
	// which events still count as catch-up.
	SettleDelay time.Duration
}

type Session struct {
	userID string
	feed   realtime.Feed
	stores Stores
	gate   *realtime.Gate
	super  *realtime.Supervisor

	mu       sync.Mutex
	snapshot Snapshot
	alerted  map[string]bool

	alerts chan Alert
	status chan realtime.Status
}

func New(cfg Config) *Session {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = time.Second
	}

	s := &Session{
		userID:  cfg.UserID,
		feed:    cfg.Feed,
		stores:  cfg.Stores,
		gate:    realtime.NewGate(cfg.SettleDelay),
		alerted: make(map[string]bool),
		alerts:  make(chan Alert, 32),
		status:  make(chan realtime.Status, 8),
	}

	s.super = realtime.NewSupervisor(cfg.Feed, realtime.AllTopics, s.refetch, realtime.SupervisorOptions{
		ConfirmTimeout: cfg.ConfirmTimeout,
		PollInterval:   cfg.PollInterval,
		OnEvent:        s.handleEvent,
		OnStatus:       s.handleStatus,
	})
	return s
}

// Alerts delivers the user-visible notification decisions for this session.
func (s *Session) Alerts() <-chan Alert { return s.alerts }

// StatusChanges surfaces channel health transitions for the consuming UI.
func (s *Session) StatusChanges() <-chan realtime.Status { return s.status }

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Polling reports whether the session is on the interval fallback.
func (s *Session) Polling() bool { return s.super.Polling() }

// Live reports whether the dedup gate has opened for this session.
func (s *Session) Live() bool { return s.gate.Live() }

// Run performs the phase-1 load, then drives the supervisor until ctx is
// cancelled. Cancelling tears down the subscription and every timer.
func (s *Session) Run(ctx context.Context) error {
	// Phase 1: one full fetch of every aggregate. Nothing surfaces here.
	if err := s.refetch(ctx, realtime.AllTopics); err != nil {
		return err
	}

	return s.super.Run(ctx)
}

func (s *Session) handleStatus(st realtime.Status) {
	switch st {
	case realtime.StatusSubscribed:
		s.gate.Arm()
	case realtime.StatusErrored, realtime.StatusClosed:
		s.gate.Reset()
	}

	select {
	case s.status <- st:
	default:
	}
}

// refetch reloads the canonical state for the given topics. Last write wins,
// so overlapping poll and push refetches are harmless.
func (s *Session) refetch(ctx context.Context, topics []realtime.Topic) error {
	for _, topic := range topics {
		if err := s.refetchTopic(ctx, topic); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) refetchTopic(ctx context.Context, topic realtime.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch topic {
	case realtime.TopicTasks:
		tasks, err := s.stores.Tasks.List(ctx)
		if err != nil {
			return err
		}
		s.snapshot.Tasks = tasks
	case realtime.TopicAssignments:
		assignments, err := s.stores.Tasks.ListAssignments(ctx)
		if err != nil {
			return err
		}
		s.snapshot.Assignments = assignments
	case realtime.TopicSmsRequests:
		// Request history is keyed per task; the snapshot carries the union
		// of requests for the user's assigned tasks. The assignment set is
		// re-fetched alongside so the union never derives from a stale
		// snapshot.
		assignments, err := s.stores.Tasks.ListAssignments(ctx)
		if err != nil {
			return err
		}
		s.snapshot.Assignments = assignments

		var requests []model.SmsCodeRequest
		for _, a := range assignments {
			if a.UserID != s.userID {
				continue
			}
			rows, err := s.stores.Sms.ListByTask(ctx, a.TaskID)
			if err != nil {
				return err
			}
			requests = append(requests, rows...)
		}
		s.snapshot.SmsRequests = requests
	case realtime.TopicChat:
		n, err := s.stores.Chat.CountUnread(ctx, s.userID)
		if err != nil {
			return err
		}
		s.snapshot.UnreadChat = n
	case realtime.TopicPresence:
		profiles, err := s.stores.Profiles.List(ctx)
		if err != nil {
			return err
		}
		s.snapshot.Profiles = profiles
	case realtime.TopicNotifications:
		notifications, err := s.stores.Notifications.ListByUser(ctx, s.userID, false)
		if err != nil {
			return err
		}
		s.snapshot.Notifications = notifications
	case realtime.TopicTimeEntries:
		entries, err := s.stores.Timesheet.ListForDay(ctx, s.userID, time.Now().UTC())
		if err != nil {
			return err
		}
		s.snapshot.TimeEntries = entries
	}
	return nil
}

// handleEvent decides whether a change event is worth a user-visible alert.
// The canonical refetch has already run; only the alert decision is gated.
func (s *Session) handleEvent(ev realtime.Event) {
	if !s.gate.ShouldSurface(ev) {
		return
	}

	ctx := context.Background()

	switch ev.Topic {
	case realtime.TopicAssignments:
		if ev.Kind != realtime.EventInsert {
			return
		}
		assignment, err := s.stores.Tasks.FindAssignmentByID(ctx, ev.RowID)
		if err != nil {
			s.logLookup(ev, err)
			return
		}
		if assignment.UserID != s.userID {
			return
		}
		title := "New task"
		if task, err := s.stores.Tasks.FindByID(ctx, assignment.TaskID); err == nil {
			title = "New task: " + task.Title
		}
		s.emit(ev, Alert{
			Type:   constants.NotifyTaskAssigned,
			Title:  title,
			Body:   "A task has been assigned to you",
			Tag:    string(constants.NotifyTaskAssigned),
			TaskID: assignment.TaskID,
		})

	case realtime.TopicSmsRequests:
		request, err := s.stores.Sms.FindByID(ctx, ev.RowID)
		if err != nil {
			s.logLookup(ev, err)
			return
		}
		if request.SmsCode == nil || request.UserID != s.userID {
			return
		}
		s.emit(ev, Alert{
			Type:   constants.NotifySmsCode,
			Title:  "Code received",
			Body:   "A verification code has arrived",
			Tag:    string(constants.NotifySmsCode),
			TaskID: request.TaskID,
		})

	case realtime.TopicChat:
		if ev.Kind != realtime.EventInsert {
			return
		}
		msg, err := s.stores.Chat.FindByID(ctx, ev.RowID)
		if err != nil {
			s.logLookup(ev, err)
			return
		}
		if msg.RecipientID == nil || *msg.RecipientID != s.userID || msg.ReadAt != nil {
			return
		}
		sender := msg.SenderID
		if profile, err := s.stores.Profiles.FindByUserID(ctx, msg.SenderID); err == nil {
			sender = profile.FullName()
		}
		s.emit(ev, Alert{
			Type:  constants.NotifyChatMessage,
			Title: "Message from " + sender,
			Body:  msg.Message,
			Tag:   string(constants.NotifyChatMessage),
		})
	}
}

// emit fires an alert at most once per row; re-delivered events for a row the
// session already surfaced are dropped.
func (s *Session) emit(ev realtime.Event, a Alert) {
	key := string(ev.Topic) + ":" + ev.RowID

	s.mu.Lock()
	if s.alerted[key] {
		s.mu.Unlock()
		return
	}
	s.alerted[key] = true
	s.mu.Unlock()

	select {
	case s.alerts <- a:
	default:
		log.Printf("session %s: alert channel full, dropped %s", s.userID, a.Tag)
	}
}

func (s *Session) logLookup(ev realtime.Event, err error) {
	// Deleted-before-lookup is a normal race, not an error.
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	log.Printf("session %s: lookup for %s/%s failed: %v", s.userID, ev.Topic, ev.RowID, err)
}
