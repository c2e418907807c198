package realtime

import (
	"context"
	"sync"
	"time"
)

// Topic is one logical change-feed channel. Scoping of what a caller may see
// is enforced by the store's access policy, never by client-side filters.
type Topic string

const (
	TopicTasks         Topic = "tasks"
	TopicAssignments   Topic = "assignments"
	TopicSmsRequests   Topic = "sms_requests"
	TopicChat          Topic = "chat"
	TopicPresence      Topic = "presence"
	TopicNotifications Topic = "notifications"
	TopicTimeEntries   Topic = "time_entries"
)

var AllTopics = []Topic{
	TopicTasks,
	TopicAssignments,
	TopicSmsRequests,
	TopicChat,
	TopicPresence,
	TopicNotifications,
	TopicTimeEntries,
}

type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
	EventDelete EventKind = "delete"
)

// Event carries only enough to locate the affected row. Consumers never merge
// an event payload into local state; they refetch the aggregate.
type Event struct {
	Topic Topic     `json:"topic"`
	Kind  EventKind `json:"kind"`
	RowID string    `json:"row_id"`
	At    time.Time `json:"at"`
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusSubscribed Status = "subscribed"
	StatusErrored    Status = "errored"
	StatusClosed     Status = "closed"
)

type Subscription interface {
	Events() <-chan Event
	Status() <-chan Status
	Close() error
}

type Feed interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, topics ...Topic) (Subscription, error)
}

// MemoryFeed is an in-process Feed for tests and single-node runs without
// redis. Subscriptions confirm immediately.
type MemoryFeed struct {
	mu   sync.Mutex
	subs map[int]*memorySubscription
	next int
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[int]*memorySubscription)}
}

type memorySubscription struct {
	feed    *MemoryFeed
	id      int
	topics  map[Topic]bool
	events  chan Event
	status  chan Status
	closeMu sync.Mutex
	closed  bool
}

func (f *MemoryFeed) Publish(_ context.Context, ev Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, sub := range f.subs {
		if !sub.topics[ev.Topic] {
			continue
		}
		select {
		case sub.events <- ev:
		default:
		}
	}
	return nil
}

func (f *MemoryFeed) Subscribe(_ context.Context, topics ...Topic) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub := &memorySubscription{
		feed:   f,
		id:     f.next,
		topics: make(map[Topic]bool, len(topics)),
		events: make(chan Event, 64),
		status: make(chan Status, 4),
	}
	for _, t := range topics {
		sub.topics[t] = true
	}
	sub.status <- StatusSubscribed

	f.subs[f.next] = sub
	f.next++
	return sub, nil
}

func (s *memorySubscription) Events() <-chan Event  { return s.events }
func (s *memorySubscription) Status() <-chan Status { return s.status }

func (s *memorySubscription) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	s.feed.mu.Lock()
	delete(s.feed.subs, s.id)
	s.feed.mu.Unlock()

	select {
	case s.status <- StatusClosed:
	default:
	}
	return nil
}
