package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/rueidis"
)

// RedisFeed is the change feed over redis pub/sub: one channel per topic,
// published after every committed mutation. Each subscription holds a
// dedicated connection so steady-state traffic never blocks the pool.
type RedisFeed struct {
	client rueidis.Client
	prefix string
}

func NewRedisFeed(client rueidis.Client, prefix string) *RedisFeed {
	return &RedisFeed{client: client, prefix: prefix}
}

func (f *RedisFeed) channel(t Topic) string {
	return f.prefix + ":" + string(t)
}

func (f *RedisFeed) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	cmd := f.client.B().Publish().Channel(f.channel(ev.Topic)).Message(string(payload)).Build()
	return f.client.Do(ctx, cmd).Error()
}

func (f *RedisFeed) Subscribe(ctx context.Context, topics ...Topic) (Subscription, error) {
	dc, cancel := f.client.Dedicate()

	sub := &redisSubscription{
		cancel: cancel,
		events: make(chan Event, 64),
		status: make(chan Status, 4),
	}

	wait := dc.SetPubSubHooks(rueidis.PubSubHooks{
		OnMessage: func(m rueidis.PubSubMessage) {
			var ev Event
			if err := json.Unmarshal([]byte(m.Message), &ev); err != nil {
				log.Printf("feed: dropping malformed event on %s: %v", m.Channel, err)
				return
			}
			select {
			case sub.events <- ev:
			default:
				log.Printf("feed: subscriber lagging, dropped event on %s", m.Channel)
			}
		},
		OnSubscription: func(s rueidis.PubSubSubscription) {
			if s.Kind == "subscribe" {
				sub.confirmOnce.Do(func() { sub.pushStatus(StatusSubscribed) })
			}
		},
	})

	channels := make([]string, 0, len(topics))
	for _, t := range topics {
		channels = append(channels, f.channel(t))
	}

	if err := dc.Do(ctx, dc.B().Subscribe().Channel(channels...).Build()).Error(); err != nil {
		cancel()
		return nil, err
	}

	go func() {
		err := <-wait
		if err != nil {
			sub.pushStatus(StatusErrored)
		} else {
			sub.pushStatus(StatusClosed)
		}
		close(sub.events)
	}()

	return sub, nil
}

type redisSubscription struct {
	cancel      func()
	events      chan Event
	status      chan Status
	confirmOnce sync.Once
	closeOnce   sync.Once
}

func (s *redisSubscription) Events() <-chan Event  { return s.events }
func (s *redisSubscription) Status() <-chan Status { return s.status }

func (s *redisSubscription) Close() error {
	s.closeOnce.Do(s.cancel)
	return nil
}

func (s *redisSubscription) pushStatus(st Status) {
	select {
	case s.status <- st:
	default:
	}
}
