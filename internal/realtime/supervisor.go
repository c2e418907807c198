package realtime

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

// RefetchFunc reloads the canonical state for the given topics. It must be
// idempotent: polling and push may overlap transiently during handoff.
type RefetchFunc func(ctx context.Context, topics []Topic) error

type SupervisorOptions struct {
	// ConfirmTimeout is how long to wait for the channel handshake before
	// substituting interval polling.
	ConfirmTimeout time.Duration
	// PollInterval is the refetch cadence while the push channel is down.
	PollInterval time.Duration
	OnEvent      func(Event)
	OnStatus     func(Status)
}

// Supervisor owns one subscription over a topic set. It reports the
// subscribed handshake, triggers a canonical refetch per incoming event, and
// swaps in interval polling whenever the push channel is unconfirmed or
// unhealthy. Channel failures are recovered here and never surfaced as hard
// errors.
type Supervisor struct {
	feed    Feed
	topics  []Topic
	refetch RefetchFunc
	opts    SupervisorOptions
	polling atomic.Bool
}

func NewSupervisor(feed Feed, topics []Topic, refetch RefetchFunc, opts SupervisorOptions) *Supervisor {
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = 5 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 1500 * time.Millisecond
	}
	return &Supervisor{
		feed:    feed,
		topics:  topics,
		refetch: refetch,
		opts:    opts,
	}
}

// Polling reports whether interval refetching is currently active.
func (s *Supervisor) Polling() bool {
	return s.polling.Load()
}

// Run blocks until ctx is cancelled. Teardown closes the subscription and
// stops every timer so no refetch loop outlives the caller.
func (s *Supervisor) Run(ctx context.Context) error {
	sub, err := s.feed.Subscribe(ctx, s.topics...)
	if err != nil {
		log.Printf("realtime: subscribe failed, polling only: %v", err)
		sub = nil
	}

	confirm := time.NewTimer(s.opts.ConfirmTimeout)
	defer confirm.Stop()

	var (
		ticker *time.Ticker
		tickC  <-chan time.Time
	)
	startPolling := func() {
		if ticker != nil {
			return
		}
		ticker = time.NewTicker(s.opts.PollInterval)
		tickC = ticker.C
		s.polling.Store(true)
	}
	stopPolling := func() {
		if ticker == nil {
			return
		}
		ticker.Stop()
		ticker = nil
		tickC = nil
		s.polling.Store(false)
	}
	defer stopPolling()

	if sub == nil {
		startPolling()
	}
	defer func() {
		if sub != nil {
			_ = sub.Close()
		}
	}()

	var (
		eventC  <-chan Event
		statusC <-chan Status
	)
	if sub != nil {
		eventC = sub.Events()
		statusC = sub.Status()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-confirm.C:
			// Handshake never completed: substitute interval polling.
			log.Printf("realtime: channel confirmation timed out, polling every %s", s.opts.PollInterval)
			startPolling()
			if sub == nil {
				// A previous subscribe attempt failed outright; keep trying
				// so push can come back without a restart.
				sub, eventC, statusC = s.resubscribe(ctx, nil)
				confirm.Reset(s.opts.ConfirmTimeout)
			}

		case st, ok := <-statusC:
			if !ok {
				statusC = nil
				continue
			}
			s.notifyStatus(st)
			switch st {
			case StatusSubscribed:
				if !confirm.Stop() {
					select {
					case <-confirm.C:
					default:
					}
				}
				stopPolling()
			case StatusErrored, StatusClosed:
				log.Printf("realtime: channel reported %s, resuming polling", st)
				startPolling()
				sub, eventC, statusC = s.resubscribe(ctx, sub)
				confirm.Reset(s.opts.ConfirmTimeout)
			}

		case ev, ok := <-eventC:
			if !ok {
				eventC = nil
				continue
			}
			if err := s.refetch(ctx, []Topic{ev.Topic}); err != nil && ctx.Err() == nil {
				log.Printf("realtime: refetch %s failed: %v", ev.Topic, err)
			}
			if s.opts.OnEvent != nil {
				s.opts.OnEvent(ev)
			}

		case <-tickC:
			if err := s.refetch(ctx, s.topics); err != nil && ctx.Err() == nil {
				log.Printf("realtime: poll refetch failed: %v", err)
			}
		}
	}
}

func (s *Supervisor) resubscribe(ctx context.Context, old Subscription) (Subscription, <-chan Event, <-chan Status) {
	if old != nil {
		_ = old.Close()
	}

	sub, err := s.feed.Subscribe(ctx, s.topics...)
	if err != nil {
		log.Printf("realtime: resubscribe failed, staying on polling: %v", err)
		return nil, nil, nil
	}
	return sub, sub.Events(), sub.Status()
}

func (s *Supervisor) notifyStatus(st Status) {
	if s.opts.OnStatus != nil {
		s.opts.OnStatus(st)
	}
}
