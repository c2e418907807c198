package services

import (
	"context"
	"log"
	"time"

	"crewsync.com/crewsync/internal/constants"
	"crewsync.com/crewsync/internal/realtime"
)

// Identity is the authenticated caller, extracted from the bearer token by
// the HTTP layer. Access checks happen here per record, never by client trust.
type Identity struct {
	UserID string
	Role   constants.Role
}

func (id Identity) IsAdmin() bool {
	return id.Role == constants.RoleAdmin
}

// publishEvent emits a change-feed event after a committed mutation.
// Transport failures degrade into the subscribers' polling fallback, so they
// are logged and never propagated to the caller.
func publishEvent(ctx context.Context, feed realtime.Feed, topic realtime.Topic, kind realtime.EventKind, rowID string) {
	if feed == nil {
		return
	}

	ev := realtime.Event{
		Topic: topic,
		Kind:  kind,
		RowID: rowID,
		At:    time.Now().UTC(),
	}
	if err := feed.Publish(ctx, ev); err != nil {
		log.Printf("feed: publish %s/%s failed: %v", topic, kind, err)
	}
}
