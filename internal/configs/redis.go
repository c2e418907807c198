package config

import (
	"log"

	"github.com/redis/rueidis"
)

// NewRedisClient connects the pub/sub backbone of the change feed. Redis is
// required at startup; realtime clients degrade to polling only when the
// connection drops later.
func NewRedisClient(addr string) rueidis.Client {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
		ClientName:  "crewsync",
	})
	if err != nil {
		log.Fatalf("redis connect failed: %v", err)
	}

	return client
}
