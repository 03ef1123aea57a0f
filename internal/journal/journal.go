// internal/journal/journal.go

// Package journal pushes finished-match records onto a Redis queue for
// out-of-process consumers. Publishing is fire-and-forget: the coordinator
// never waits on delivery, and a nil Journal disables the feature entirely,
// leaving all room state in process memory.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list the records are pushed to.
const DefaultQueueName = "cab_matches"

// MatchRecord is the minimal summary of one finished match.
type MatchRecord struct {
	RoomCode  string `json:"room_code"`
	Kind      string `json:"kind"` // "duel" or "battle"
	Mode      string `json:"mode"`
	Winner    string `json:"winner,omitempty"`
	Reason    string `json:"reason"`
	Moves     int    `json:"moves,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Journal wraps a Redis client and a target queue.
type Journal struct {
	rdb   *redis.Client
	queue string
}

// Connect dials Redis at addr and verifies the connection with a ping.
func Connect(addr, queue string) (*Journal, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Journal{rdb: rdb, queue: queue}, nil
}

// New wraps an existing client; used by tests.
func New(client *redis.Client, queue string) *Journal {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &Journal{rdb: client, queue: queue}
}

// Publish serializes the record and pushes it onto the queue.
func (j *Journal) Publish(ctx context.Context, rec MatchRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal MatchRecord: %w", err)
	}
	if err := j.rdb.RPush(ctx, j.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", j.queue, err)
	}
	return nil
}

// Close releases the underlying client.
func (j *Journal) Close() error {
	return j.rdb.Close()
}
