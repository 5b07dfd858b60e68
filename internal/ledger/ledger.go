// Package ledger tracks which sources have already been processed so
// repeated ingest runs do not regenerate FAQs for them.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const processedKeyPrefix = "chienowa:processed:"

// Ledger is a redis-backed processed-source set. A nil *Ledger is valid
// and marks nothing, so ingest runs without redis reprocess everything.
type Ledger struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect dials redis and verifies the connection.
func Connect(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Ledger, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &Ledger{client: client, ttl: ttl}, nil
}

// Seen reports whether sourceID was already processed. Lookup errors are
// treated as unseen so a redis outage degrades to reprocessing.
func (l *Ledger) Seen(ctx context.Context, sourceID string) bool {
	if l == nil {
		return false
	}
	n, err := l.client.Exists(ctx, processedKeyPrefix+sourceID).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// Mark records sourceID as processed.
func (l *Ledger) Mark(ctx context.Context, sourceID string) error {
	if l == nil {
		return nil
	}
	return l.client.Set(ctx, processedKeyPrefix+sourceID, time.Now().UTC().Format(time.RFC3339), l.ttl).Err()
}

// Close releases the redis connection.
func (l *Ledger) Close() error {
	if l == nil {
		return nil
	}
	return l.client.Close()
}
