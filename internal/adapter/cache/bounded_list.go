package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type timestamped interface {
	sentTime() time.Time
}

// boundedList is a newest-first Redis list capped by entry count and entry age.
// Count is enforced on write with LTRIM; age is enforced by the key TTL and by
// filtering on read, since the TTL refreshes with every push.
type boundedList[T timestamped] struct {
	rdb        *redis.Client
	key        string
	maxEntries int
	maxAge     time.Duration
}

func (l boundedList[T]) push(ctx context.Context, entry T) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	_, err = l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, l.key, payload)
		pipe.LTrim(ctx, l.key, 0, int64(l.maxEntries-1))
		pipe.Expire(ctx, l.key, l.maxAge)
		return nil
	})
	if err != nil {
		return fmt.Errorf("rdb.TxPipelined[%s]: %w", l.key, err)
	}

	return nil
}

func (l boundedList[T]) recent(ctx context.Context, now time.Time) ([]T, error) {
	raw, err := l.rdb.LRange(ctx, l.key, 0, int64(l.maxEntries-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("rdb.LRange[%s]: %w", l.key, err)
	}

	cutoff := now.Add(-l.maxAge)
	entries := make([]T, 0, len(raw))

	for _, item := range raw {
		var entry T
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("json.Unmarshal[%s]: %w", l.key, err)
		}

		if entry.sentTime().Before(cutoff) {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
