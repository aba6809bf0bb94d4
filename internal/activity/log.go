// Package activity provides the Redis-backed activity log: per-user,
// per-day counters of already-rewarded chat messages, plus the
// per-message cooldown gate.
//
// Counters are keyed by (user, day); day rollover needs no reset logic
// because old day keys are simply never read again and expire on
// their own.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"guild-economy-bot/internal/model"
)

// counterTTL keeps yesterday's keys around long enough for any
// in-flight read before Redis reclaims them.
const counterTTL = 48 * time.Hour

// DayKey maps a timestamp to its UTC calendar-day key.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Log stores activity counters and cooldown markers in Redis.
type Log struct {
	client *redis.Client
}

// NewLog creates a Log backed by the given Redis client.
func NewLog(client *redis.Client) *Log {
	return &Log{client: client}
}

// Count reads the number of messages already rewarded for the user on
// the given day. A missing key means zero.
func (l *Log) Count(ctx context.Context, userID, dayKey string) (model.ActivityCounter, error) {
	counter := model.ActivityCounter{UserID: userID, DayKey: dayKey}
	n, err := l.client.Get(ctx, counterKey(userID, dayKey)).Int64()
	if err == redis.Nil {
		return counter, nil
	}
	if err != nil {
		return counter, fmt.Errorf("failed to read activity counter: %w", err)
	}
	counter.Count = n
	return counter, nil
}

// Increment adds one rewarded message to the day's counter and returns
// the new count. The INCR and EXPIRE ride one pipeline round trip.
func (l *Log) Increment(ctx context.Context, userID, dayKey string) (int64, error) {
	key := counterKey(userID, dayKey)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, counterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment activity counter: %w", err)
	}
	return incr.Val(), nil
}

// CooldownActive reports whether the payout cooldown window from the
// last credited message is still running. A zero window never blocks.
func (l *Log) CooldownActive(ctx context.Context, userID string, window time.Duration) (bool, error) {
	if window <= 0 {
		return false, nil
	}
	n, err := l.client.Exists(ctx, cooldownKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read cooldown: %w", err)
	}
	return n > 0, nil
}

// ArmCooldown starts the payout cooldown window. Called only after a
// credited message, so messages that earn nothing never consume the
// window. A zero window disables the gate entirely.
func (l *Log) ArmCooldown(ctx context.Context, userID string, window time.Duration) error {
	if window <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, cooldownKey(userID), 1, window).Err(); err != nil {
		return fmt.Errorf("failed to arm cooldown: %w", err)
	}
	return nil
}

// HealthCheck verifies Redis connectivity.
func (l *Log) HealthCheck(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func counterKey(userID, dayKey string) string {
	return "activity:count:" + userID + ":" + dayKey
}

func cooldownKey(userID string) string {
	return "activity:cooldown:" + userID
}
