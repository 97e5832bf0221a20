package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jotabarber/barberbot/pkg/logging"
)

// SlotLocker serializes concurrent booking attempts on the same hour bucket.
// Availability checks and the subsequent insert are not transactional, so two
// in-flight requests can both observe a slot as free; the SETNX reservation
// closes that gap. The TTL bounds how long a crashed request can hold a slot.
type SlotLocker struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewSlotLocker builds a locker over the given Redis client.
func NewSlotLocker(rdb *redis.Client, ttl time.Duration, logger *logging.Logger) *SlotLocker {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SlotLocker{rdb: rdb, ttl: ttl, logger: logger}
}

// Reserve takes the per-slot reservation. Returns false when another request
// already holds the bucket.
func (l *SlotLocker) Reserve(ctx context.Context, slot time.Time) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, slotKey(slot), "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("schedule: reserve slot: %w", err)
	}
	return ok, nil
}

// Release frees a reservation taken by Reserve. Safe to call after a
// successful insert; the unique index on active bookings keeps the slot
// occupied once the row exists.
func (l *SlotLocker) Release(ctx context.Context, slot time.Time) {
	if err := l.rdb.Del(ctx, slotKey(slot)).Err(); err != nil {
		l.logger.Warn("failed to release slot lock", "error", err, "slot", slot)
	}
}

func slotKey(slot time.Time) string {
	return fmt.Sprintf("slotlock:%d", HourBucket(slot).Unix())
}
