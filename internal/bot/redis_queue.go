package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultQueueKey = "barberbot:inbound"

// RedisQueue is a queueClient backed by a Redis list. Payloads are pushed
// with LPUSH and consumed with BRPOP, so multiple worker processes can share
// one queue.
type RedisQueue struct {
	rdb *redis.Client
	key string
}

// NewRedisQueue creates a Redis-backed queue on the given list key. An empty
// key falls back to the default.
func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	if rdb == nil {
		panic("bot: redis client cannot be nil")
	}
	if key == "" {
		key = defaultQueueKey
	}
	return &RedisQueue{rdb: rdb, key: key}
}

// Send pushes a payload onto the queue.
func (q *RedisQueue) Send(ctx context.Context, body string) error {
	if err := q.rdb.LPush(ctx, q.key, body).Err(); err != nil {
		return fmt.Errorf("bot: failed to push queue payload: %w", err)
	}
	return nil
}

// Receive pops one message, blocking up to waitSeconds. BRPOP removes the
// element atomically, so a popped message needs no explicit Delete.
func (q *RedisQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error) {
	if waitSeconds <= 0 {
		waitSeconds = 1
	}
	_ = maxMessages

	res, err := q.rdb.BRPop(ctx, time.Duration(waitSeconds)*time.Second, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("bot: failed to pop queue payload: %w", err)
	}
	if len(res) < 2 {
		return nil, nil
	}

	return []queueMessage{{
		ID:            uuid.NewString(),
		Body:          res[1],
		ReceiptHandle: "",
	}}, nil
}

// Delete is a no-op; BRPOP already removed the message.
func (q *RedisQueue) Delete(_ context.Context, _ string) error {
	return nil
}
