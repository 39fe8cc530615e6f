package async

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Handler receives jobs popped by RedisQueue.Consume. A non-nil error puts the job back.
type Handler func(ctx context.Context, job Job) error

// RedisQueue is an at-least-once job list in Redis. Producers LPUSH onto key; the consumer
// moves each job into "<key>:processing" with BLMOVE and removes it once handled.
type RedisQueue struct {
	client     *redis.Client
	key        string
	processing string
	block      time.Duration
	closed     atomic.Bool
	logger     *slog.Logger
}

func NewRedisQueue(client *redis.Client, key string, logger *slog.Logger) *RedisQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisQueue{
		client:     client,
		key:        key,
		processing: key + ":processing",
		block:      5 * time.Second,
		logger:     logger,
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	if q.closed.Load() {
		return ErrClosed
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", q.key, err)
	}
	q.logger.Info("job enqueued", "queue", q.key, "document_id", job.DocumentID, "trace_id", job.TraceID)
	return nil
}

// Shutdown stops Enqueue. Consume stops with its own context; the client belongs to the caller.
func (q *RedisQueue) Shutdown(context.Context) {
	q.closed.Store(true)
}

// Len reports pending and in-flight job counts.
func (q *RedisQueue) Len(ctx context.Context) (pending, inFlight int64, err error) {
	pipe := q.client.Pipeline()
	p := pipe.LLen(ctx, q.key)
	f := pipe.LLen(ctx, q.processing)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("llen: %w", err)
	}
	return p.Val(), f.Val(), nil
}

// Requeue moves jobs left in the processing list by a previous consumer back onto the
// pending list, oldest first.
func (q *RedisQueue) Requeue(ctx context.Context) (int, error) {
	n := 0
	for {
		err := q.client.LMove(ctx, q.processing, q.key, "RIGHT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("requeue: %w", err)
		}
		n++
	}
}

// Consume hands jobs to h until ctx is cancelled, returning ctx.Err().
func (q *RedisQueue) Consume(ctx context.Context, h Handler) error {
	if n, err := q.Requeue(ctx); err != nil {
		return err
	} else if n > 0 {
		q.logger.Warn("requeued in-flight jobs", "queue", q.key, "count", n)
	}
	q.logger.Info("redis consumer started", "queue", q.key)

	backoff := time.Second
	for {
		raw, err := q.client.BLMove(ctx, q.key, q.processing, "RIGHT", "LEFT", q.block).Result()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			q.logger.Error("blmove failed", "queue", q.key, "error", err, "retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, 30*time.Second)
			continue
		}
		backoff = time.Second
		q.handle(ctx, raw, h)
	}
}

func (q *RedisQueue) handle(ctx context.Context, raw string, h Handler) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		q.logger.Error("dropping malformed job", "queue", q.key, "error", err)
		q.ack(raw)
		return
	}
	if err := h(ctx, job); err != nil {
		q.logger.Warn("job handler failed; requeueing", "document_id", job.DocumentID, "error", err)
		q.nack(raw)
		return
	}
	q.ack(raw)
}

// ack and nack run even while ctx is being cancelled.
func (q *RedisQueue) ack(raw string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.client.LRem(ctx, q.processing, 1, raw).Err(); err != nil {
		q.logger.Error("ack failed", "queue", q.key, "error", err)
	}
}

func (q *RedisQueue) nack(raw string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.processing, 1, raw)
		pipe.LPush(ctx, q.key, raw)
		return nil
	})
	if err != nil {
		q.logger.Error("nack failed", "queue", q.key, "error", err)
	}
}
