package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vizbot/app"
	"vizbot/app/config"
)

// History is the batch ledger: it remembers which render jobs already
// completed so reruns of the same batch skip finished work.
type History struct {
	client *redis.Client
	ttl    time.Duration
}

const historyTTL = 90 * 24 * time.Hour

// NewHistory connects to Redis. Returns nil without error when no Redis
// address is configured; callers treat a nil history as "never seen".
func NewHistory(ctx context.Context) (*History, error) {
	addr := config.GetRedisAddr()
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &History{client: client, ttl: historyTTL}, nil
}

func historyKey(req app.RenderRequest) string {
	return "vizbot:rendered:" + req.Key()
}

// Seen reports whether this job already completed. A nil history never
// skips.
func (h *History) Seen(ctx context.Context, req app.RenderRequest) (bool, error) {
	if h == nil {
		return false, nil
	}
	n, err := h.client.Exists(ctx, historyKey(req)).Result()
	if err != nil {
		return false, fmt.Errorf("checking history: %w", err)
	}
	return n > 0, nil
}

// MarkDone records a completed job with the output it produced.
func (h *History) MarkDone(ctx context.Context, req app.RenderRequest, outputPath string) error {
	if h == nil {
		return nil
	}
	if err := h.client.Set(ctx, historyKey(req), outputPath, h.ttl).Err(); err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (h *History) Close() error {
	if h == nil {
		return nil
	}
	return h.client.Close()
}
