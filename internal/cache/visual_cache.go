package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"intervue/internal/model"
)

// VisualCache holds the rolling per-session window of analyzed frames.
// Append keeps only the newest model.VisualWindowSize samples; older
// ones are evicted FIFO.
type VisualCache interface {
	Append(ctx context.Context, sessionID string, sample model.VisualSample) error
	List(ctx context.Context, sessionID string) ([]model.VisualSample, error)
	Clear(ctx context.Context, sessionID string) error
}

type visualCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVisualCache creates a Redis-backed visual sample window
func NewVisualCache(client *redis.Client) VisualCache {
	return &visualCache{
		client: client,
		ttl:    2 * time.Hour,
	}
}

func visualKey(sessionID string) string {
	return fmt.Sprintf("interview:session:%s:visuals", sessionID)
}

func (c *visualCache) Append(ctx context.Context, sessionID string, sample model.VisualSample) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	key := visualKey(sessionID)
	pipe := c.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-model.VisualWindowSize), -1)
	pipe.Expire(ctx, key, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *visualCache) List(ctx context.Context, sessionID string) ([]model.VisualSample, error) {
	items, err := c.client.LRange(ctx, visualKey(sessionID), 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	samples := make([]model.VisualSample, 0, len(items))
	for _, item := range items {
		var s model.VisualSample
		if err := json.Unmarshal([]byte(item), &s); err != nil {
			continue
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func (c *visualCache) Clear(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, visualKey(sessionID)).Err()
}
