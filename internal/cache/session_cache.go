package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"intervue/internal/model"
)

// SessionCache persists session context snapshots keyed by session ID.
// The in-memory context in the interview service is authoritative; the
// cache mirrors it so sessions survive inspection and restarts of
// read-only consumers.
type SessionCache interface {
	Set(ctx context.Context, session *model.SessionContext) error
	Get(ctx context.Context, id string) (*model.SessionContext, error)
	Delete(ctx context.Context, id string) error
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a Redis-backed session cache
func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    2 * time.Hour,
	}
}

func sessionKey(id string) string {
	return "interview:session:" + id
}

func (c *sessionCache) Set(ctx context.Context, session *model.SessionContext) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionKey(session.ID), data, c.ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, id string) (*model.SessionContext, error) {
	data, err := c.client.Get(ctx, sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.SessionContext
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, sessionKey(id)).Err()
}
