package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"rscasurvey/internal/model"
)

// SessionCache keeps recently read sessions so GET /sessions/{id} skips Mongo.
// Writers invalidate the entry instead of updating it. Every Delete bumps a
// per-session version, and readers fill the cache with SetIfVersion using the
// version they saw before loading, so a read that raced a write never
// repopulates the cache with the old document.
type SessionCache interface {
	Set(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, sessionID string) (*model.Session, error)
	Delete(ctx context.Context, sessionID string) error
	Version(ctx context.Context, sessionID string) (int64, error)
	SetIfVersion(ctx context.Context, session *model.Session, version int64) (bool, error)
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
		ttl:    10 * time.Minute,
	}
}

func (c *sessionCache) key(sessionID string) string {
	return "session:" + sessionID
}

func (c *sessionCache) versionKey(sessionID string) string {
	return "session:" + sessionID + ":version"
}

func (c *sessionCache) Set(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(session.SessionID), data, c.ttl).Err()
}

// Get returns nil, nil on a miss
func (c *sessionCache) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, sessionID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.versionKey(sessionID))
		pipe.Expire(ctx, c.versionKey(sessionID), time.Hour)
		pipe.Del(ctx, c.key(sessionID))
		return nil
	})
	return err
}

// Version returns 0 when no write has been recorded yet
func (c *sessionCache) Version(ctx context.Context, sessionID string) (int64, error) {
	v, err := c.client.Get(ctx, c.versionKey(sessionID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

// SetIfVersion stores the session only while the version still matches.
// It reports false when a writer got in between.
func (c *sessionCache) SetIfVersion(ctx context.Context, session *model.Session, version int64) (bool, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return false, err
	}
	vkey := c.versionKey(session.SessionID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != version {
			return redis.TxFailedErr
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(session.SessionID), data, c.ttl)
			return nil
		})
		return err
	}, vkey)
	if err == redis.TxFailedErr {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
