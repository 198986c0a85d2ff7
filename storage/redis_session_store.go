package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"routeerp_go/models"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"
)

// RedisSessionStore keeps sessions as JSON values with a TTL matching their
// expiry, plus a per-user set of session ids.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore wraps a connected Redis client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }
func userSessionsKey(userID string) string { return userSessionKeyPrefix + userID }

func (r *RedisSessionStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(s.ID), data, ttl)
	pipe.SAdd(ctx, userSessionsKey(s.UserID), s.ID)
	pipe.Expire(ctx, userSessionsKey(s.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	s, err := r.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, userSessionsKey(s.UserID), id)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisSessionStore) DeleteByUser(ctx context.Context, userID string) error {
	ids, err := r.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to list user sessions: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, userSessionsKey(userID))
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisSessionStore) RefreshUser(ctx context.Context, user models.User) error {
	ids, err := r.client.SMembers(ctx, userSessionsKey(user.ID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to list user sessions: %w", err)
	}
	for _, id := range ids {
		s, err := r.Get(ctx, id)
		if errors.Is(err, ErrSessionNotFound) {
			r.client.SRem(ctx, userSessionsKey(user.ID), id)
			continue
		}
		if err != nil {
			return err
		}
		s.User = user
		data, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}
		if err := r.client.Set(ctx, sessionKey(id), data, redis.KeepTTL).Err(); err != nil {
			return fmt.Errorf("failed to refresh session: %w", err)
		}
	}
	logrus.WithFields(logrus.Fields{"user_id": user.ID, "sessions": len(ids)}).Debug("Refreshed session user copies")
	return nil
}
