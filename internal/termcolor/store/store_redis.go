package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	id "termcolor/pkg/domain"
	"termcolor/pkg/platform/sentinel"
)

const (
	// Redis key prefix for the per-term metadata hash; fields are meta keys.
	termMetaKeyPrefix = "termmeta:"
)

// RedisStore keeps one hash per term. It suits deployments where several
// instances share metadata and PostgreSQL is not available.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed metadata store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func termMetaKey(termID id.TermID) string {
	return termMetaKeyPrefix + termID.String()
}

func (s *RedisStore) Get(ctx context.Context, termID id.TermID, key MetaKey) (string, error) {
	v, err := s.client.HGet(ctx, termMetaKey(termID), string(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("hget term meta: %w", err)
	}
	return v, nil
}

func (s *RedisStore) Update(ctx context.Context, termID id.TermID, key MetaKey, value string) error {
	if err := s.client.HSet(ctx, termMetaKey(termID), string(key), value).Err(); err != nil {
		return fmt.Errorf("hset term meta: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, termID id.TermID, key MetaKey) error {
	if err := s.client.HDel(ctx, termMetaKey(termID), string(key)).Err(); err != nil {
		return fmt.Errorf("hdel term meta: %w", err)
	}
	return nil
}

// GetMany pipelines one HGET per term.
func (s *RedisStore) GetMany(ctx context.Context, termIDs []id.TermID, key MetaKey) (map[id.TermID]string, error) {
	out := make(map[id.TermID]string, len(termIDs))
	if len(termIDs) == 0 {
		return out, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(termIDs))
	for i, termID := range termIDs {
		cmds[i] = pipe.HGet(ctx, termMetaKey(termID), string(key))
	}
	// Exec reports redis.Nil when any HGET missed; per-command errors are checked below.
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("pipeline term meta: %w", err)
	}

	for i, cmd := range cmds {
		v, err := cmd.Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("hget term meta: %w", err)
		}
		out[termIDs[i]] = v
	}
	return out, nil
}
