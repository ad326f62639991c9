// Package redis stores short-lived auth state in Redis.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jwalitptl/medconnect-api/internal/repository"
)

const resetCodePrefix = "medconnect:reset:"

type resetCodeStore struct {
	client *goredis.Client
}

// NewResetCodeStore keeps reset code digests under expiring keys so every
// replica sees the same codes.
func NewResetCodeStore(client *goredis.Client) repository.ResetCodeStore {
	return &resetCodeStore{client: client}
}

func attemptsKey(key string) string { return resetCodePrefix + key + ":attempts" }

func (s *resetCodeStore) Save(ctx context.Context, key, digest string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, resetCodePrefix+key, digest, ttl)
		pipe.Del(ctx, attemptsKey(key))
		return nil
	})
	return err
}

func (s *resetCodeStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, resetCodePrefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", repository.ErrNotFound
	}
	return v, err
}

// Fail bumps the attempt counter, which expires together with the code.
func (s *resetCodeStore) Fail(ctx context.Context, key string) (int, error) {
	ttl, err := s.client.PTTL(ctx, resetCodePrefix+key).Result()
	if err != nil {
		return 0, err
	}
	if ttl <= 0 {
		return 0, repository.ErrNotFound
	}

	var incr *goredis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, attemptsKey(key))
		pipe.PExpire(ctx, attemptsKey(key), ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

func (s *resetCodeStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, resetCodePrefix+key, attemptsKey(key)).Err()
}
