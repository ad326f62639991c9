package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/medconnect-api/internal/repository"
)

type resetCodeStore struct {
	cache *cache.Cache
}

// NewResetCodeStore keeps reset codes in process memory. Codes are lost on
// restart and are not shared between replicas.
func NewResetCodeStore() repository.ResetCodeStore {
	return &resetCodeStore{cache: cache.New(10*time.Minute, time.Minute)}
}

func attemptsKey(key string) string { return key + ":attempts" }

func (s *resetCodeStore) Save(_ context.Context, key, digest string, ttl time.Duration) error {
	s.cache.Set(key, digest, ttl)
	s.cache.Set(attemptsKey(key), 0, ttl)
	return nil
}

func (s *resetCodeStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return "", repository.ErrNotFound
	}
	return v.(string), nil
}

func (s *resetCodeStore) Fail(_ context.Context, key string) (int, error) {
	_, expires, ok := s.cache.GetWithExpiration(key)
	if !ok {
		return 0, repository.ErrNotFound
	}
	// Add is a no-op when the counter exists; it covers counters already evicted.
	_ = s.cache.Add(attemptsKey(key), 0, time.Until(expires))
	return s.cache.IncrementInt(attemptsKey(key), 1)
}

func (s *resetCodeStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	s.cache.Delete(attemptsKey(key))
	return nil
}
