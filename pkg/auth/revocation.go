package auth

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// RevocationList remembers logged-out tokens until they would have expired anyway.
type RevocationList struct {
	cache *cache.Cache
}

func NewRevocationList(cleanupInterval time.Duration) *RevocationList {
	return &RevocationList{cache: cache.New(cache.NoExpiration, cleanupInterval)}
}

// Revoke marks the token id as unusable until expiresAt.
func (r *RevocationList) Revoke(tokenID string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	r.cache.Set(tokenID, struct{}{}, ttl)
}

func (r *RevocationList) IsRevoked(tokenID string) bool {
	_, found := r.cache.Get(tokenID)
	return found
}
