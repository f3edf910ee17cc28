package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// PendingMagicLink is a sign-in token waiting to be exchanged. Only the
// token hash is used as the key; the token itself never touches storage.
type PendingMagicLink struct {
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type MagicLinkRepository struct {
	cache *cache.Cache
}

func NewMagicLinkRepository(ttl time.Duration) *MagicLinkRepository {
	// Expired links are purged every few minutes; Consume deletes on use.
	c := cache.New(ttl, 5*time.Minute)
	return &MagicLinkRepository{
		cache: c,
	}
}

func (r *MagicLinkRepository) Save(tokenHash string, link *PendingMagicLink) {
	r.cache.Set(tokenHash, link, cache.DefaultExpiration)
}

// Consume returns and removes the pending link. A second call with the
// same hash misses, which makes the link single-use.
func (r *MagicLinkRepository) Consume(tokenHash string) (*PendingMagicLink, bool) {
	x, found := r.cache.Get(tokenHash)
	if !found {
		return nil, false
	}
	r.cache.Delete(tokenHash)
	return x.(*PendingMagicLink), true
}
