package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	statusPrefix = "status:"
	countPrefix  = "count:"
)

// StatusCache holds short-lived per-user mirror status and unassigned counts
// so tight client poll loops do not hit Postgres on every tick.
type StatusCache struct {
	cache *cache.Cache
}

func NewStatusCache(ttl time.Duration) *StatusCache {
	cleanup := ttl * 5
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &StatusCache{
		cache: cache.New(ttl, cleanup),
	}
}

func (c *StatusCache) GetStatus(userID uuid.UUID) (interface{}, bool) {
	return c.cache.Get(statusPrefix + userID.String())
}

func (c *StatusCache) SetStatus(userID uuid.UUID, v interface{}) {
	c.cache.Set(statusPrefix+userID.String(), v, cache.DefaultExpiration)
}

func (c *StatusCache) GetCount(userID uuid.UUID) (int64, bool) {
	if x, found := c.cache.Get(countPrefix + userID.String()); found {
		return x.(int64), true
	}
	return 0, false
}

func (c *StatusCache) SetCount(userID uuid.UUID, n int64) {
	c.cache.Set(countPrefix+userID.String(), n, cache.DefaultExpiration)
}

// Invalidate drops everything cached for the user.
func (c *StatusCache) Invalidate(userID uuid.UUID) {
	c.cache.Delete(statusPrefix + userID.String())
	c.cache.Delete(countPrefix + userID.String())
}
