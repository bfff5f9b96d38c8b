package cache

import (
	"strings"
	"sync"

	"github.com/codecraftlabs/site-server/internal/models"
)

// ReferralCache is a small read-through cache in front of referral validation.
// Keys are lower-cased so hits agree with the store's case-insensitive
// matching. Create/delete paths must call Invalidate.
type ReferralCache struct {
	mu    sync.RWMutex
	store map[string]models.ReferralCode
}

func NewReferralCache() *ReferralCache {
	return &ReferralCache{
		store: make(map[string]models.ReferralCode),
	}
}

func (c *ReferralCache) Get(code string) (models.ReferralCode, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.store[strings.ToLower(code)]
	return val, ok
}

func (c *ReferralCache) Set(rc models.ReferralCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[strings.ToLower(rc.Code)] = rc
}

func (c *ReferralCache) Invalidate(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, strings.ToLower(code))
}
