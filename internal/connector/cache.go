package connector

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// userCacheTTL and userCacheSize match the bound spec'd for the user
// projection cache: small enough that a stale entry costs nothing, large
// enough to absorb a login burst without re-fetching the same account
// repeatedly.
const (
	userCacheTTL  = 15 * time.Second
	userCacheSize = 100
)

type cachedUser struct {
	user     User
	expireAt time.Time
}

// userCache is a size-bounded LRU with a manual TTL layered on top:
// golang-lru has no native expiry, so each entry carries its own deadline
// and Get rejects anything past it as a miss.
type userCache struct {
	lru *lru.Cache[uint32, cachedUser]
}

func newUserCache() *userCache {
	c, _ := lru.New[uint32, cachedUser](userCacheSize)
	return &userCache{lru: c}
}

func (c *userCache) get(userID uint32) (User, bool) {
	entry, ok := c.lru.Get(userID)
	if !ok {
		return User{}, false
	}
	if time.Now().After(entry.expireAt) {
		c.lru.Remove(userID)
		return User{}, false
	}
	return entry.user, true
}

func (c *userCache) put(u User) {
	c.lru.Add(u.UserID, cachedUser{user: u, expireAt: time.Now().Add(userCacheTTL)})
}

func (c *userCache) invalidate(userID uint32) {
	c.lru.Remove(userID)
}
