package tmdb

import (
	"sync"
	"time"
)

// genreCache memoizes the genre list, which changes far less often than
// anything else TMDB serves.
type genreCache struct {
	mu      sync.RWMutex
	genres  map[int]string
	expires time.Time
	ttl     time.Duration
	now     func() time.Time
}

func newGenreCache(ttl time.Duration) *genreCache {
	return &genreCache{ttl: ttl, now: time.Now}
}

func (c *genreCache) get() (map[int]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.genres == nil || !c.now().Before(c.expires) {
		return nil, false
	}
	return c.genres, true
}

func (c *genreCache) set(genres []Genre) map[int]string {
	m := make(map[int]string, len(genres))
	for _, g := range genres {
		m[g.ID] = g.Name
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.genres = m
	c.expires = c.now().Add(c.ttl)
	return m
}
