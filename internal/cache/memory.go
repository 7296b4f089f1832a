package cache

import (
	"context"
	"sync"
	"time"

	"github.com/otonolab/autopress/internal/models"
)

// MemoryCache is the in-process fallback used when Redis is not
// configured, and the stand-in for tests.
type MemoryCache struct {
	mu        sync.RWMutex
	posts     []models.PublishedPost
	populated bool
	expiresAt time.Time
}

var _ PostCache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (m *MemoryCache) Get(ctx context.Context) ([]models.PublishedPost, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.populated || time.Now().After(m.expiresAt) {
		return nil, false, nil
	}

	out := make([]models.PublishedPost, len(m.posts))
	copy(out, m.posts)
	return out, true, nil
}

func (m *MemoryCache) Set(ctx context.Context, posts []models.PublishedPost, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.posts = make([]models.PublishedPost, len(posts))
	copy(m.posts, posts)
	m.populated = true
	m.expiresAt = time.Now().Add(ttl)
	return nil
}

func (m *MemoryCache) Close() error {
	return nil
}
