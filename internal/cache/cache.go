package cache

import (
	"context"
	"time"

	"github.com/otonolab/autopress/internal/models"
)

// PostCache holds the published-post list between pipeline runs so the
// related-content step does not have to page through WordPress every
// time. A miss is not an error; callers fall through to the live query.
type PostCache interface {
	Get(ctx context.Context) ([]models.PublishedPost, bool, error)
	Set(ctx context.Context, posts []models.PublishedPost, ttl time.Duration) error
	Close() error
}
