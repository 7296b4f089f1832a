package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/otonolab/autopress/internal/logger"
	"github.com/otonolab/autopress/internal/models"
)

// Snapshot is what gets written for every published article: the
// generated content plus where it ended up.
type Snapshot struct {
	Article     models.Article `json:"article"`
	PostID      int            `json:"post_id"`
	PostURL     string         `json:"post_url"`
	CategoryID  int            `json:"category_id"`
	PublishedAt time.Time      `json:"published_at"`
}

// Archive keeps a dated JSON snapshot of every published article on
// disk, and mirrors it to R2 when an uploader is configured. Archiving
// is best-effort bookkeeping; the post is already live when it runs.
type Archive struct {
	basePath string
	uploader *R2Uploader // nil disables the remote mirror
}

func NewArchive(basePath string, uploader *R2Uploader) (*Archive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &Archive{basePath: basePath, uploader: uploader}, nil
}

// SaveSnapshot writes the snapshot under YYYY/MM/DD and returns the
// local file path.
func (a *Archive) SaveSnapshot(ctx context.Context, snap Snapshot) (string, error) {
	if snap.PublishedAt.IsZero() {
		snap.PublishedAt = time.Now()
	}

	datePath := filepath.Join(a.basePath, snap.PublishedAt.Format("2006/01/02"))
	if err := os.MkdirAll(datePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create date directory: %w", err)
	}

	filename := fmt.Sprintf("%d_post%d.json", snap.PublishedAt.Unix(), snap.PostID)
	filePath := filepath.Join(datePath, filename)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	if a.uploader != nil {
		key := snap.PublishedAt.Format("2006/01/02") + "/" + filename
		if err := a.uploader.Upload(ctx, key, data); err != nil {
			logger.Warn().
				Err(err).
				Str("key", key).
				Msg("Failed to mirror snapshot to R2")
		}
	}

	return filePath, nil
}
