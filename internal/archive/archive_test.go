package archive

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/otonolab/autopress/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveSnapshotWritesDatedFile(t *testing.T) {
	arch, err := NewArchive(t.TempDir(), nil)
	require.NoError(t, err)

	published := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	path, err := arch.SaveSnapshot(context.Background(), Snapshot{
		Article:     models.Article{Title: "A", Content: "<p>body</p>", ThemeID: 1},
		PostID:      42,
		PostURL:     "https://example.com/a",
		CategoryID:  3,
		PublishedAt: published,
	})
	require.NoError(t, err)
	assert.Contains(t, path, "2026/08/30")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, 42, snap.PostID)
	assert.Equal(t, "A", snap.Article.Title)
	assert.Equal(t, 3, snap.CategoryID)
}

func TestSaveSnapshotDefaultsPublishedAt(t *testing.T) {
	arch, err := NewArchive(t.TempDir(), nil)
	require.NoError(t, err)

	path, err := arch.SaveSnapshot(context.Background(), Snapshot{PostID: 1})
	require.NoError(t, err)

	var snap Snapshot
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.False(t, snap.PublishedAt.IsZero())
}
