package topics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/otonolab/autopress/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeThemes(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "themes.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.json"))
	err := store.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreNotFound)
}

func TestLoadCorruptFile(t *testing.T) {
	path := writeThemes(t, `{"themes": [`)
	store := NewStore(path)
	err := store.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreCorrupt)
}

func TestNextUnusedReturnsFirstInOrder(t *testing.T) {
	path := writeThemes(t, `{"themes": [
		{"id": 1, "title": "A", "used": true},
		{"id": 2, "title": "B", "used": false},
		{"id": 3, "title": "C", "used": false}
	]}`)
	store := NewStore(path)
	require.NoError(t, store.Load())

	topic, ok := store.NextUnused()
	require.True(t, ok)
	assert.Equal(t, 2, topic.ID)

	// Read-only: asking again without a mutation gives the same answer.
	again, ok := store.NextUnused()
	require.True(t, ok)
	assert.Equal(t, topic, again)
}

func TestNextUnusedAllConsumed(t *testing.T) {
	path := writeThemes(t, `{"themes": [{"id": 1, "title": "A", "used": true}]}`)
	store := NewStore(path)
	require.NoError(t, store.Load())

	_, ok := store.NextUnused()
	assert.False(t, ok)
}

func TestMarkUsedPersistsAndOnlyTouchesOneTopic(t *testing.T) {
	path := writeThemes(t, `{"themes": [
		{"id": 1, "title": "A", "used": false},
		{"id": 2, "title": "B", "used": false}
	]}`)
	store := NewStore(path)
	require.NoError(t, store.Load())

	require.NoError(t, store.MarkUsed(1))
	assert.Equal(t, 1, store.UnusedCount())

	// A fresh load from disk sees the same state.
	reloaded := NewStore(path)
	require.NoError(t, reloaded.Load())
	all := reloaded.Topics()
	require.Len(t, all, 2)
	assert.True(t, all[0].Used)
	assert.False(t, all[1].Used)
}

func TestMarkUsedUnknownID(t *testing.T) {
	path := writeThemes(t, `{"themes": [{"id": 1, "title": "A", "used": false}]}`)
	store := NewStore(path)
	require.NoError(t, store.Load())

	err := store.MarkUsed(42)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTopicNotFound)
	// The store must be untouched.
	assert.Equal(t, 1, store.UnusedCount())
}

func TestResetAll(t *testing.T) {
	path := writeThemes(t, `{"themes": [
		{"id": 1, "title": "A", "used": true},
		{"id": 2, "title": "B", "used": true}
	]}`)
	store := NewStore(path)
	require.NoError(t, store.Load())

	require.NoError(t, store.ResetAll())
	assert.Equal(t, 2, store.UnusedCount())

	reloaded := NewStore(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 2, reloaded.UnusedCount())
}

func TestAppendRoundTrips(t *testing.T) {
	path := writeThemes(t, `{"themes": []}`)
	store := NewStore(path)
	require.NoError(t, store.Load())

	require.NoError(t, store.Append([]models.Topic{
		{ID: 1, Title: "A", Keywords: []string{"audio"}},
		{ID: 2, Title: "B"},
	}))
	assert.Equal(t, 2, store.UnusedCount())

	reloaded := NewStore(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, store.Topics(), reloaded.Topics())
}

func TestConsumptionScenario(t *testing.T) {
	path := writeThemes(t, `{"themes": [
		{"id": 1, "title": "A", "used": false},
		{"id": 2, "title": "B", "used": true}
	]}`)
	store := NewStore(path)
	require.NoError(t, store.Load())

	topic, ok := store.NextUnused()
	require.True(t, ok)
	assert.Equal(t, 1, topic.ID)

	require.NoError(t, store.MarkUsed(1))
	assert.Equal(t, 0, store.UnusedCount())

	reloaded := NewStore(path)
	require.NoError(t, reloaded.Load())
	all := reloaded.Topics()
	require.Len(t, all, 2)
	assert.True(t, all[0].Used)
}
