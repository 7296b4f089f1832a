package topics

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/otonolab/autopress/internal/models"
)

var (
	// ErrStoreNotFound is returned by Load when the themes file does not exist.
	ErrStoreNotFound = errors.New("themes file not found")
	// ErrStoreCorrupt is returned by Load when the themes file is not valid JSON.
	ErrStoreCorrupt = errors.New("themes file corrupt")
	// ErrTopicNotFound is returned by MarkUsed when no topic has the given id.
	ErrTopicNotFound = errors.New("topic not found")
)

// Store manages the topic queue persisted as a single JSON document
// {"themes": [...]}. Selection is FIFO over the stored order, and every
// mutation rewrites the whole file so the snapshot on disk is always
// complete. The file is assumed to have a single writer: one process at
// a time, guarded in-process by a mutex for the admin API.
type Store struct {
	path string
	mu   sync.RWMutex
	data storeFile
}

type storeFile struct {
	Themes []models.Topic `json:"themes"`
}

// NewStore creates a store backed by the given file path. Call Load
// before anything else.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted snapshot into memory.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrStoreNotFound, s.path)
		}
		return fmt.Errorf("failed to read themes file %s: %w", s.path, err)
	}

	var data storeFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStoreCorrupt, s.path, err)
	}

	s.data = data
	return nil
}

// NextUnused returns the first topic in stored order with used == false.
// Read-only; calling it twice without a mutation returns the same topic.
func (s *Store) NextUnused() (models.Topic, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, topic := range s.data.Themes {
		if !topic.Used {
			return topic, true
		}
	}
	return models.Topic{}, false
}

// MarkUsed flips the topic's used flag to true and persists the full
// snapshot. An unknown id is an error: silently ignoring it would make
// the pipeline reprocess the same topic forever.
func (s *Store) MarkUsed(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Themes {
		if s.data.Themes[i].ID == id {
			s.data.Themes[i].Used = true
			return s.save()
		}
	}
	return fmt.Errorf("%w: id %d", ErrTopicNotFound, id)
}

// UnusedCount returns the number of topics with used == false.
func (s *Store) UnusedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, topic := range s.data.Themes {
		if !topic.Used {
			count++
		}
	}
	return count
}

// ResetAll sets every topic back to unused and persists. Maintenance
// operation, never called by the pipeline itself.
func (s *Store) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Themes {
		s.data.Themes[i].Used = false
	}
	return s.save()
}

// Append extends the stored sequence and persists.
func (s *Store) Append(topics []models.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Themes = append(s.data.Themes, topics...)
	return s.save()
}

// Topics returns a copy of the stored topics in order.
func (s *Store) Topics() []models.Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Topic, len(s.data.Themes))
	copy(out, s.data.Themes)
	return out
}

// save rewrites the whole themes file. Callers must hold the write lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal themes: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write themes file %s: %w", s.path, err)
	}
	return nil
}
