package ai

import (
	"context"
	"sort"
	"strings"

	"github.com/otonolab/autopress/internal/logger"
	"github.com/otonolab/autopress/internal/models"
)

// CategoryTable maps category names to their WordPress term ids. The
// table comes from deployment configuration and is treated as constant.
type CategoryTable map[string]int

// Lookup resolves a category name to its id. Matching is exact and
// case-sensitive after trimming; the default for a miss is applied by
// the caller so tests can tell "no match" from "matched the default".
func (t CategoryTable) Lookup(name string) (int, bool) {
	id, ok := t[strings.TrimSpace(name)]
	return id, ok
}

// Names returns the category names in stable order for prompt building.
func (t CategoryTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Classifier assigns one category id to an article. Classification is
// best-effort: any failure falls back to the default id, never an error,
// because a miscategorized post beats an unpublished one.
type Classifier struct {
	llm         Completer
	categories  CategoryTable
	defaultID   int
	temperature float64
}

func NewClassifier(llm Completer, categories CategoryTable, defaultID int) *Classifier {
	return &Classifier{
		llm:         llm,
		categories:  categories,
		defaultID:   defaultID,
		temperature: 0.0,
	}
}

// Classify returns the category id for the article title, or the
// configured default when the request fails or the response matches no
// known category.
func (c *Classifier) Classify(ctx context.Context, title string, topic models.Topic) int {
	if len(c.categories) == 0 {
		return c.defaultID
	}

	prompt := BuildClassificationPrompt(title, topic, c.categories.Names())

	response, err := c.llm.Complete(ctx, prompt, CompletionOptions{
		Temperature: c.temperature,
		MaxTokens:   50,
	})
	if err != nil {
		logger.Warn().
			Err(err).
			Str("title", title).
			Int("default_category", c.defaultID).
			Msg("Classification request failed, using default category")
		return c.defaultID
	}

	id, ok := c.categories.Lookup(response)
	if !ok {
		logger.Warn().
			Str("title", title).
			Str("response", strings.TrimSpace(response)).
			Int("default_category", c.defaultID).
			Msg("Classification response matched no category, using default")
		return c.defaultID
	}

	return id
}
