package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/otonolab/autopress/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, _ CompletionOptions) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

var testCategories = CategoryTable{
	"Mixing":    3,
	"Recording": 4,
	"Gear":      5,
}

func TestLookupExactMatch(t *testing.T) {
	id, ok := testCategories.Lookup("Mixing")
	require.True(t, ok)
	assert.Equal(t, 3, id)
}

func TestLookupTrimsWhitespace(t *testing.T) {
	id, ok := testCategories.Lookup("  Recording \n")
	require.True(t, ok)
	assert.Equal(t, 4, id)
}

func TestLookupIsCaseSensitive(t *testing.T) {
	_, ok := testCategories.Lookup("mixing")
	assert.False(t, ok)
}

func TestLookupMissIsDistinctFromDefault(t *testing.T) {
	// The lookup itself knows nothing about defaults.
	_, ok := testCategories.Lookup("Podcasting")
	assert.False(t, ok)
}

func TestClassifyMatch(t *testing.T) {
	llm := &fakeCompleter{response: "Recording\n"}
	c := NewClassifier(llm, testCategories, 1)

	id := c.Classify(context.Background(), "Mic placement", models.Topic{})
	assert.Equal(t, 4, id)
}

func TestClassifyNoMatchUsesDefault(t *testing.T) {
	llm := &fakeCompleter{response: "I would say this is about Mixing."}
	c := NewClassifier(llm, testCategories, 1)

	id := c.Classify(context.Background(), "Mic placement", models.Topic{})
	assert.Equal(t, 1, id)
}

func TestClassifyRequestFailureUsesDefault(t *testing.T) {
	llm := &fakeCompleter{err: errors.New("boom")}
	c := NewClassifier(llm, testCategories, 1)

	id := c.Classify(context.Background(), "Mic placement", models.Topic{})
	assert.Equal(t, 1, id)
}

func TestClassifyEmptyTableUsesDefault(t *testing.T) {
	llm := &fakeCompleter{response: "Mixing"}
	c := NewClassifier(llm, CategoryTable{}, 9)

	id := c.Classify(context.Background(), "Mic placement", models.Topic{})
	assert.Equal(t, 9, id)
	// No request should even be needed.
	assert.Empty(t, llm.lastPrompt)
}

func TestClassifyPromptListsCategories(t *testing.T) {
	llm := &fakeCompleter{response: "Gear"}
	c := NewClassifier(llm, testCategories, 1)

	c.Classify(context.Background(), "Choosing an audio interface", models.Topic{TargetPain: "too many options"})
	assert.Contains(t, llm.lastPrompt, "Mixing")
	assert.Contains(t, llm.lastPrompt, "Recording")
	assert.Contains(t, llm.lastPrompt, "Gear")
	assert.Contains(t, llm.lastPrompt, "too many options")
}
