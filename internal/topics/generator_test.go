package topics

import (
	"context"
	"errors"
	"testing"

	"github.com/otonolab/autopress/internal/ai"
	"github.com/otonolab/autopress/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, _ ai.CompletionOptions) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

const topicBatchJSON = `[
	{"title": "T1", "keywords": ["k1", "k2"], "target_pain": "p1", "approach": "a1"},
	{"title": "T2", "keywords": ["k3"], "target_pain": "p2", "approach": "a2"}
]`

func TestGenerateAssignsSequentialIDs(t *testing.T) {
	llm := &fakeCompleter{response: topicBatchJSON}
	gen := NewGenerator(llm)

	existing := []models.Topic{{ID: 3, Title: "old"}, {ID: 7, Title: "older"}}
	generated, err := gen.Generate(context.Background(), 2, existing)
	require.NoError(t, err)
	require.Len(t, generated, 2)

	assert.Equal(t, 8, generated[0].ID)
	assert.Equal(t, 9, generated[1].ID)
	assert.Equal(t, "T1", generated[0].Title)
	assert.Equal(t, []string{"k1", "k2"}, generated[0].Keywords)
	assert.Equal(t, "p1", generated[0].TargetPain)
	assert.False(t, generated[0].Used)
	assert.False(t, generated[1].Used)
}

func TestGenerateEmptyStoreStartsAtOne(t *testing.T) {
	llm := &fakeCompleter{response: topicBatchJSON}
	gen := NewGenerator(llm)

	generated, err := gen.Generate(context.Background(), 2, nil)
	require.NoError(t, err)
	require.Len(t, generated, 2)
	assert.Equal(t, 1, generated[0].ID)
}

func TestGenerateStripsCodeFence(t *testing.T) {
	llm := &fakeCompleter{response: "```json\n" + topicBatchJSON + "\n```"}
	gen := NewGenerator(llm)

	generated, err := gen.Generate(context.Background(), 2, nil)
	require.NoError(t, err)
	assert.Len(t, generated, 2)
}

func TestGenerateMalformedJSON(t *testing.T) {
	llm := &fakeCompleter{response: "Sure! Here are some topics: T1, T2"}
	gen := NewGenerator(llm)

	_, err := gen.Generate(context.Background(), 2, nil)
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "Sure! Here are some topics: T1, T2", parseErr.Raw)
}

func TestGenerateRequestFailure(t *testing.T) {
	llm := &fakeCompleter{err: errors.New("quota exceeded")}
	gen := NewGenerator(llm)

	_, err := gen.Generate(context.Background(), 2, nil)
	require.Error(t, err)

	var parseErr *ParseError
	assert.False(t, errors.As(err, &parseErr))
}

func TestGeneratePromptEmbedsOnlyFirstFiveTitles(t *testing.T) {
	llm := &fakeCompleter{response: topicBatchJSON}
	gen := NewGenerator(llm)

	existing := []models.Topic{
		{ID: 1, Title: "first"}, {ID: 2, Title: "second"}, {ID: 3, Title: "third"},
		{ID: 4, Title: "fourth"}, {ID: 5, Title: "fifth"}, {ID: 6, Title: "sixth"},
	}
	_, err := gen.Generate(context.Background(), 2, existing)
	require.NoError(t, err)

	assert.Contains(t, llm.lastPrompt, "fifth")
	assert.NotContains(t, llm.lastPrompt, "sixth")
}
