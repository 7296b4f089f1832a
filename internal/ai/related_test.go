package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/otonolab/autopress/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publishedPosts(n int) []models.PublishedPost {
	posts := make([]models.PublishedPost, 0, n)
	for i := 1; i <= n; i++ {
		posts = append(posts, models.PublishedPost{
			ID:    i,
			Title: fmt.Sprintf("Post %d", i),
			Link:  fmt.Sprintf("https://example.com/%d", i),
		})
	}
	return posts
}

func TestSelectTooFewCandidates(t *testing.T) {
	llm := &fakeCompleter{response: "Post 1"}
	s := NewRelatedSelector(llm)

	for n := 0; n <= 2; n++ {
		links := s.Select(context.Background(), "New article", publishedPosts(n), 3)
		assert.Empty(t, links, "with %d candidates", n)
	}
	// The short-circuit must not even hit the model.
	assert.Empty(t, llm.lastPrompt)
}

func TestSelectMatchesByExactTitle(t *testing.T) {
	llm := &fakeCompleter{response: "Post 2\nPost 9\n"}
	s := NewRelatedSelector(llm)

	links := s.Select(context.Background(), "New article", publishedPosts(10), 3)
	require.Len(t, links, 2)
	assert.Equal(t, "Post 2", links[0].Title)
	assert.Equal(t, "https://example.com/2", links[0].Link)
	assert.Equal(t, "Post 9", links[1].Title)
}

func TestSelectDropsFabricatedTitles(t *testing.T) {
	llm := &fakeCompleter{response: "Post 1\nA post I made up\nPost 3"}
	s := NewRelatedSelector(llm)

	links := s.Select(context.Background(), "New article", publishedPosts(5), 5)
	require.Len(t, links, 2)
	assert.Equal(t, "Post 1", links[0].Title)
	assert.Equal(t, "Post 3", links[1].Title)
}

func TestSelectStopsAtMaxLinks(t *testing.T) {
	llm := &fakeCompleter{response: "Post 1\nPost 2\nPost 3\nPost 4"}
	s := NewRelatedSelector(llm)

	links := s.Select(context.Background(), "New article", publishedPosts(5), 2)
	assert.Len(t, links, 2)
}

func TestSelectCapsCandidatesAtThirty(t *testing.T) {
	llm := &fakeCompleter{response: "Post 1"}
	s := NewRelatedSelector(llm)

	s.Select(context.Background(), "New article", publishedPosts(40), 3)
	assert.Contains(t, llm.lastPrompt, "Post 30")
	assert.NotContains(t, llm.lastPrompt, "Post 31")
}

func TestSelectRequestFailureReturnsEmpty(t *testing.T) {
	llm := &fakeCompleter{err: errors.New("boom")}
	s := NewRelatedSelector(llm)

	links := s.Select(context.Background(), "New article", publishedPosts(5), 3)
	assert.Empty(t, links)
}

func TestBuildRelatedBlock(t *testing.T) {
	block := BuildRelatedBlock([]models.RelatedLink{
		{Title: "Post <1>", Link: "https://example.com/1?a=b&c=d"},
	})

	assert.Contains(t, block, "<h2>関連記事</h2>")
	assert.Contains(t, block, "Post &lt;1&gt;")
	assert.Contains(t, block, "https://example.com/1?a=b&amp;c=d")
}

func TestBuildRelatedBlockEmpty(t *testing.T) {
	assert.Empty(t, BuildRelatedBlock(nil))
}
