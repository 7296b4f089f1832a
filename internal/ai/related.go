package ai

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/otonolab/autopress/internal/logger"
	"github.com/otonolab/autopress/internal/models"
)

const (
	// Below this many published posts there is not enough corpus to pick
	// meaningful relations.
	minRelatedCandidates = 3
	// At most this many candidate titles go into the prompt.
	maxRelatedCandidates = 30
)

// RelatedSelector picks the published posts most relevant to a new
// article. Selection is best-effort: failures return no links, never an
// error.
type RelatedSelector struct {
	llm Completer
}

func NewRelatedSelector(llm Completer) *RelatedSelector {
	return &RelatedSelector{llm: llm}
}

// Select asks the model to choose up to maxLinks of the existing posts
// by title. Returned titles are matched back to the candidates by exact
// string equality; anything the model invented is dropped.
func (s *RelatedSelector) Select(ctx context.Context, articleTitle string, existing []models.PublishedPost, maxLinks int) []models.RelatedLink {
	if len(existing) < minRelatedCandidates || maxLinks <= 0 {
		return nil
	}

	candidates := existing
	if len(candidates) > maxRelatedCandidates {
		candidates = candidates[:maxRelatedCandidates]
	}

	byTitle := make(map[string]models.PublishedPost, len(candidates))
	titles := make([]string, 0, len(candidates))
	for _, post := range candidates {
		byTitle[post.Title] = post
		titles = append(titles, post.Title)
	}

	prompt := BuildRelatedPostsPrompt(articleTitle, titles, maxLinks)

	response, err := s.llm.Complete(ctx, prompt, CompletionOptions{
		Temperature: 0.0,
		MaxTokens:   500,
	})
	if err != nil {
		logger.Warn().
			Err(err).
			Str("title", articleTitle).
			Msg("Related-content request failed, skipping augmentation")
		return nil
	}

	var links []models.RelatedLink
	for _, line := range strings.Split(response, "\n") {
		title := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "- "))
		if title == "" {
			continue
		}
		post, ok := byTitle[title]
		if !ok {
			continue
		}
		links = append(links, models.RelatedLink{Title: post.Title, Link: post.Link})
		if len(links) >= maxLinks {
			break
		}
	}

	return links
}

// BuildRelatedBlock renders the links as the HTML block appended to the
// article body. Empty input yields an empty string so callers can append
// unconditionally.
func BuildRelatedBlock(links []models.RelatedLink) string {
	if len(links) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n<h2>関連記事</h2>\n<ul>\n")
	for _, link := range links {
		sb.WriteString(fmt.Sprintf("<li><a href=\"%s\">%s</a></li>\n",
			html.EscapeString(link.Link), html.EscapeString(link.Title)))
	}
	sb.WriteString("</ul>\n")
	return sb.String()
}
