package ai

import (
	"regexp"
	"strings"

	"github.com/otonolab/autopress/internal/models"
)

// One pattern per field. (?s) so a block body may span lines; non-greedy
// so neighbouring blocks never bleed into each other.
var (
	titlePattern       = regexp.MustCompile(`(?s)\[TITLE\](.*?)\[/TITLE\]`)
	descriptionPattern = regexp.MustCompile(`(?s)\[DESCRIPTION\](.*?)\[/DESCRIPTION\]`)
	tagsPattern        = regexp.MustCompile(`(?s)\[TAGS\](.*?)\[/TAGS\]`)
	contentPattern     = regexp.MustCompile(`(?s)\[CONTENT\](.*?)\[/CONTENT\]`)
)

// ExtractArticle pulls the tagged blocks out of a completion. Models do
// not reliably honor formatting instructions, so a completion without a
// usable TITLE and CONTENT pair degrades to "the whole completion is the
// body" with the topic's own title. This function never fails: by the
// time we have a completion there is always some usable text, unlike
// topic generation where malformed output has no degraded reading.
func ExtractArticle(raw string, fallbackTitle string, themeID int) models.Article {
	title, titleOK := extractBlock(titlePattern, raw)
	content, contentOK := extractBlock(contentPattern, raw)

	if !titleOK || !contentOK {
		return models.Article{
			Title:   fallbackTitle,
			Content: raw,
			ThemeID: themeID,
		}
	}

	description, _ := extractBlock(descriptionPattern, raw)
	tags, _ := extractBlock(tagsPattern, raw)

	return models.Article{
		Title:       title,
		Description: description,
		Tags:        tags,
		Content:     content,
		ThemeID:     themeID,
	}
}

// extractBlock returns the trimmed body of the first match, and whether
// the block was present at all. An absent optional block is an empty
// string, not an error.
func extractBlock(pattern *regexp.Regexp, raw string) (string, bool) {
	match := pattern.FindStringSubmatch(raw)
	if match == nil {
		return "", false
	}
	return strings.TrimSpace(match[1]), true
}
