package ai

import (
	"fmt"
	"strings"

	"github.com/otonolab/autopress/internal/models"
)

// PromptTemplates contains the prompt templates for each content
// generation step
var PromptTemplates = struct {
	Article        string
	TopicBatch     string
	Classification string
	RelatedPosts   string
}{
	Article: `You are the editorial assistant of "Otono Lab", a blog about DTM and
home recording for beginner-to-intermediate readers. Write a practical
article on the theme below.

# Theme
%s

# Reader's pain point
%s

# Editorial angle
%s

# Constraints
- Original perspective and structure, not a rewording of other sites
- Explain the "why" behind things instead of listing specs
- Show concrete failure patterns beginners run into and how to judge them
- Friendly, slightly casual tone; break down jargon as you go
- Around 800-1500 words

# Recommended structure
1. Introduction that empathizes with the reader's pain
2. Why the problem happens
3. How to think about it
4. Concrete examples (settings, numbers, rules of thumb)
5. Summary with next actions

# Output format
Write the article body as HTML using only these tags:
<h2>, <h3>, <p>, <strong>, <ul>, <li>

Wrap the pieces of your answer in the following markers, nothing outside
them:
[TITLE]the article title[/TITLE]
[DESCRIPTION]a 1-2 sentence meta description[/DESCRIPTION]
[TAGS]comma-separated tags[/TAGS]
[CONTENT]the HTML article body[/CONTENT]`,

	TopicBatch: `You are the editorial planner of "Otono Lab", a blog about DTM and home
recording. Propose exactly %d new article themes for beginner-to-
intermediate readers.

Do NOT repeat or rephrase these existing themes:
%s

Respond with ONLY a JSON array, no other text. Each element must have
exactly these fields:
- "title": the article theme
- "keywords": array of 2-4 English image-search keywords
- "target_pain": the concrete problem the reader has
- "approach": the angle the article should take`,

	Classification: `Classify the following blog article into exactly one of these
categories:
%s

Article title: %s
Reader's pain point: %s

Respond with the category name only, exactly as written above, with no
explanation.`,

	RelatedPosts: `From the list of published article titles below, choose up to %d that
are most relevant to a new article titled "%s".

Published titles:
%s

Respond with the chosen titles only, one per line, exactly as written
above. If none are relevant, respond with an empty line.`,
}

// BuildArticlePrompt creates the article generation prompt for a topic
func BuildArticlePrompt(topic models.Topic) string {
	return fmt.Sprintf(PromptTemplates.Article,
		escapeForPrompt(topic.Title),
		escapeForPrompt(topic.TargetPain),
		escapeForPrompt(topic.Approach))
}

// BuildTopicBatchPrompt creates the topic generation prompt. Only the
// first few existing titles are embedded to bound the prompt size.
func BuildTopicBatchPrompt(count int, existingTitles []string) string {
	const maxContextTitles = 5

	if len(existingTitles) > maxContextTitles {
		existingTitles = existingTitles[:maxContextTitles]
	}

	var sb strings.Builder
	for _, title := range existingTitles {
		sb.WriteString("- ")
		sb.WriteString(escapeForPrompt(title))
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		sb.WriteString("(none yet)\n")
	}

	return fmt.Sprintf(PromptTemplates.TopicBatch, count, strings.TrimRight(sb.String(), "\n"))
}

// BuildClassificationPrompt creates the category classification prompt.
// When an article could fit two categories the model is told to pick the
// single most central theme.
func BuildClassificationPrompt(title string, topic models.Topic, categories []string) string {
	list := "- " + strings.Join(categories, "\n- ") +
		"\n\nIf the article spans several categories, pick the one that is its single most central theme."
	return fmt.Sprintf(PromptTemplates.Classification,
		list,
		escapeForPrompt(title),
		escapeForPrompt(topic.TargetPain))
}

// BuildRelatedPostsPrompt creates the related-content selection prompt
func BuildRelatedPostsPrompt(articleTitle string, candidates []string, maxLinks int) string {
	var sb strings.Builder
	for _, title := range candidates {
		sb.WriteString("- ")
		sb.WriteString(escapeForPrompt(title))
		sb.WriteString("\n")
	}
	return fmt.Sprintf(PromptTemplates.RelatedPosts,
		maxLinks,
		escapeForPrompt(articleTitle),
		strings.TrimRight(sb.String(), "\n"))
}

// escapeForPrompt escapes special characters for use in prompts
func escapeForPrompt(s string) string {
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}
