package models

// Article is the generated content for one topic. It lives only for the
// duration of a pipeline run: built from the completion, classified,
// augmented with related links, then handed to WordPress.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tags        string `json:"tags"` // raw comma-separated list from the completion
	Content     string `json:"content"`
	ThemeID     int    `json:"theme_id"`
}
