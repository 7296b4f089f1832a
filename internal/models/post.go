package models

// PublishedPost is the minimal view of an already published post used
// as a related-content candidate.
type PublishedPost struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Link  string `json:"link"`
}

// RelatedLink is one entry of the "related articles" block appended to
// an article body.
type RelatedLink struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}
