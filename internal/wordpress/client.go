package wordpress

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/otonolab/autopress/internal/logger"
	"github.com/otonolab/autopress/internal/models"
)

// Client talks to the WordPress REST API (wp/v2) with an application
// password over basic auth.
type Client struct {
	client  *resty.Client
	apiBase string
}

// Post is the subset of a wp/v2 post object the pipeline cares about.
type Post struct {
	ID    int           `json:"id"`
	Link  string        `json:"link"`
	Title renderedField `json:"title"`
}

// Media is the subset of a wp/v2 media object the pipeline cares about.
type Media struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
}

type renderedField struct {
	Rendered string `json:"rendered"`
}

type tagTerm struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// NewPost is the payload for creating a post.
type NewPost struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Status     string `json:"status"`
	Categories []int  `json:"categories,omitempty"`
	Tags       []int  `json:"tags,omitempty"`
}

func NewClient(siteURL, username, appPassword string, timeout time.Duration) *Client {
	return &Client{
		client: resty.New().
			SetTimeout(timeout).
			SetBasicAuth(username, appPassword),
		apiBase: strings.TrimRight(siteURL, "/") + "/wp-json/wp/v2",
	}
}

// CreatePost creates a new post and returns its id and link.
func (c *Client) CreatePost(ctx context.Context, post NewPost) (*Post, error) {
	var created Post
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(post).
		SetResult(&created).
		Post(c.apiBase + "/posts")

	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status code %d creating post: %s", resp.StatusCode(), truncate(resp.String()))
	}

	return &created, nil
}

// GetPost fetches a single post by id.
func (c *Client) GetPost(ctx context.Context, postID int) (*Post, error) {
	var post Post
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&post).
		Get(c.apiBase + "/posts/" + strconv.Itoa(postID))

	if err != nil {
		return nil, fmt.Errorf("failed to get post %d: %w", postID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d getting post %d", resp.StatusCode(), postID)
	}

	return &post, nil
}

// UpdatePost patches an existing post with the given fields.
func (c *Client) UpdatePost(ctx context.Context, postID int, fields map[string]any) (*Post, error) {
	var updated Post
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(fields).
		SetResult(&updated).
		Post(c.apiBase + "/posts/" + strconv.Itoa(postID))

	if err != nil {
		return nil, fmt.Errorf("failed to update post %d: %w", postID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d updating post %d", resp.StatusCode(), postID)
	}

	return &updated, nil
}

// UploadMedia uploads image bytes as a media item and sets its alt text.
func (c *Client) UploadMedia(ctx context.Context, data []byte, filename, altText string) (*Media, error) {
	var media Media
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "image/jpeg").
		SetHeader("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename)).
		SetBody(data).
		SetResult(&media).
		Post(c.apiBase + "/media")

	if err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status code %d uploading media", resp.StatusCode())
	}

	if altText != "" {
		_, err := c.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]string{"alt_text": altText}).
			Post(c.apiBase + "/media/" + strconv.Itoa(media.ID))
		if err != nil {
			// The image is already up; a missing alt text is not worth
			// failing the upload for.
			logger.Warn().Err(err).Int("media_id", media.ID).Msg("Failed to set media alt text")
		}
	}

	return &media, nil
}

// SetFeaturedImage attaches an uploaded media item as the post's
// featured image.
func (c *Client) SetFeaturedImage(ctx context.Context, postID, mediaID int) error {
	_, err := c.UpdatePost(ctx, postID, map[string]any{"featured_media": mediaID})
	if err != nil {
		return fmt.Errorf("failed to set featured image on post %d: %w", postID, err)
	}
	return nil
}

// GetOrCreateTags resolves tag names to term ids, creating missing tags.
// Individual failures are skipped: a post with fewer tags is fine.
func (c *Client) GetOrCreateTags(ctx context.Context, names []string) []int {
	var ids []int

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var found []tagTerm
		resp, err := c.client.R().
			SetContext(ctx).
			SetQueryParam("search", name).
			SetResult(&found).
			Get(c.apiBase + "/tags")

		if err == nil && resp.StatusCode() == http.StatusOK &&
			len(found) > 0 && strings.EqualFold(found[0].Name, name) {
			ids = append(ids, found[0].ID)
			continue
		}

		var created tagTerm
		resp, err = c.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(map[string]string{"name": name}).
			SetResult(&created).
			Post(c.apiBase + "/tags")

		if err != nil || resp.StatusCode() != http.StatusCreated {
			logger.Warn().Str("tag", name).Msg("Failed to resolve tag, skipping")
			continue
		}
		ids = append(ids, created.ID)
	}

	return ids
}

// ListPosts pages through all published posts and returns them as
// related-content candidates.
func (c *Client) ListPosts(ctx context.Context, perPage int) ([]models.PublishedPost, error) {
	var all []models.PublishedPost

	for page := 1; ; page++ {
		var posts []Post
		resp, err := c.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"per_page": strconv.Itoa(perPage),
				"page":     strconv.Itoa(page),
			}).
			SetResult(&posts).
			Get(c.apiBase + "/posts")

		if err != nil {
			return nil, fmt.Errorf("failed to list posts (page %d): %w", page, err)
		}
		// WordPress answers 400 for a page past the end.
		if resp.StatusCode() != http.StatusOK || len(posts) == 0 {
			break
		}

		for _, post := range posts {
			all = append(all, models.PublishedPost{
				ID:    post.ID,
				Title: post.Title.Rendered,
				Link:  post.Link,
			})
		}
	}

	return all, nil
}

// TestConnection checks that the site is reachable and the credentials
// are accepted.
func (c *Client) TestConnection(ctx context.Context) bool {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("per_page", "1").
		Get(c.apiBase + "/posts")

	if err != nil {
		logger.Warn().Err(err).Msg("WordPress connection test failed")
		return false
	}
	if resp.StatusCode() != http.StatusOK {
		logger.Warn().Int("status", resp.StatusCode()).Msg("WordPress connection test failed")
		return false
	}
	return true
}

func truncate(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
