package images

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/otonolab/autopress/internal/logger"
)

// Result is one stock image candidate, normalized across providers.
type Result struct {
	ID           string
	Description  string
	URL          string
	DownloadHint string // provider-specific handle needed to download
	Photographer string
}

// Source is a stock-image provider. Implementations return (nil, nil)
// when a keyword simply has no results.
type Source interface {
	BestImageForKeyword(ctx context.Context, keyword string) (*Result, error)
	Download(ctx context.Context, image *Result) ([]byte, error)
}

// UnsplashClient searches and downloads photos from the Unsplash API.
type UnsplashClient struct {
	client  *resty.Client
	baseURL string
}

type unsplashSearchResponse struct {
	Results []unsplashPhoto `json:"results"`
}

type unsplashPhoto struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	AltDescription string `json:"alt_description"`
	URLs           struct {
		Regular string `json:"regular"`
	} `json:"urls"`
	Links struct {
		DownloadLocation string `json:"download_location"`
	} `json:"links"`
	User struct {
		Name string `json:"name"`
	} `json:"user"`
}

var _ Source = (*UnsplashClient)(nil)

func NewUnsplashClient(accessKey string) *UnsplashClient {
	return &UnsplashClient{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("Authorization", "Client-ID "+accessKey),
		baseURL: "https://api.unsplash.com",
	}
}

// BestImageForKeyword returns the top landscape photo for the keyword,
// or nil when the search comes back empty.
func (u *UnsplashClient) BestImageForKeyword(ctx context.Context, keyword string) (*Result, error) {
	var search unsplashSearchResponse
	resp, err := u.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":       keyword,
			"per_page":    "1",
			"orientation": "landscape",
		}).
		SetResult(&search).
		Get(u.baseURL + "/search/photos")

	if err != nil {
		return nil, fmt.Errorf("unsplash search failed for %q: %w", keyword, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from unsplash search", resp.StatusCode())
	}
	if len(search.Results) == 0 {
		return nil, nil
	}

	photo := search.Results[0]
	description := photo.AltDescription
	if description == "" {
		description = photo.Description
	}
	if description == "" {
		description = keyword
	}

	return &Result{
		ID:           photo.ID,
		Description:  description,
		URL:          photo.URLs.Regular,
		DownloadHint: photo.Links.DownloadLocation,
		Photographer: photo.User.Name,
	}, nil
}

// Download fetches the image bytes. Unsplash terms require pinging the
// download-location endpoint first; a failed ping does not block the
// download.
func (u *UnsplashClient) Download(ctx context.Context, image *Result) ([]byte, error) {
	if image.DownloadHint != "" {
		if _, err := u.client.R().SetContext(ctx).Get(image.DownloadHint); err != nil {
			logger.Debug().Err(err).Str("image_id", image.ID).Msg("Unsplash download tracking ping failed")
		}
	}

	resp, err := u.client.R().SetContext(ctx).Get(image.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image %s: %w", image.ID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d downloading image %s", resp.StatusCode(), image.ID)
	}

	return resp.Body(), nil
}
