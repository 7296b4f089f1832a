package images

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// ShutterstockClient searches and licenses photos from the Shutterstock
// API. Search uses basic auth with the consumer key pair; licensing and
// download need the OAuth access token when one is configured.
type ShutterstockClient struct {
	client      *resty.Client
	accessToken string
	baseURL     string
}

type shutterstockSearchResponse struct {
	Data []shutterstockImage `json:"data"`
}

type shutterstockImage struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Assets      struct {
		Preview struct {
			URL string `json:"url"`
		} `json:"preview"`
	} `json:"assets"`
	Contributor struct {
		ID string `json:"id"`
	} `json:"contributor"`
}

type shutterstockLicenseResponse struct {
	Data []struct {
		Download struct {
			URL string `json:"url"`
		} `json:"download"`
		URL string `json:"url"`
	} `json:"data"`
}

var _ Source = (*ShutterstockClient)(nil)

func NewShutterstockClient(consumerKey, consumerSecret, accessToken string) *ShutterstockClient {
	return &ShutterstockClient{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetBasicAuth(consumerKey, consumerSecret),
		accessToken: accessToken,
		baseURL:     "https://api.shutterstock.com/v2",
	}
}

// BestImageForKeyword returns the most popular horizontal photo for the
// keyword, or nil when the search comes back empty.
func (s *ShutterstockClient) BestImageForKeyword(ctx context.Context, keyword string) (*Result, error) {
	var search shutterstockSearchResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":       keyword,
			"per_page":    "1",
			"image_type":  "photo",
			"sort":        "popular",
			"orientation": "horizontal",
		}).
		SetResult(&search).
		Get(s.baseURL + "/images/search")

	if err != nil {
		return nil, fmt.Errorf("shutterstock search failed for %q: %w", keyword, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from shutterstock search", resp.StatusCode())
	}
	if len(search.Data) == 0 {
		return nil, nil
	}

	image := search.Data[0]
	description := image.Description
	if description == "" {
		description = keyword
	}

	return &Result{
		ID:           image.ID,
		Description:  description,
		URL:          image.Assets.Preview.URL,
		DownloadHint: image.ID,
		Photographer: image.Contributor.ID,
	}, nil
}

// Download licenses the image and fetches the licensed file.
func (s *ShutterstockClient) Download(ctx context.Context, image *Result) ([]byte, error) {
	var license shutterstockLicenseResponse
	resp, err := s.oauthRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"images": []map[string]string{
				{
					"image_id":        image.DownloadHint,
					"subscription_id": "auto",
					"size":            "medium",
				},
			},
		}).
		SetResult(&license).
		Post(s.baseURL + "/images/licenses")

	if err != nil {
		return nil, fmt.Errorf("failed to license image %s: %w", image.ID, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d licensing image %s", resp.StatusCode(), image.ID)
	}

	if len(license.Data) == 0 {
		return nil, fmt.Errorf("license response for image %s has no data", image.ID)
	}
	downloadURL := license.Data[0].Download.URL
	if downloadURL == "" {
		downloadURL = license.Data[0].URL
	}
	if downloadURL == "" {
		return nil, fmt.Errorf("license response for image %s has no download url", image.ID)
	}

	fileResp, err := s.oauthRequest(ctx).Get(downloadURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image %s: %w", image.ID, err)
	}
	if fileResp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d downloading image %s", fileResp.StatusCode(), image.ID)
	}

	return fileResp.Body(), nil
}

func (s *ShutterstockClient) oauthRequest(ctx context.Context) *resty.Request {
	req := s.client.R().SetContext(ctx)
	if s.accessToken != "" {
		req.SetAuthToken(s.accessToken)
	}
	return req
}
