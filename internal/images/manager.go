package images

import (
	"context"
	"fmt"

	"github.com/otonolab/autopress/internal/logger"
	"github.com/otonolab/autopress/internal/wordpress"
)

// Manager ties a stock-image source to WordPress: find an image for the
// topic's keywords, upload it, set it as the post's featured image. The
// whole feature is optional; nothing here ever fails the caller.
type Manager struct {
	source    Source
	wordpress *wordpress.Client
}

func NewManager(source Source, wp *wordpress.Client) *Manager {
	return &Manager{source: source, wordpress: wp}
}

// AttachFeaturedImage tries each keyword in order, then the fallback
// keyword. The first keyword whose image makes it all the way through
// search, download, upload and attach wins. Returns the media id and
// whether anything was attached.
func (m *Manager) AttachFeaturedImage(ctx context.Context, postID int, keywords []string, fallbackKeyword string) (int, bool) {
	searchKeywords := append(append([]string{}, keywords...), fallbackKeyword)

	for _, keyword := range searchKeywords {
		mediaID, err := m.tryKeyword(ctx, postID, keyword)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("keyword", keyword).
				Int("post_id", postID).
				Msg("Featured image attempt failed, trying next keyword")
			continue
		}

		logger.Info().
			Str("keyword", keyword).
			Int("post_id", postID).
			Int("media_id", mediaID).
			Msg("Featured image attached")
		return mediaID, true
	}

	logger.Warn().Int("post_id", postID).Msg("No featured image could be attached")
	return 0, false
}

func (m *Manager) tryKeyword(ctx context.Context, postID int, keyword string) (int, error) {
	image, err := m.source.BestImageForKeyword(ctx, keyword)
	if err != nil {
		return 0, err
	}
	if image == nil {
		return 0, fmt.Errorf("no image found for %q", keyword)
	}

	data, err := m.source.Download(ctx, image)
	if err != nil {
		return 0, err
	}

	filename := fmt.Sprintf("stock_%s.jpg", image.ID)
	media, err := m.wordpress.UploadMedia(ctx, data, filename, image.Description)
	if err != nil {
		return 0, err
	}

	if err := m.wordpress.SetFeaturedImage(ctx, postID, media.ID); err != nil {
		return 0, err
	}

	return media.ID, nil
}
