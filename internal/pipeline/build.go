package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/otonolab/autopress/internal/ai"
	"github.com/otonolab/autopress/internal/archive"
	"github.com/otonolab/autopress/internal/cache"
	"github.com/otonolab/autopress/internal/config"
	"github.com/otonolab/autopress/internal/images"
	"github.com/otonolab/autopress/internal/logger"
	"github.com/otonolab/autopress/internal/topics"
	"github.com/otonolab/autopress/internal/wordpress"
)

// Build wires a pipeline from configuration: required collaborators
// always, optional ones (images, redis, R2) only when configured. The
// returned cleanup closes whatever was opened. The store is loaded
// before returning so a missing or corrupt themes file fails here, not
// mid-run.
func Build(ctx context.Context, cfg *config.Config) (*Pipeline, func(), error) {
	log := logger.Get()

	store := topics.NewStore(cfg.ThemesFile)
	if err := store.Load(); err != nil {
		return nil, nil, fmt.Errorf("failed to load topic store: %w", err)
	}

	llm := ai.NewClient(cfg.AIApiKey, cfg.AIModel, cfg.AIBaseURL, time.Duration(cfg.AITimeout)*time.Second)
	wp := wordpress.NewClient(cfg.WPSiteURL, cfg.WPUsername, cfg.WPAppPassword, cfg.HTTPTimeout)

	var imageManager *images.Manager
	switch {
	case cfg.UnsplashAccessKey != "":
		imageManager = images.NewManager(images.NewUnsplashClient(cfg.UnsplashAccessKey), wp)
	case cfg.ShutterstockConsumerKey != "":
		imageManager = images.NewManager(images.NewShutterstockClient(
			cfg.ShutterstockConsumerKey,
			cfg.ShutterstockConsumerSecret,
			cfg.ShutterstockAccessToken,
		), wp)
	default:
		log.Info().Msg("No stock-image provider configured, featured images disabled")
	}

	var posts cache.PostCache = cache.NewMemoryCache()
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL, cfg.RedisPrefix, cfg.WPSiteURL)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, falling back to in-memory post cache")
		} else {
			posts = redisCache
		}
	}

	var arch *archive.Archive
	if cfg.ArchivePath != "" {
		var uploader *archive.R2Uploader
		if cfg.R2Endpoint != "" {
			var err error
			uploader, err = archive.NewR2Uploader(ctx, cfg.R2Endpoint, cfg.R2AccessKey, cfg.R2SecretKey, cfg.R2Bucket)
			if err != nil {
				log.Warn().Err(err).Msg("R2 uploader unavailable, archiving locally only")
			}
		}

		var err error
		arch, err = archive.NewArchive(cfg.ArchivePath, uploader)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize archive: %w", err)
		}
	}

	p := New(Deps{
		Config:     cfg,
		Store:      store,
		Generator:  topics.NewGenerator(llm),
		LLM:        llm,
		Classifier: ai.NewClassifier(llm, ai.CategoryTable(cfg.Categories), cfg.DefaultCategoryID),
		Related:    ai.NewRelatedSelector(llm),
		WordPress:  wp,
		Images:     imageManager,
		Posts:      posts,
		Archive:    arch,
	})

	cleanup := func() {
		if err := posts.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing post cache")
		}
	}

	return p, cleanup, nil
}

// Store exposes the loaded topic store for the admin API.
func (p *Pipeline) Store() *topics.Store {
	return p.store
}

// Generator exposes the topic generator for the admin API.
func (p *Pipeline) Generator() *topics.Generator {
	return p.generator
}
