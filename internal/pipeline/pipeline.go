package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/otonolab/autopress/internal/ai"
	"github.com/otonolab/autopress/internal/archive"
	"github.com/otonolab/autopress/internal/cache"
	"github.com/otonolab/autopress/internal/config"
	"github.com/otonolab/autopress/internal/images"
	"github.com/otonolab/autopress/internal/logger"
	"github.com/otonolab/autopress/internal/models"
	"github.com/otonolab/autopress/internal/topics"
	"github.com/otonolab/autopress/internal/wordpress"
)

// Pipeline is one end-to-end publishing run: pick a topic, generate the
// article, classify it, augment it, publish it, mark the topic used.
// Runs are sequential and single-writer; retrying means running the
// whole pipeline again later, never looping in-process.
type Pipeline struct {
	cfg        *config.Config
	store      *topics.Store
	generator  *topics.Generator
	llm        ai.Completer
	classifier *ai.Classifier
	related    *ai.RelatedSelector
	wordpress  *wordpress.Client
	imgs       *images.Manager // nil disables featured images
	posts      cache.PostCache
	archive    *archive.Archive // nil disables archiving
}

// Deps wires the collaborators into the pipeline.
type Deps struct {
	Config     *config.Config
	Store      *topics.Store
	Generator  *topics.Generator
	LLM        ai.Completer
	Classifier *ai.Classifier
	Related    *ai.RelatedSelector
	WordPress  *wordpress.Client
	Images     *images.Manager
	Posts      cache.PostCache
	Archive    *archive.Archive
}

func New(deps Deps) *Pipeline {
	posts := deps.Posts
	if posts == nil {
		posts = cache.NewMemoryCache()
	}
	return &Pipeline{
		cfg:        deps.Config,
		store:      deps.Store,
		generator:  deps.Generator,
		llm:        deps.LLM,
		classifier: deps.Classifier,
		related:    deps.Related,
		wordpress:  deps.WordPress,
		imgs:       deps.Images,
		posts:      posts,
		archive:    deps.Archive,
	}
}

// Run executes one pipeline invocation. A nil error means either a post
// was published and its topic marked used, or there was cleanly nothing
// to do. Anything the run cannot degrade around comes back as an error.
//
// The topic is marked used only after a successful publish. A failure
// anywhere before that leaves it unconsumed for the next run; a crash
// between publish and mark means the topic gets published again. That
// at-least-once trade-off is deliberate.
func (p *Pipeline) Run(ctx context.Context) error {
	log := logger.Get()
	start := time.Now()

	if !p.wordpress.TestConnection(ctx) {
		return fmt.Errorf("wordpress connection test failed")
	}
	log.Info().Msg("WordPress connection OK")

	if err := p.topUpTopics(ctx); err != nil {
		return err
	}

	topic, ok := p.store.NextUnused()
	if !ok {
		log.Info().Msg("No unused topics available, nothing to do")
		return nil
	}
	log.Info().
		Int("topic_id", topic.ID).
		Str("title", topic.Title).
		Msg("Selected topic")

	article, err := p.generateArticle(ctx, topic)
	if err != nil {
		return err
	}

	categoryID := p.classifier.Classify(ctx, article.Title, topic)
	log.Info().
		Int("topic_id", topic.ID).
		Int("category_id", categoryID).
		Msg("Article classified")

	tagIDs := p.resolveTags(ctx, article.Tags)

	if block := p.relatedBlock(ctx, article.Title); block != "" {
		article.Content += block
	}

	status := "draft"
	if p.cfg.AutoPublish {
		status = "publish"
	}

	post, err := p.wordpress.CreatePost(ctx, wordpress.NewPost{
		Title:      article.Title,
		Content:    article.Content,
		Status:     status,
		Categories: []int{categoryID},
		Tags:       tagIDs,
	})
	if err != nil {
		return fmt.Errorf("failed to publish article for topic %d: %w", topic.ID, err)
	}
	log.Info().
		Int("topic_id", topic.ID).
		Int("post_id", post.ID).
		Str("status", status).
		Str("url", post.Link).
		Msg("Article published")

	if p.imgs != nil {
		p.imgs.AttachFeaturedImage(ctx, post.ID, topic.Keywords, p.cfg.FallbackImageKeyword)
	}

	if p.archive != nil {
		path, err := p.archive.SaveSnapshot(ctx, archive.Snapshot{
			Article:    article,
			PostID:     post.ID,
			PostURL:    post.Link,
			CategoryID: categoryID,
		})
		if err != nil {
			log.Warn().Err(err).Int("post_id", post.ID).Msg("Failed to archive article")
		} else {
			log.Debug().Str("path", path).Msg("Article archived")
		}
	}

	if err := p.store.MarkUsed(topic.ID); err != nil {
		// The post is live but the topic stayed unused; the next run
		// would publish it again. Surface loudly.
		return fmt.Errorf("published post %d but failed to mark topic %d used: %w", post.ID, topic.ID, err)
	}

	log.Info().
		Int("topic_id", topic.ID).
		Int("post_id", post.ID).
		Int("unused_remaining", p.store.UnusedCount()).
		Dur("duration", time.Since(start)).
		Msg("Pipeline run complete")
	return nil
}

// topUpTopics generates a fresh batch when the unused supply runs low.
// Generation failures are degraded while any unused topic remains, and
// fatal once the queue is empty.
func (p *Pipeline) topUpTopics(ctx context.Context) error {
	log := logger.Get()

	unused := p.store.UnusedCount()
	if unused >= p.cfg.MinTopicBuffer {
		return nil
	}
	log.Info().
		Int("unused", unused).
		Int("min_buffer", p.cfg.MinTopicBuffer).
		Int("batch_size", p.cfg.TopicBatchSize).
		Msg("Topic supply low, generating a new batch")

	generated, err := p.generator.Generate(ctx, p.cfg.TopicBatchSize, p.store.Topics())
	if err != nil {
		if unused > 0 {
			log.Warn().Err(err).Msg("Topic generation failed, continuing with remaining topics")
			return nil
		}
		return fmt.Errorf("topic generation failed with empty queue: %w", err)
	}

	if err := p.store.Append(generated); err != nil {
		return fmt.Errorf("failed to append generated topics: %w", err)
	}
	log.Info().Int("generated", len(generated)).Msg("Appended generated topics")
	return nil
}

// generateArticle runs the completion for the topic and extracts the
// structured fields. The request failing is fatal; the extraction never
// fails, it degrades to the whole completion as body.
func (p *Pipeline) generateArticle(ctx context.Context, topic models.Topic) (models.Article, error) {
	log := logger.Get()

	raw, err := p.llm.Complete(ctx, ai.BuildArticlePrompt(topic), ai.CompletionOptions{
		Temperature: p.cfg.AITemperature,
		MaxTokens:   p.cfg.AIMaxTokens,
	})
	if err != nil {
		return models.Article{}, fmt.Errorf("article generation failed for topic %d: %w", topic.ID, err)
	}

	article := ai.ExtractArticle(raw, topic.Title, topic.ID)
	if article.Title == topic.Title && article.Content == raw {
		log.Warn().
			Int("topic_id", topic.ID).
			Msg("Completion had no recognizable structure, using whole text as body")
	}
	log.Info().
		Int("topic_id", topic.ID).
		Int("content_len", len(article.Content)).
		Msg("Article generated")
	return article, nil
}

// resolveTags turns the raw comma-separated tag string into WordPress
// term ids, best-effort.
func (p *Pipeline) resolveTags(ctx context.Context, rawTags string) []int {
	var names []string
	for _, name := range strings.Split(rawTags, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return p.wordpress.GetOrCreateTags(ctx, names)
}

// relatedBlock fetches the published-post candidates (from cache when
// warm), runs the selection, and renders the HTML block. Any failure
// along the way yields no augmentation.
func (p *Pipeline) relatedBlock(ctx context.Context, articleTitle string) string {
	log := logger.Get()

	candidates, hit, err := p.posts.Get(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Post cache read failed")
	}
	if !hit {
		candidates, err = p.wordpress.ListPosts(ctx, 100)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to list published posts, skipping related content")
			return ""
		}
		if err := p.posts.Set(ctx, candidates, p.cfg.CacheTTL); err != nil {
			log.Warn().Err(err).Msg("Post cache write failed")
		}
	}

	links := p.related.Select(ctx, articleTitle, candidates, p.cfg.MaxRelatedLinks)
	if len(links) == 0 {
		log.Info().Int("candidates", len(candidates)).Msg("No related content selected")
		return ""
	}

	log.Info().Int("links", len(links)).Msg("Related content block appended")
	return ai.BuildRelatedBlock(links)
}
