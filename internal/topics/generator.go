package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/otonolab/autopress/internal/ai"
	"github.com/otonolab/autopress/internal/models"
)

// ParseError reports a topic batch the model did not return as valid
// JSON. The raw completion is kept for the logs; there is no retry and
// no partial parse, the whole batch is discarded.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse generated topics: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Generator asks the model for a batch of fresh topics. Generated
// batches are returned unpersisted; the caller appends them to the
// store.
type Generator struct {
	llm         ai.Completer
	temperature float64
	maxTokens   int
}

func NewGenerator(llm ai.Completer) *Generator {
	return &Generator{
		llm:         llm,
		temperature: 0.9,
		maxTokens:   2000,
	}
}

type generatedTopic struct {
	Title      string   `json:"title"`
	Keywords   []string `json:"keywords"`
	TargetPain string   `json:"target_pain"`
	Approach   string   `json:"approach"`
}

// Generate requests count new topics in one completion. All-or-nothing:
// a request or parse failure yields no topics and leaves the existing
// ones untouched. Ids continue from the highest existing id so a batch
// always gets consecutive ids in the order the model returned them.
func (g *Generator) Generate(ctx context.Context, count int, existing []models.Topic) ([]models.Topic, error) {
	titles := make([]string, 0, len(existing))
	for _, topic := range existing {
		titles = append(titles, topic.Title)
	}

	prompt := ai.BuildTopicBatchPrompt(count, titles)

	response, err := g.llm.Complete(ctx, prompt, ai.CompletionOptions{
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("topic generation request failed: %w", err)
	}

	cleaned := stripCodeFence(response)

	var generated []generatedTopic
	if err := json.Unmarshal([]byte(cleaned), &generated); err != nil {
		return nil, &ParseError{Raw: response, Err: err}
	}

	nextID := maxTopicID(existing) + 1
	topics := make([]models.Topic, 0, len(generated))
	for i, gt := range generated {
		topics = append(topics, models.Topic{
			ID:         nextID + i,
			Title:      gt.Title,
			Keywords:   gt.Keywords,
			TargetPain: gt.TargetPain,
			Approach:   gt.Approach,
			Used:       false,
		})
	}

	return topics, nil
}

// stripCodeFence removes a surrounding markdown code fence. Models wrap
// JSON answers in ```json blocks often enough that this is the common
// case, not the exception.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func maxTopicID(topics []models.Topic) int {
	max := 0
	for _, topic := range topics {
		if topic.ID > max {
			max = topic.ID
		}
	}
	return max
}
