package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/sashabaranov/go-openai"

	"github.com/wallascope/wallascope/pkg/domain"
)

// Config holds extractor settings
type Config struct {
	Endpoint    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	BatchPause  time.Duration
}

// Extractor asks an LLM to turn a listing title into a structured
// specification guess. It is an external collaborator of the pipeline:
// per-record failures yield null fields, never an aborted batch.
type Extractor struct {
	client completer
	config Config
	pause  func(time.Duration)
}

// completer is the slice of the OpenAI client the extractor uses
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const systemPrompt = `You analyze second-hand phone listing titles and extract specifications.
Return ONLY a JSON object with these keys:
- "gen": generation, e.g. "13", "14 Pro"
- "mod": model variant, e.g. "Pro", "Max", "Mini"
- "memoria": storage, e.g. "128GB"
- "bateria": battery health percentage, e.g. "90%"
If a value is missing from the title, use null. No prose, no markdown fences.`

// NewExtractor creates an extractor over an OpenAI-compatible endpoint
func NewExtractor(cfg Config) *Extractor {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}
	return &Extractor{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		pause:  time.Sleep,
	}
}

// ExtractSpec guesses the structured specification for one title
func (e *Extractor) ExtractSpec(ctx context.Context, title string) (*domain.ListingSpec, error) {
	tctx := ctx
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	resp, err := e.client.CreateChatCompletion(tctx, openai.ChatCompletionRequest{
		Model:       e.config.Model,
		Temperature: float32(e.config.Temperature),
		MaxTokens:   e.config.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Title: %q", title)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from llm")
	}

	spec, err := parseSpec(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parse spec for %q: %w", title, err)
	}
	return spec, nil
}

// EnrichBatch fills Spec on each record in place, pausing periodically to
// stay under rate limits. Failed extractions get a null spec and the
// record moves on; the batch itself never fails.
func (e *Extractor) EnrichBatch(ctx context.Context, records []domain.ListingRecord) []domain.ListingRecord {
	for i := range records {
		if i > 0 && i%10 == 0 && e.config.BatchPause > 0 {
			e.pause(e.config.BatchPause)
		}

		spec, err := e.ExtractSpec(ctx, records[i].Title)
		if err != nil {
			lgr.Printf("[WARN] enrichment failed for %s: %v", records[i].ID, err)
			spec = &domain.ListingSpec{}
		}
		records[i].Spec = spec
	}
	return records
}

// parseSpec strips markdown fences the model sometimes adds and decodes
// the JSON object
func parseSpec(content string) (*domain.ListingSpec, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var spec domain.ListingSpec
	if err := json.Unmarshal([]byte(cleaned), &spec); err != nil {
		return nil, fmt.Errorf("failed to parse json: %w", err)
	}
	return &spec, nil
}
