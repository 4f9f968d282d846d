// Package llm provides an OpenAI-compatible prompt enricher. Enrichment is
// strictly optional; every caller must be able to proceed on its failure.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ablekit/relay/internal/config"
	"github.com/ablekit/relay/internal/report"
)

// APIKeyEnv is the environment variable holding the API key. Enrichment is
// disabled when it is unset.
const APIKeyEnv = "RELAY_API_KEY"

const systemInstruction = "You polish onboarding briefs for an accessibility-focused " +
	"AI assistant taking over a conversation mid-stream. Improve clarity and flow of " +
	"the brief you are given. Keep every section heading, every fact, and the section " +
	"order exactly as provided. Do not add information. Return only the revised brief."

// defaultTimeout bounds enrichment calls when no timeout is configured.
const defaultTimeout = 30 * time.Second

// Enricher rewrites template-rendered prompts through a chat-completion API.
type Enricher struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewEnricher builds an Enricher from config. Returns nil (not an error) when
// no API key or no model is configured, so callers fall through to
// template-only rendering.
func NewEnricher(cfg *config.Config) *Enricher {
	apiKey := os.Getenv(APIKeyEnv)
	if apiKey == "" || cfg.EnrichmentModel == "" {
		return nil
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.EnrichmentBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.EnrichmentBaseURL))
	}

	timeout := time.Duration(cfg.EnrichmentTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Enricher{
		client:  openai.NewClient(opts...),
		model:   cfg.EnrichmentModel,
		timeout: timeout,
	}
}

// Enrich sends the rendered prompt for a prose pass and returns the revised
// text. Each call carries its own timeout; errors are returned for the caller
// to log and fall back on.
func (e *Enricher) Enrich(ctx context.Context, prompt string, _ *report.HandoffReport) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("enrichment request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("enrichment returned no choices")
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("enrichment returned empty content")
	}
	return out, nil
}
