package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/metrics"
)

const callSummary = "summary"

// summarySystemPrompt instructs the model to answer in the document's language.
const summarySystemPrompt = "You summarize internal business documents. " +
	"Write a 2-3 sentence summary in the language of the document, " +
	"keeping document numbers, amounts, and party names."

// Summarizer produces short document summaries via an OpenAI-compatible chat API.
type Summarizer struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// SummarizerConfig holds the summarization provider settings.
type SummarizerConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	Logger   *zap.Logger
}

var _ domain.Summarizer = (*Summarizer)(nil)

// NewSummarizer creates an OpenAI-compatible summarization provider.
func NewSummarizer(cfg *SummarizerConfig) *Summarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Summarizer{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Summarize implements domain.Summarizer.
func (s *Summarizer) Summarize(ctx context.Context, text string) (domain.SummaryResult, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	}

	start := time.Now()

	resp, err := s.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(s.provider, s.model, callSummary, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues(s.provider, s.model, callSummary, "api_error").Inc()
		return domain.SummaryResult{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(s.provider, s.model, callSummary, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues(s.provider, s.model, callSummary, "empty_response").Inc()
		return domain.SummaryResult{}, fmt.Errorf("empty completion response: %w", domain.ErrLLMProviderError)
	}

	metrics.LLMRequestsTotal.WithLabelValues(s.provider, s.model, callSummary, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(s.provider, s.model, callSummary).Observe(duration.Seconds())

	totalTokens := resp.Usage.TotalTokens
	if totalTokens > 0 {
		metrics.LLMTokensTotal.WithLabelValues(s.provider, s.model, callSummary, "total").Add(float64(totalTokens))
	}

	return domain.SummaryResult{
		Summary:     resp.Choices[0].Message.Content,
		TotalTokens: totalTokens,
	}, nil
}
