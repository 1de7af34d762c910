// Package enrich runs the summarization + embedding pass over extracted text.
package enrich

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Fixed summary placeholders for records that never reach the language model.
const (
	// PlaceholderUnsupported marks documents whose declared type has no
	// extraction path (a known limitation, not a failure).
	PlaceholderUnsupported = "요약 없음: 지원하지 않는 파일 형식입니다"
	// PlaceholderNoText marks documents where extraction produced nothing.
	PlaceholderNoText = "요약 없음: 추출된 본문이 없습니다"
	// FailurePrefix marks summaries of documents whose enrichment call failed.
	FailurePrefix = "[요약 실패] "
)

// Service turns extracted text into a (summary, embedding) pair. Both limits
// exist because the provider enforces input-size ceilings: very long
// documents are summarized and embedded from bounded prefixes only.
//
// Provider failures and timeouts are recovered here and encoded into the
// result — the upload pipeline is never aborted by a failed enrichment.
type Service struct {
	summarizer      domain.Summarizer
	embedder        domain.Embedder
	summaryMaxChars int
	embedMaxChars   int
	timeout         time.Duration
	logger          *zap.Logger
}

var _ domain.Enricher = (*Service)(nil)

// New creates an enrichment service.
func New(
	summarizer domain.Summarizer,
	embedder domain.Embedder,
	summaryMaxChars, embedMaxChars int,
	timeout time.Duration,
	logger *zap.Logger,
) *Service {
	if summaryMaxChars <= 0 {
		summaryMaxChars = 6000
	}
	if embedMaxChars <= 0 {
		embedMaxChars = 8000
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		summarizer:      summarizer,
		embedder:        embedder,
		summaryMaxChars: summaryMaxChars,
		embedMaxChars:   embedMaxChars,
		timeout:         timeout,
		logger:          logger,
	}
}

// Enrich implements domain.Enricher. Empty input yields the no-text
// placeholder with an empty embedding. Any provider failure (network, quota,
// timeout) yields a failure-marked summary with an empty embedding — never a
// partial pair.
func (s *Service) Enrich(ctx context.Context, text string) domain.Enrichment {
	if strings.TrimSpace(text) == "" {
		return domain.Enrichment{Summary: PlaceholderNoText}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sumResult, err := s.summarizer.Summarize(ctx, truncateRunes(text, s.summaryMaxChars))
	if err != nil {
		s.logger.Warn("summarization failed", zap.Error(err))
		return failed(err)
	}

	embResult, err := s.embedder.Embed(ctx, truncateRunes(text, s.embedMaxChars))
	if err != nil {
		s.logger.Warn("content embedding failed", zap.Error(err))
		return failed(err)
	}

	return domain.Enrichment{
		Summary:   sumResult.Summary,
		Embedding: embResult.Embedding,
	}
}

func failed(err error) domain.Enrichment {
	return domain.Enrichment{Summary: FailurePrefix + err.Error()}
}

// truncateRunes bounds s to max runes without splitting a multi-byte character.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
