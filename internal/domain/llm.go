package domain

import "context"

// KeyPrefix namespaces all cache keys in the shared KV store.
const KeyPrefix = "docdex:"

// DefaultEmbeddingDimensions is the vector size used when the config leaves it unset.
const DefaultEmbeddingDimensions = 1536

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Summarizer produces a short natural-language summary of a text body.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (SummaryResult, error)
}

// HealthChecker verifies language-model provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// SummaryResult carries the summary text and token usage.
type SummaryResult struct {
	Summary     string
	TotalTokens int
}

// Enrichment is the (summary, embedding) pair derived from one extraction pass.
// The two are always computed together: a non-empty embedding corresponds to
// the exact text the summary was produced from.
type Enrichment struct {
	Summary   string
	Embedding []float32
}

// Enricher turns extracted document text into an Enrichment. Implementations
// recover all provider failures internally: the summary encodes the failure
// and the embedding stays empty, but the call itself never errors.
type Enricher interface {
	Enrich(ctx context.Context, text string) Enrichment
}
