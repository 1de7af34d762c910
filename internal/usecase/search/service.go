// Package search ranks stored documents against a free-text query by
// blending title and content embedding similarity.
package search

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	docdom "github.com/kailas-cloud/docdex/internal/domain/document"
	"github.com/kailas-cloud/docdex/internal/domain/vector"
)

// Result is one ranked document with its blended and component scores.
type Result struct {
	Record       docdom.Record
	Score        float64
	TitleScore   float64
	ContentScore float64
}

// Service handles semantic search over the record store.
type Service struct {
	repo               Repository
	embed              domain.Embedder
	defaultTitleWeight float64
	logger             *zap.Logger
}

// New creates a search service. defaultTitleWeight applies when the caller
// does not pick a weight; the reference default is 0.3.
func New(repo Repository, embed domain.Embedder, defaultTitleWeight float64, logger *zap.Logger) *Service {
	return &Service{
		repo:               repo,
		embed:              embed,
		defaultTitleWeight: defaultTitleWeight,
		logger:             logger,
	}
}

// DefaultTitleWeight returns the configured default blend weight.
func (s *Service) DefaultTitleWeight() float64 { return s.defaultTitleWeight }

// Search embeds the query and ranks every candidate by
//
//	titleWeight*cos(query, title) + (1-titleWeight)*cos(query, content)
//
// descending, ties broken by insertion order. Records whose title or content
// embedding is empty score 0.0 on that component. Callers with no query must
// use the plain list path instead; an empty query here is an error.
func (s *Service) Search(
	ctx context.Context, query string, opts docdom.ListOptions, titleWeight float64,
) ([]Result, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	// NaN fails neither comparison but would poison every blended score.
	if math.IsNaN(titleWeight) || titleWeight < 0 || titleWeight > 1 {
		return nil, fmt.Errorf("got %g: %w", titleWeight, domain.ErrInvalidTitleWeight)
	}

	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	queryVec := embResult.Embedding

	// Candidates in insertion order; only the narrowing options apply.
	candidates := s.repo.List(docdom.ListOptions{
		Filter:    opts.Filter,
		Ext:       opts.Ext,
		Sort:      docdom.SortRegisteredAt,
		Ascending: true,
	})

	results := make([]Result, 0, len(candidates))
	for _, rec := range candidates {
		titleScore := vector.Cosine(queryVec, s.titleVector(ctx, rec))
		contentScore := vector.Cosine(queryVec, rec.Embedding())

		results = append(results, Result{
			Record:       rec,
			Score:        titleWeight*titleScore + (1-titleWeight)*contentScore,
			TitleScore:   titleScore,
			ContentScore: contentScore,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results, nil
}

// titleVector prefers the embedding cached on the record at ingestion time
// and falls back to a per-search embed only when that is empty (the
// ingestion-time call failed). A fallback failure scores the title 0.0
// rather than failing the whole search.
func (s *Service) titleVector(ctx context.Context, rec docdom.Record) []float32 {
	if vec := rec.TitleEmbedding(); len(vec) > 0 {
		return vec
	}

	result, err := s.embed.Embed(ctx, rec.Title())
	if err != nil {
		s.logger.Warn("title embedding fallback failed",
			zap.String("storage_name", rec.StorageName()), zap.Error(err))
		return nil
	}
	return result.Embedding
}
