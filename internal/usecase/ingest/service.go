// Package ingest runs the document upload pipeline: name assignment, text
// extraction, enrichment, and record insertion.
package ingest

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	docdom "github.com/kailas-cloud/docdex/internal/domain/document"
	"github.com/kailas-cloud/docdex/internal/extract"
	"github.com/kailas-cloud/docdex/internal/usecase/enrich"
)

// Service handles document uploads.
type Service struct {
	repo          Repository
	extractor     extract.Extractor
	enricher      domain.Enricher
	titleEmbedder domain.Embedder
	roster        map[string]struct{}
	logger        *zap.Logger
	now           func() time.Time
}

// New creates an ingest service. roster restricts uploader identities when
// non-empty; an empty roster accepts any identity.
func New(
	repo Repository,
	extractor extract.Extractor,
	enricher domain.Enricher,
	titleEmbedder domain.Embedder,
	roster []string,
	logger *zap.Logger,
) *Service {
	rs := make(map[string]struct{}, len(roster))
	for _, r := range roster {
		rs[r] = struct{}{}
	}
	return &Service{
		repo:          repo,
		extractor:     extractor,
		enricher:      enricher,
		titleEmbedder: titleEmbedder,
		roster:        rs,
		logger:        logger,
		now:           time.Now,
	}
}

// WithClock overrides the insertion timestamp source (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// UploadInput carries one upload request.
type UploadInput struct {
	FileName string // uploaded file name; drives naming and extraction type
	Title    string // display title; defaults to the file base name
	Uploader string
	Payload  []byte
}

// Upload runs the full pipeline. Extraction and enrichment failures are
// recovered into the record's fields (empty text, placeholder or
// failure-marked summary, empty embedding) — only validation and store
// integrity errors abort the upload, and then nothing is written.
//
// The storage name is reserved before the slow extraction/enrichment steps
// and the reservation is released if the upload fails, so concurrent uploads
// of the same base name cannot collide while no lock is held across the
// language-model calls.
func (s *Service) Upload(ctx context.Context, in UploadInput) (docdom.Record, error) {
	fileName := path.Base(in.FileName)
	if fileName == "." || fileName == "/" {
		fileName = ""
	}

	title := in.Title
	if title == "" {
		title = fileName
	}

	if len(in.Payload) == 0 || title == "" || in.Uploader == "" {
		return docdom.Record{}, fmt.Errorf(
			"payload, title, and uploader are all required: %w", domain.ErrUploadIncomplete,
		)
	}
	if len(s.roster) > 0 {
		if _, ok := s.roster[in.Uploader]; !ok {
			return docdom.Record{}, fmt.Errorf("uploader %q: %w", in.Uploader, domain.ErrUnknownUploader)
		}
	}

	storageName := s.repo.ReserveName(fileName)

	inserted := false
	defer func() {
		if !inserted {
			s.repo.ReleaseName(storageName)
		}
	}()

	rec, err := docdom.New(title, storageName, in.Uploader, s.now(), in.Payload)
	if err != nil {
		return docdom.Record{}, fmt.Errorf("build record: %w", err)
	}

	extraction := s.extractor.Extract(in.Payload, path.Ext(storageName))
	enrichment := s.enrichFor(ctx, extraction)
	titleVector := s.embedTitle(ctx, title)

	rec = rec.WithContent(extraction.Text, enrichment.Summary, enrichment.Embedding, titleVector)

	if err := s.repo.Insert(rec); err != nil {
		return docdom.Record{}, fmt.Errorf("insert document: %w", err)
	}
	inserted = true

	s.logger.Info("document ingested",
		zap.String("storage_name", rec.StorageName()),
		zap.String("uploader", rec.Uploader()),
		zap.String("extraction", string(extraction.Status)),
		zap.Int("embedding_dims", len(rec.Embedding())),
	)
	return rec, nil
}

// enrichFor maps the extraction outcome onto the enrichment pass.
// Unsupported and failed extractions never reach the language model.
func (s *Service) enrichFor(ctx context.Context, res extract.Result) domain.Enrichment {
	switch res.Status {
	case extract.StatusUnsupported:
		return domain.Enrichment{Summary: enrich.PlaceholderUnsupported}
	case extract.StatusFailed:
		return domain.Enrichment{Summary: enrich.PlaceholderNoText}
	default:
		return s.enricher.Enrich(ctx, res.Text)
	}
}

// embedTitle computes the record's title embedding at ingestion time so the
// ranker does not re-embed titles per search. Failure leaves it empty; the
// ranker falls back to a per-search embed for such records.
func (s *Service) embedTitle(ctx context.Context, title string) []float32 {
	result, err := s.titleEmbedder.Embed(ctx, title)
	if err != nil {
		s.logger.Warn("title embedding failed", zap.String("title", title), zap.Error(err))
		return nil
	}
	return result.Embedding
}
