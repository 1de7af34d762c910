package ingest

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	docdom "github.com/kailas-cloud/docdex/internal/domain/document"
	"github.com/kailas-cloud/docdex/internal/domain/naming"
	"github.com/kailas-cloud/docdex/internal/extract"
)

// mockRepo mimics the store's reserve/insert discipline without locking.
type mockRepo struct {
	names     map[string]struct{}
	reserved  map[string]struct{}
	inserted  []docdom.Record
	released  []string
	insertErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		names:    make(map[string]struct{}),
		reserved: make(map[string]struct{}),
	}
}

func (m *mockRepo) ReserveName(requested string) string {
	taken := make(map[string]struct{}, len(m.names)+len(m.reserved))
	for n := range m.names {
		taken[n] = struct{}{}
	}
	for n := range m.reserved {
		taken[n] = struct{}{}
	}
	name := naming.Assign(taken, requested)
	m.reserved[name] = struct{}{}
	return name
}

func (m *mockRepo) ReleaseName(name string) {
	m.released = append(m.released, name)
	delete(m.reserved, name)
}

func (m *mockRepo) Insert(rec docdom.Record) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, rec)
	m.names[rec.StorageName()] = struct{}{}
	delete(m.reserved, rec.StorageName())
	return nil
}

// mockExtractor returns a fixed result.
type mockExtractor struct {
	result extract.Result
}

func (m *mockExtractor) Extract(_ []byte, _ string) extract.Result {
	return m.result
}

// mockEnricher records the text it was handed.
type mockEnricher struct {
	result   domain.Enrichment
	lastText string
	calls    int
}

func (m *mockEnricher) Enrich(_ context.Context, text string) domain.Enrichment {
	m.calls++
	m.lastText = text
	return m.result
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return m.result, m.err
}

func fixedClock(t *testing.T) func() time.Time {
	t.Helper()
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func newTestService(repo *mockRepo, ext *mockExtractor, enr *mockEnricher, emb *mockEmbedder, roster []string) *Service {
	return New(repo, ext, enr, emb, roster, zap.NewNop())
}
