package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/extract"
	"github.com/kailas-cloud/docdex/internal/usecase/enrich"
)

func okExtractor(text string) *mockExtractor {
	return &mockExtractor{result: extract.Result{Status: extract.StatusOK, Text: text}}
}

func TestUpload_PDFSuccess(t *testing.T) {
	repo := newMockRepo()
	enr := &mockEnricher{result: domain.Enrichment{
		Summary:   "세 문장 요약",
		Embedding: []float32{0.1, 0.2},
	}}
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.3}}}
	svc := newTestService(repo, okExtractor("extracted body"), enr, emb, nil).WithClock(fixedClock(t))

	rec, err := svc.Upload(context.Background(), UploadInput{
		FileName: "report.pdf",
		Title:    "Q1 Report",
		Uploader: "김민서 (대리 / 회계팀)",
		Payload:  []byte("%PDF-"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.StorageName() != "report.pdf" {
		t.Errorf("unexpected storage name: %q", rec.StorageName())
	}
	if rec.ExtractedText() != "extracted body" {
		t.Errorf("unexpected text: %q", rec.ExtractedText())
	}
	if rec.Summary() != "세 문장 요약" || len(rec.Embedding()) != 2 {
		t.Errorf("enrichment not carried: %q %v", rec.Summary(), rec.Embedding())
	}
	if len(rec.TitleEmbedding()) != 1 {
		t.Errorf("title embedding not carried: %v", rec.TitleEmbedding())
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(repo.inserted))
	}
	if enr.lastText != "extracted body" {
		t.Errorf("enricher got %q", enr.lastText)
	}
}

func TestUpload_TitleDefaultsToFileName(t *testing.T) {
	repo := newMockRepo()
	enr := &mockEnricher{}
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := newTestService(repo, okExtractor("body"), enr, emb, nil)

	rec, err := svc.Upload(context.Background(), UploadInput{
		FileName: "dir/invoice.pdf",
		Uploader: "u",
		Payload:  []byte("x"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Title() != "invoice.pdf" {
		t.Fatalf("expected title to default to base name, got %q", rec.Title())
	}
}

func TestUpload_IncompleteInput(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, okExtractor(""), &mockEnricher{}, &mockEmbedder{}, nil)

	cases := []struct {
		name string
		in   UploadInput
	}{
		{"no payload", UploadInput{FileName: "a.pdf", Title: "t", Uploader: "u"}},
		{"no uploader", UploadInput{FileName: "a.pdf", Title: "t", Payload: []byte("x")}},
		{"no title or file name", UploadInput{Uploader: "u", Payload: []byte("x")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), tc.in)
			if !errors.Is(err, domain.ErrUploadIncomplete) {
				t.Fatalf("expected ErrUploadIncomplete, got %v", err)
			}
		})
	}
	if len(repo.inserted) != 0 {
		t.Fatalf("nothing may be written on validation failure, got %d inserts", len(repo.inserted))
	}
}

func TestUpload_RosterRejectsUnknownUploader(t *testing.T) {
	repo := newMockRepo()
	roster := []string{"정하람 (과장 / 물류팀)", "김민서 (대리 / 회계팀)"}
	svc := newTestService(repo, okExtractor("body"), &mockEnricher{}, &mockEmbedder{}, roster)

	_, err := svc.Upload(context.Background(), UploadInput{
		FileName: "a.pdf",
		Title:    "t",
		Uploader: "외부인",
		Payload:  []byte("x"),
	})
	if !errors.Is(err, domain.ErrUnknownUploader) {
		t.Fatalf("expected ErrUnknownUploader, got %v", err)
	}
}

func TestUpload_EmptyRosterAcceptsAnyUploader(t *testing.T) {
	repo := newMockRepo()
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := newTestService(repo, okExtractor("body"), &mockEnricher{}, emb, nil)

	if _, err := svc.Upload(context.Background(), UploadInput{
		FileName: "a.pdf", Title: "t", Uploader: "anyone", Payload: []byte("x"),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpload_SecondUploadGetsVersionedName(t *testing.T) {
	repo := newMockRepo()
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := newTestService(repo, okExtractor("body"), &mockEnricher{}, emb, nil)

	in := UploadInput{FileName: "report.pdf", Title: "t", Uploader: "u", Payload: []byte("x")}

	first, err := svc.Upload(context.Background(), in)
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	second, err := svc.Upload(context.Background(), in)
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}

	if first.StorageName() != "report.pdf" || second.StorageName() != "report_v1.pdf" {
		t.Fatalf("unexpected names: %q, %q", first.StorageName(), second.StorageName())
	}
}

func TestUpload_UnsupportedTypeGetsPlaceholder(t *testing.T) {
	repo := newMockRepo()
	ext := &mockExtractor{result: extract.Result{Status: extract.StatusUnsupported}}
	enr := &mockEnricher{result: domain.Enrichment{Summary: "must not be used"}}
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := newTestService(repo, ext, enr, emb, nil)

	rec, err := svc.Upload(context.Background(), UploadInput{
		FileName: "notes.txt", Title: "t", Uploader: "u", Payload: []byte("plain text"),
	})
	if err != nil {
		t.Fatalf("unsupported type must still be stored: %v", err)
	}
	if rec.Summary() != enrich.PlaceholderUnsupported {
		t.Errorf("expected unsupported placeholder, got %q", rec.Summary())
	}
	if rec.ExtractedText() != "" || len(rec.Embedding()) != 0 {
		t.Errorf("expected empty text and embedding: %q %v", rec.ExtractedText(), rec.Embedding())
	}
	if enr.calls != 0 {
		t.Error("enricher must not run for unsupported types")
	}
}

func TestUpload_FailedExtractionGetsPlaceholder(t *testing.T) {
	repo := newMockRepo()
	ext := &mockExtractor{result: extract.Result{Status: extract.StatusFailed}}
	enr := &mockEnricher{}
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := newTestService(repo, ext, enr, emb, nil)

	rec, err := svc.Upload(context.Background(), UploadInput{
		FileName: "broken.pdf", Title: "t", Uploader: "u", Payload: []byte("not a pdf"),
	})
	if err != nil {
		t.Fatalf("failed extraction must still be stored: %v", err)
	}
	if rec.Summary() != enrich.PlaceholderNoText {
		t.Errorf("expected no-text placeholder, got %q", rec.Summary())
	}
	if enr.calls != 0 {
		t.Error("enricher must not run for failed extraction")
	}
}

func TestUpload_TitleEmbeddingFailureIsNotFatal(t *testing.T) {
	repo := newMockRepo()
	enr := &mockEnricher{result: domain.Enrichment{Summary: "s", Embedding: []float32{0.1}}}
	emb := &mockEmbedder{err: errors.New("provider down")}
	svc := newTestService(repo, okExtractor("body"), enr, emb, nil)

	rec, err := svc.Upload(context.Background(), UploadInput{
		FileName: "a.pdf", Title: "t", Uploader: "u", Payload: []byte("x"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.TitleEmbedding()) != 0 {
		t.Fatalf("expected empty title embedding, got %v", rec.TitleEmbedding())
	}
}

func TestUpload_ReleasesReservationOnInsertFailure(t *testing.T) {
	repo := newMockRepo()
	repo.insertErr = errors.New("store full")
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := newTestService(repo, okExtractor("body"), &mockEnricher{}, emb, nil)

	_, err := svc.Upload(context.Background(), UploadInput{
		FileName: "a.pdf", Title: "t", Uploader: "u", Payload: []byte("x"),
	})
	if err == nil {
		t.Fatal("expected insert error")
	}
	if len(repo.released) != 1 || repo.released[0] != "a.pdf" {
		t.Fatalf("expected reservation release for a.pdf, got %v", repo.released)
	}
	if len(repo.reserved) != 0 {
		t.Fatalf("reservation leaked: %v", repo.reserved)
	}
}

func TestUpload_KeepsReservationOnSuccess(t *testing.T) {
	repo := newMockRepo()
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	svc := newTestService(repo, okExtractor("body"), &mockEnricher{}, emb, nil)

	if _, err := svc.Upload(context.Background(), UploadInput{
		FileName: "a.pdf", Title: "t", Uploader: "u", Payload: []byte("x"),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.released) != 0 {
		t.Fatalf("successful upload must not release, got %v", repo.released)
	}
}
