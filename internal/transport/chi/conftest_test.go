package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	chiRouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/extract"
	documentrepo "github.com/kailas-cloud/docdex/internal/repository/document"
	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docdex/internal/usecase/ingest"
	knowledgeuc "github.com/kailas-cloud/docdex/internal/usecase/knowledge"
	libraryuc "github.com/kailas-cloud/docdex/internal/usecase/library"
	searchuc "github.com/kailas-cloud/docdex/internal/usecase/search"
)

const (
	testUploader  = "정하람 (과장 / 물류팀)"
	testUploader2 = "김민서 (대리 / 회계팀)"
)

// mockExtractor treats every payload as already-plain text.
type mockExtractor struct{}

func (mockExtractor) Extract(payload []byte, _ string) extract.Result {
	return extract.Result{Status: extract.StatusOK, Text: string(payload)}
}

// mockEmbedder returns a fixed vector for any text.
type mockEmbedder struct{}

func (mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
}

// mockEnricher returns a fixed pair.
type mockEnricher struct{}

func (mockEnricher) Enrich(_ context.Context, _ string) domain.Enrichment {
	return domain.Enrichment{Summary: "요약", Embedding: []float32{1, 0}}
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(_ context.Context) error { return m.err }

// newTestRouter builds a full router over an empty in-memory store.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	store := documentrepo.NewStore()

	roster := []string{testUploader, testUploader2}
	ingestSvc := ingestuc.New(store, mockExtractor{}, mockEnricher{}, mockEmbedder{}, roster, logger)
	librarySvc := libraryuc.New(store, "삭제", logger)
	searchSvc := searchuc.New(store, mockEmbedder{}, 0.3, logger)
	knowledgeSvc := knowledgeuc.New(store)
	healthSvc := healthuc.New(mockPinger{}, nil)

	server := NewServer(ingestSvc, librarySvc, searchSvc, knowledgeSvc, healthSvc, 32<<20, logger)

	r := chiRouter.NewRouter()
	server.Mount(r)
	return r
}

// uploadRequest builds a multipart upload request.
func uploadRequest(t *testing.T, fileName, title, uploader string, payload []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	if title != "" {
		_ = w.WriteField("title", title)
	}
	if uploader != "" {
		_ = w.WriteField("uploader", uploader)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func doUpload(t *testing.T, router http.Handler, fileName, title, uploader string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, uploadRequest(t, fileName, title, uploader, payload))
	return rr
}

func decodeJSON(t *testing.T, body io.Reader, v any) {
	t.Helper()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
