// Package chi is the HTTP transport for the docdex API.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	docdom "github.com/kailas-cloud/docdex/internal/domain/document"
	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docdex/internal/usecase/ingest"
	knowledgeuc "github.com/kailas-cloud/docdex/internal/usecase/knowledge"
	libraryuc "github.com/kailas-cloud/docdex/internal/usecase/library"
	searchuc "github.com/kailas-cloud/docdex/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the use case services to HTTP routes.
type Server struct {
	ingest         *ingestuc.Service
	library        *libraryuc.Service
	search         *searchuc.Service
	knowledge      *knowledgeuc.Service
	health         *healthuc.Service
	maxUploadBytes int64
	logger         *zap.Logger
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingest *ingestuc.Service,
	library *libraryuc.Service,
	search *searchuc.Service,
	knowledge *knowledgeuc.Service,
	health *healthuc.Service,
	maxUploadBytes int64,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ingest:         ingest,
		library:        library,
		search:         search,
		knowledge:      knowledge,
		health:         health,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeDocumentNotFound),
		sentinelHandler(domain.ErrNoMatchingDocument, http.StatusNotFound, codeNoMatchingDocument),
		sentinelHandler(domain.ErrUploadIncomplete, http.StatusBadRequest, codeUploadIncomplete),
		sentinelHandler(domain.ErrUnknownUploader, http.StatusBadRequest, codeUnknownUploader),
		sentinelHandler(domain.ErrInvalidConfirmation, http.StatusBadRequest, codeInvalidConfirmation),
		sentinelHandler(domain.ErrInvalidTitleWeight, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrDuplicateName, http.StatusConflict, codeDuplicateName),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, codeLLMProviderError),
	}
	return s
}

// Mount registers all API routes on the router.
func (s *Server) Mount(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/documents", s.UploadDocument)
		r.Get("/documents", s.ListDocuments)
		r.Get("/documents/{name}", s.GetDocument)
		r.Get("/documents/{name}/file", s.DownloadDocument)
		r.Delete("/documents/{name}", s.DeleteDocument)
		r.Get("/knowledge/documents", s.DocumentsByUploader)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// UploadDocument handles POST /api/v1/documents (multipart form:
// file, title, uploader). Title defaults to the uploaded file's base name.
func (s *Server) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeUploadIncomplete, "A document file is required")
		return
	}
	defer func() { _ = file.Close() }()

	payload, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Failed to read uploaded file: "+err.Error())
		return
	}

	rec, err := s.ingest.Upload(r.Context(), ingestuc.UploadInput{
		FileName: header.Filename,
		Title:    r.FormValue("title"),
		Uploader: r.FormValue("uploader"),
		Payload:  payload,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/documents/"+rec.StorageName())
	writeJSON(w, http.StatusCreated, documentToDetail(rec))
}

// ListDocuments handles GET /api/v1/documents. Without a query it is the
// plain filter/sort listing; with ?query= it runs the semantic ranker and
// ?title_weight= tunes the title/content blend.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts, err := listOptionsFromQuery(q.Get("filter"), q.Get("ext"), q.Get("sort"), q.Get("order"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	query := q.Get("query")
	if query == "" {
		records := s.library.List(opts)
		items := make([]documentResponse, len(records))
		for i, rec := range records {
			items[i] = documentToResponse(rec)
		}
		writeJSON(w, http.StatusOK, documentListResponse{Items: items, Total: len(items)})
		return
	}

	titleWeight := s.search.DefaultTitleWeight()
	if raw := q.Get("title_weight"); raw != "" {
		titleWeight, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidationFailed, "title_weight must be a number")
			return
		}
	}

	results, err := s.search.Search(r.Context(), query, opts, titleWeight)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]searchResultItem, len(results))
	for i, res := range results {
		items[i] = searchResultToItem(res)
	}
	writeJSON(w, http.StatusOK, searchListResponse{
		Items:       items,
		Total:       len(items),
		TitleWeight: titleWeight,
	})
}

// GetDocument handles GET /api/v1/documents/{name}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	rec, err := s.library.Get(chi.URLParam(r, "name"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToDetail(rec))
}

// DownloadDocument handles GET /api/v1/documents/{name}/file.
func (s *Server) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	rec, err := s.library.Get(chi.URLParam(r, "name"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", rec.StorageName()))
	w.Header().Set("Content-Length", strconv.Itoa(len(rec.Payload())))
	_, _ = w.Write(rec.Payload())
}

// DeleteDocument handles DELETE /api/v1/documents/{name}?confirm=<word>.
// The typed confirmation must match the configured word exactly; a bare
// request (or the wrong word) removes nothing.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	removed, err := s.library.Delete(chi.URLParam(r, "name"), r.URL.Query().Get("confirm"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, codeDocumentNotFound, domain.ErrDocumentNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DocumentsByUploader handles GET /api/v1/knowledge/documents?uploader=<id>.
// An uploader with no documents is a 404, never a fallback to other material.
func (s *Server) DocumentsByUploader(w http.ResponseWriter, r *http.Request) {
	uploader := r.URL.Query().Get("uploader")
	if uploader == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "uploader is required")
		return
	}

	records, err := s.knowledge.DocumentsByUploader(uploader)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]documentResponse, len(records))
	for i, rec := range records {
		items[i] = documentToResponse(rec)
	}
	writeJSON(w, http.StatusOK, documentListResponse{Items: items, Total: len(items)})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func listOptionsFromQuery(filter, ext, sortKey, order string) (docdom.ListOptions, error) {
	key, err := docdom.ParseSortKey(sortKey)
	if err != nil {
		return docdom.ListOptions{}, err
	}

	ascending := false
	switch order {
	case "", "desc":
	case "asc":
		ascending = true
	default:
		return docdom.ListOptions{}, fmt.Errorf("order must be \"asc\" or \"desc\", got %q", order)
	}

	return docdom.ListOptions{
		Filter:    filter,
		Ext:       ext,
		Sort:      key,
		Ascending: ascending,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrNoMatchingDocument,
		domain.ErrUploadIncomplete,
		domain.ErrUnknownUploader,
		domain.ErrInvalidConfirmation,
		domain.ErrInvalidTitleWeight,
		domain.ErrDuplicateName,
		domain.ErrLLMProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
