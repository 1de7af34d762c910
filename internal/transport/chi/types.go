package chi

import (
	"time"

	docdom "github.com/kailas-cloud/docdex/internal/domain/document"
	searchuc "github.com/kailas-cloud/docdex/internal/usecase/search"
)

// errorCode is the machine-readable error discriminator in error responses.
type errorCode string

const (
	codeBadRequest          errorCode = "bad_request"
	codeValidationFailed    errorCode = "validation_failed"
	codeUploadIncomplete    errorCode = "upload_incomplete"
	codeUnknownUploader     errorCode = "unknown_uploader"
	codeDocumentNotFound    errorCode = "document_not_found"
	codeDuplicateName       errorCode = "duplicate_name"
	codeInvalidConfirmation errorCode = "invalid_confirmation"
	codeNoMatchingDocument  errorCode = "no_matching_document"
	codeLLMProviderError    errorCode = "llm_provider_error"
	codeInternalError       errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

type documentResponse struct {
	Title         string    `json:"title"`
	StorageName   string    `json:"storage_name"`
	Uploader      string    `json:"uploader"`
	RegisteredAt  time.Time `json:"registered_at"`
	Extension     string    `json:"extension,omitempty"`
	SizeBytes     int       `json:"size_bytes"`
	Summary       string    `json:"summary"`
	HasEmbedding  bool      `json:"has_embedding"`
	ExtractedText string    `json:"extracted_text,omitempty"`
}

type documentListResponse struct {
	Items []documentResponse `json:"items"`
	Total int                `json:"total"`
}

type searchResultItem struct {
	documentResponse
	Score        float64 `json:"score"`
	TitleScore   float64 `json:"title_score"`
	ContentScore float64 `json:"content_score"`
}

type searchListResponse struct {
	Items       []searchResultItem `json:"items"`
	Total       int                `json:"total"`
	TitleWeight float64            `json:"title_weight"`
}

// documentToResponse maps a record to its listing shape (no extracted text).
func documentToResponse(rec docdom.Record) documentResponse {
	return documentResponse{
		Title:        rec.Title(),
		StorageName:  rec.StorageName(),
		Uploader:     rec.Uploader(),
		RegisteredAt: rec.RegisteredAt().UTC(),
		Extension:    rec.Extension(),
		SizeBytes:    len(rec.Payload()),
		Summary:      rec.Summary(),
		HasEmbedding: len(rec.Embedding()) > 0,
	}
}

// documentToDetail includes the extracted text (single-document reads).
func documentToDetail(rec docdom.Record) documentResponse {
	resp := documentToResponse(rec)
	resp.ExtractedText = rec.ExtractedText()
	return resp
}

func searchResultToItem(res searchuc.Result) searchResultItem {
	return searchResultItem{
		documentResponse: documentToResponse(res.Record),
		Score:            res.Score,
		TitleScore:       res.TitleScore,
		ContentScore:     res.ContentScore,
	}
}
