package domain

import "errors"

var (
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDuplicateName signals an insert that bypassed name assignment.
	// This is a programming error, not a user error: the namer must have
	// already produced a unique storage name.
	ErrDuplicateName = errors.New("duplicate storage name")
	// ErrNoMatchingDocument signals an empty knowledge partition.
	ErrNoMatchingDocument = errors.New("no matching document for uploader")
	// ErrInvalidConfirmation signals a deletion attempt with the wrong confirmation word.
	ErrInvalidConfirmation = errors.New("invalid deletion confirmation")
	// ErrUploadIncomplete signals an upload missing payload, title, or uploader.
	ErrUploadIncomplete = errors.New("upload incomplete")
	// ErrUnknownUploader signals an uploader identity outside the configured roster.
	ErrUnknownUploader = errors.New("unknown uploader")
	// ErrInvalidTitleWeight signals a title weight outside [0,1].
	ErrInvalidTitleWeight = errors.New("title weight must be in [0,1]")
	// ErrLLMProviderError signals a language-model provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
)
