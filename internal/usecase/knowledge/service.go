// Package knowledge exposes per-uploader document partitions to downstream
// consumers (e.g. a role-playing chat agent that may only cite material its
// persona uploaded).
package knowledge

import (
	"fmt"

	"github.com/kailas-cloud/docdex/internal/domain"
	docdom "github.com/kailas-cloud/docdex/internal/domain/document"
)

// Repository supplies the full record set in insertion order.
type Repository interface {
	All() []docdom.Record
}

// Service handles knowledge partition reads.
type Service struct {
	repo Repository
}

// New creates a knowledge service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// DocumentsByUploader returns exactly the records uploaded by uploader.
// An empty partition is domain.ErrNoMatchingDocument — callers must surface
// "no matching document" rather than fall back to other uploaders' material.
func (s *Service) DocumentsByUploader(uploader string) ([]docdom.Record, error) {
	partition := docdom.FilterByUploader(s.repo.All(), uploader)
	if len(partition) == 0 {
		return nil, fmt.Errorf("uploader %q: %w", uploader, domain.ErrNoMatchingDocument)
	}
	return partition, nil
}
