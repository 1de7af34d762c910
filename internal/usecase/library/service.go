// Package library exposes the stored document collection: filtered/sorted
// listing, retrieval, and confirmed deletion.
package library

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	docdom "github.com/kailas-cloud/docdex/internal/domain/document"
)

// Service handles read and delete operations over the record store.
type Service struct {
	repo        Repository
	confirmWord string
	logger      *zap.Logger
}

// New creates a library service. confirmWord is the literal the caller must
// type to commit a deletion (reference system uses "삭제").
func New(repo Repository, confirmWord string, logger *zap.Logger) *Service {
	return &Service{repo: repo, confirmWord: confirmWord, logger: logger}
}

// ConfirmWord returns the required deletion confirmation literal.
func (s *Service) ConfirmWord() string { return s.confirmWord }

// List returns records matching opts in the requested order.
func (s *Service) List(opts docdom.ListOptions) []docdom.Record {
	return s.repo.List(opts)
}

// Get returns one record by storage name.
func (s *Service) Get(storageName string) (docdom.Record, error) {
	rec, err := s.repo.Get(storageName)
	if err != nil {
		return docdom.Record{}, fmt.Errorf("get document: %w", err)
	}
	return rec, nil
}

// Count returns the number of stored records.
func (s *Service) Count() int {
	return s.repo.Count()
}

// Delete removes a record after checking the typed confirmation. A wrong
// confirmation is domain.ErrInvalidConfirmation and nothing is removed.
// With the right confirmation, the bool reports whether a record was found;
// deleting an absent name is not an error.
func (s *Service) Delete(storageName, confirmation string) (bool, error) {
	if confirmation != s.confirmWord {
		return false, fmt.Errorf("expected the literal %q: %w", s.confirmWord, domain.ErrInvalidConfirmation)
	}

	removed := s.repo.Delete(storageName)
	if removed {
		s.logger.Info("document deleted", zap.String("storage_name", storageName))
	}
	return removed, nil
}
