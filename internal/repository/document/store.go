// Package document holds the in-memory document record store. Records live
// for the lifetime of the process, matching the reference system's
// session-scoped storage; only the enrichment caches are durable.
package document

import (
	"sync"

	"github.com/kailas-cloud/docdex/internal/domain"
	docdom "github.com/kailas-cloud/docdex/internal/domain/document"
	"github.com/kailas-cloud/docdex/internal/domain/naming"
)

// Store keeps document records in insertion order, guarded by one mutex.
// Name reservation and insert form the atomic pair that keeps storage names
// unique under concurrent uploads: callers reserve a name, run the slow
// extraction/enrichment outside the lock, then insert.
type Store struct {
	mu       sync.RWMutex
	records  []docdom.Record
	names    map[string]struct{}
	reserved map[string]struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		names:    make(map[string]struct{}),
		reserved: make(map[string]struct{}),
	}
}

// ReserveName atomically assigns a collision-free storage name for the
// requested file name and holds it until Insert or ReleaseName.
func (s *Store) ReserveName(requested string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := make(map[string]struct{}, len(s.names)+len(s.reserved))
	for n := range s.names {
		taken[n] = struct{}{}
	}
	for n := range s.reserved {
		taken[n] = struct{}{}
	}

	name := naming.Assign(taken, requested)
	s.reserved[name] = struct{}{}
	return name
}

// ReleaseName drops a reservation without inserting (failed upload path).
func (s *Store) ReleaseName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reserved, name)
}

// Insert appends a record and consumes its name reservation. A storage name
// already held by a live record is rejected with domain.ErrDuplicateName:
// that means the caller bypassed ReserveName.
func (s *Store) Insert(rec docdom.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := rec.StorageName()
	if _, exists := s.names[name]; exists {
		return domain.ErrDuplicateName
	}

	s.records = append(s.records, rec)
	s.names[name] = struct{}{}
	delete(s.reserved, name)
	return nil
}

// List returns the records passing opts, sorted per opts. The stable sort
// over the insertion-ordered snapshot breaks ties by insertion order.
func (s *Store) List(opts docdom.ListOptions) []docdom.Record {
	s.mu.RLock()
	matched := make([]docdom.Record, 0, len(s.records))
	for _, r := range s.records {
		if opts.Matches(r) {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()

	docdom.SortRecords(matched, opts.Sort, opts.Ascending)
	return matched
}

// All returns a snapshot of every record in insertion order.
func (s *Store) All() []docdom.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]docdom.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the record with the given storage name.
func (s *Store) Get(storageName string) (docdom.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.StorageName() == storageName {
			return r, nil
		}
	}
	return docdom.Record{}, domain.ErrDocumentNotFound
}

// Delete removes the record with the given storage name entirely.
// Returns whether a record was found; a missing name is not an error.
func (s *Store) Delete(storageName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.records {
		if r.StorageName() == storageName {
			s.records = append(s.records[:i], s.records[i+1:]...)
			delete(s.names, storageName)
			return true
		}
	}
	return false
}

// Count returns the number of live records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
