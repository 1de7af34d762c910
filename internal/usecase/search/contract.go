package search

import (
	docdom "github.com/kailas-cloud/docdex/internal/domain/document"
)

// Repository supplies ranking candidates. Candidates must come back in
// insertion order (List with the registered_at ascending default) so the
// stable score sort breaks ties by insertion order.
type Repository interface {
	List(opts docdom.ListOptions) []docdom.Record
}
