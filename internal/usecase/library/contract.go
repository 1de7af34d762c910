package library

import (
	docdom "github.com/kailas-cloud/docdex/internal/domain/document"
)

// Repository is the storage contract for listing, retrieval, and deletion.
type Repository interface {
	List(opts docdom.ListOptions) []docdom.Record
	Get(storageName string) (docdom.Record, error)
	Delete(storageName string) bool
	Count() int
}
