package ingest

import (
	docdom "github.com/kailas-cloud/docdex/internal/domain/document"
)

// Repository is the storage contract for the upload pipeline. ReserveName and
// Insert are the atomic pair that keeps storage names unique; ReleaseName
// returns a reservation when the upload fails before insert.
type Repository interface {
	ReserveName(requested string) string
	ReleaseName(name string)
	Insert(rec docdom.Record) error
}
