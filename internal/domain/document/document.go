package document

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Record is a stored document (immutable value object). Title, storage name,
// uploader, payload and registration time are fixed at upload; extracted
// text, summary and embeddings are fixed by the single enrichment pass that
// produced them. There is no in-place edit: an edit is delete + re-insert.
type Record struct {
	title          string
	storageName    string
	uploader       string
	registeredAt   time.Time
	payload        []byte
	extractedText  string
	summary        string
	embedding      []float32
	titleEmbedding []float32
}

// New validates and creates a bare Record (no enrichment yet).
// The storage name must already be collision-free (see naming.Assign).
func New(title, storageName, uploader string, registeredAt time.Time, payload []byte) (Record, error) {
	if title == "" {
		return Record{}, fmt.Errorf("title is required")
	}
	if storageName == "" {
		return Record{}, fmt.Errorf("storage name is required")
	}
	if uploader == "" {
		return Record{}, fmt.Errorf("uploader is required")
	}
	if len(payload) == 0 {
		return Record{}, fmt.Errorf("payload is required")
	}
	if registeredAt.IsZero() {
		registeredAt = time.Now()
	}

	return Record{
		title:        title,
		storageName:  storageName,
		uploader:     uploader,
		registeredAt: registeredAt,
		payload:      cloneBytes(payload),
	}, nil
}

// Reconstruct creates a Record without validation (test fixtures, hydration).
func Reconstruct(
	title, storageName, uploader string, registeredAt time.Time, payload []byte,
	extractedText, summary string, embedding, titleEmbedding []float32,
) Record {
	return Record{
		title:          title,
		storageName:    storageName,
		uploader:       uploader,
		registeredAt:   registeredAt,
		payload:        payload,
		extractedText:  extractedText,
		summary:        summary,
		embedding:      embedding,
		titleEmbedding: titleEmbedding,
	}
}

// WithContent returns a copy carrying the extraction and enrichment outputs.
// Summary and embedding come from one enrichment pass over extractedText.
func (r Record) WithContent(extractedText, summary string, embedding, titleEmbedding []float32) Record {
	c := r
	c.extractedText = extractedText
	c.summary = summary
	c.embedding = cloneVector(embedding)
	c.titleEmbedding = cloneVector(titleEmbedding)
	return c
}

// Title returns the display title.
func (r Record) Title() string { return r.title }

// StorageName returns the unique storage identifier.
func (r Record) StorageName() string { return r.storageName }

// Uploader returns the uploader identity.
func (r Record) Uploader() string { return r.uploader }

// RegisteredAt returns the insertion timestamp.
func (r Record) RegisteredAt() time.Time { return r.registeredAt }

// Payload returns a copy of the raw uploaded bytes. The stored payload is
// immutable; handing out the internal slice would let callers break that.
func (r Record) Payload() []byte { return cloneBytes(r.payload) }

// ExtractedText returns the plain text derived from the payload
// (empty when extraction failed or was unsupported).
func (r Record) ExtractedText() string { return r.extractedText }

// Summary returns the natural-language summary (placeholder or error-marked
// when enrichment could not run).
func (r Record) Summary() string { return r.summary }

// Embedding returns the content embedding (empty when it could not be computed).
func (r Record) Embedding() []float32 { return r.embedding }

// TitleEmbedding returns the title embedding cached at ingestion time.
func (r Record) TitleEmbedding() []float32 { return r.titleEmbedding }

// Extension returns the lowercased storage name extension, including the dot.
func (r Record) Extension() string {
	return strings.ToLower(path.Ext(r.storageName))
}

// FilterByUploader returns the records whose uploader equals uploader exactly.
// A persona's knowledge partition: no substring matching, no fallback.
func FilterByUploader(records []Record, uploader string) []Record {
	var out []Record
	for _, r := range records {
		if r.uploader == uploader {
			out = append(out, r)
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	c := make([]float32, len(v))
	copy(c, v)
	return c
}
