package document

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey selects the listing sort field.
type SortKey string

const (
	// SortRegisteredAt orders by insertion timestamp.
	SortRegisteredAt SortKey = "registered_at"
	// SortTitle orders by display title.
	SortTitle SortKey = "title"
	// SortUploader orders by uploader identity.
	SortUploader SortKey = "uploader"
)

// ParseSortKey validates a sort key string. Empty means SortRegisteredAt.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortRegisteredAt, nil
	case SortRegisteredAt, SortTitle, SortUploader:
		return SortKey(s), nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// ListOptions narrows and orders a listing.
type ListOptions struct {
	Filter    string // case-insensitive substring over title OR uploader
	Ext       string // storage name extension, e.g. ".pdf" (empty = any)
	Sort      SortKey
	Ascending bool
}

// Matches reports whether a record passes the filter and extension narrowing.
func (o ListOptions) Matches(r Record) bool {
	if o.Ext != "" && r.Extension() != strings.ToLower(o.Ext) {
		return false
	}
	if o.Filter == "" {
		return true
	}
	needle := strings.ToLower(o.Filter)
	return strings.Contains(strings.ToLower(r.Title()), needle) ||
		strings.Contains(strings.ToLower(r.Uploader()), needle)
}

// SortRecords orders records in place by the given key. The sort is stable:
// records must arrive in insertion order, which then breaks ties.
func SortRecords(records []Record, key SortKey, ascending bool) {
	less := func(a, b Record) bool {
		switch key {
		case SortTitle:
			return a.Title() < b.Title()
		case SortUploader:
			return a.Uploader() < b.Uploader()
		default:
			return a.RegisteredAt().Before(b.RegisteredAt())
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if ascending {
			return less(records[i], records[j])
		}
		return less(records[j], records[i])
	})
}
