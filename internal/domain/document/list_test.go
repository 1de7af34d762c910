package document

import (
	"testing"
	"time"
)

func reconstructAt(title, storageName, uploader string, at time.Time) Record {
	return Reconstruct(title, storageName, uploader, at, []byte("x"), "", "", nil, nil)
}

func TestParseSortKey(t *testing.T) {
	cases := []struct {
		in      string
		want    SortKey
		wantErr bool
	}{
		{"", SortRegisteredAt, false},
		{"registered_at", SortRegisteredAt, false},
		{"title", SortTitle, false},
		{"uploader", SortUploader, false},
		{"size", "", true},
	}
	for _, tc := range cases {
		got, err := ParseSortKey(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseSortKey(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSortKey(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseSortKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMatches_FilterTitleOrUploader(t *testing.T) {
	rec := reconstructAt("Q1 Sales Report", "q1.pdf", "이준호 (팀장 / 영업팀)", time.Now())

	cases := []struct {
		name string
		opts ListOptions
		want bool
	}{
		{"no filter", ListOptions{}, true},
		{"title substring", ListOptions{Filter: "sales"}, true},
		{"title case-insensitive", ListOptions{Filter: "SALES"}, true},
		{"uploader substring", ListOptions{Filter: "영업팀"}, true},
		{"no match", ListOptions{Filter: "logistics"}, false},
		{"ext match", ListOptions{Ext: ".pdf"}, true},
		{"ext case-insensitive", ListOptions{Ext: ".PDF"}, true},
		{"ext mismatch", ListOptions{Ext: ".docx"}, false},
		{"ext and filter must both pass", ListOptions{Ext: ".pdf", Filter: "nope"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.opts.Matches(rec); got != tc.want {
				t.Fatalf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSortRecords_ByTitle(t *testing.T) {
	records := []Record{
		reconstructAt("banana", "b.pdf", "u", time.Now()),
		reconstructAt("apple", "a.pdf", "u", time.Now()),
		reconstructAt("cherry", "c.pdf", "u", time.Now()),
	}

	SortRecords(records, SortTitle, true)
	if records[0].Title() != "apple" || records[2].Title() != "cherry" {
		t.Fatalf("ascending title sort wrong: %q %q %q",
			records[0].Title(), records[1].Title(), records[2].Title())
	}

	SortRecords(records, SortTitle, false)
	if records[0].Title() != "cherry" || records[2].Title() != "apple" {
		t.Fatalf("descending title sort wrong: %q %q %q",
			records[0].Title(), records[1].Title(), records[2].Title())
	}
}

func TestSortRecords_StableOnTies(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	// Same timestamp everywhere; insertion order must survive both directions.
	records := []Record{
		reconstructAt("first", "1.pdf", "u", at),
		reconstructAt("second", "2.pdf", "u", at),
		reconstructAt("third", "3.pdf", "u", at),
	}

	SortRecords(records, SortRegisteredAt, true)
	if records[0].Title() != "first" || records[2].Title() != "third" {
		t.Fatalf("ascending tie order broken: %q %q %q",
			records[0].Title(), records[1].Title(), records[2].Title())
	}

	SortRecords(records, SortRegisteredAt, false)
	if records[0].Title() != "first" || records[2].Title() != "third" {
		t.Fatalf("descending tie order broken: %q %q %q",
			records[0].Title(), records[1].Title(), records[2].Title())
	}
}
