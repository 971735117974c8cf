package domain

import (
	"testing"
	"time"
)

func TestTicksConversion(t *testing.T) {
	tests := []struct {
		seconds float64
		want    int64
	}{
		{0, 0},
		{1, 10_000_000},
		{330.6, 3_306_000_000},
		{0.0000001, 1}, // one tick
		{300.5, 3_005_000_000},
	}

	for _, tt := range tests {
		if got := TicksFromSeconds(tt.seconds); got != tt.want {
			t.Errorf("TicksFromSeconds(%v) = %d, want %d", tt.seconds, got, tt.want)
		}
	}

	if got := TicksFromDuration(90 * time.Minute); got != 90*60*TicksPerSecond {
		t.Errorf("TicksFromDuration(90m) = %d", got)
	}
	if got := TicksToDuration(TicksPerSecond); got != time.Second {
		t.Errorf("TicksToDuration(1s worth) = %v", got)
	}
}

func TestHasContent(t *testing.T) {
	tests := []struct {
		name   string
		record ParsedMetadata
		want   bool
	}{
		{"empty", ParsedMetadata{}, false},
		{"title only", ParsedMetadata{Title: "X"}, true},
		{"authors only", ParsedMetadata{Authors: []string{"A"}}, true},
		{"narrators only", ParsedMetadata{Narrators: []string{"N"}}, true},
		{"chapters only", ParsedMetadata{Chapters: []ChapterMark{{Name: "1"}}}, true},
		{"description only", ParsedMetadata{Description: "d"}, true},
		{"genre alone is not content", ParsedMetadata{Genres: []string{"g"}}, false},
	}

	for _, tt := range tests {
		if got := tt.record.HasContent(); got != tt.want {
			t.Errorf("%s: HasContent() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAddAuthorDedup(t *testing.T) {
	m := &ParsedMetadata{}
	m.AddAuthor("Jane Doe")
	m.AddAuthor("jane doe")
	m.AddAuthor("  ")
	m.AddAuthor("John Smith")

	if len(m.Authors) != 2 {
		t.Fatalf("got %d authors, want 2: %v", len(m.Authors), m.Authors)
	}
	// First occurrence's casing wins.
	if m.Authors[0] != "Jane Doe" || m.Authors[1] != "John Smith" {
		t.Errorf("unexpected authors: %v", m.Authors)
	}
}

func TestSetISBNRouting(t *testing.T) {
	m := &ParsedMetadata{}
	m.SetISBN("978-1-2345-6789-0")
	if m.ISBN13 != "9781234567890" {
		t.Errorf("ISBN13 = %q", m.ISBN13)
	}
	if m.ISBN != "" {
		t.Errorf("ISBN should be empty, got %q", m.ISBN)
	}

	m.SetISBN("0306406152")
	if m.ISBN != "0306406152" {
		t.Errorf("ISBN = %q", m.ISBN)
	}

	// First value wins per slot.
	m.SetISBN("9790000000000")
	if m.ISBN13 != "9781234567890" {
		t.Errorf("ISBN13 overwritten: %q", m.ISBN13)
	}
}

func TestPutIdentifier(t *testing.T) {
	m := &ParsedMetadata{}
	m.PutIdentifier("musicbrainz", "abc")
	m.PutIdentifier("musicbrainz", "def") // first wins
	m.PutIdentifier("", "x")
	m.PutIdentifier("librivox", "")

	if len(m.Identifiers) != 1 || m.Identifiers["musicbrainz"] != "abc" {
		t.Errorf("unexpected identifiers: %v", m.Identifiers)
	}
}
