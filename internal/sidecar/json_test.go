package sidecar

import (
	"testing"

	"github.com/listenupapp/sidecar/internal/domain"
)

func TestJSONChapterArrayDialect(t *testing.T) {
	content := `[
		{"title": "Opening", "start": 0},
		{"title": "The Middle", "start": 1804.5},
		{"start": 3600}
	]`

	rec := NewJSONParser().ParseContent(content, "chapters.json")
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Kind != domain.SourceJSON {
		t.Errorf("kind = %q", rec.Kind)
	}
	if len(rec.Chapters) != 3 {
		t.Fatalf("got %d chapters, want 3", len(rec.Chapters))
	}
	if got := rec.Chapters[1].Start; got != 18_045_000_000 {
		t.Errorf("chapter 2 start = %d ticks", got)
	}
	if rec.Chapters[2].Name != "Chapter 3" {
		t.Errorf("untitled chapter name = %q", rec.Chapters[2].Name)
	}
}

func TestJSONNestedDialect(t *testing.T) {
	content := `{
		"libraryItem": {
			"media": {
				"metadata": {
					"title": "The Martian",
					"authors": [{"name": "Andy Weir"}],
					"narrators": ["R.C. Bray"],
					"series": [{"name": "Mars Books", "sequence": "1"}],
					"genres": ["Sci-Fi"],
					"publishedYear": "2014",
					"language": "english",
					"isbn": "9780804139021",
					"abridged": false
				},
				"chapters": [
					{"title": "Sol 1", "start": 0},
					{"title": "Sol 6", "start": 900}
				]
			}
		}
	}`

	rec := NewJSONParser().ParseContent(content, "")
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Title != "The Martian" {
		t.Errorf("title = %q", rec.Title)
	}
	if len(rec.Authors) != 1 || rec.Authors[0] != "Andy Weir" {
		t.Errorf("authors = %v", rec.Authors)
	}
	if len(rec.Narrators) != 1 || rec.Narrators[0] != "R.C. Bray" {
		t.Errorf("narrators = %v", rec.Narrators)
	}
	if rec.SeriesName != "Mars Books" {
		t.Errorf("series = %q", rec.SeriesName)
	}
	if rec.SeriesIndex == nil || *rec.SeriesIndex != 1 {
		t.Errorf("series index = %v", rec.SeriesIndex)
	}
	if rec.Year != 2014 {
		t.Errorf("year = %d", rec.Year)
	}
	if rec.Language != "en" {
		t.Errorf("language = %q", rec.Language)
	}
	if rec.ISBN13 != "9780804139021" {
		t.Errorf("isbn13 = %q", rec.ISBN13)
	}
	if rec.Abridged == nil || *rec.Abridged {
		t.Errorf("abridged = %v", rec.Abridged)
	}
	if len(rec.Chapters) != 2 {
		t.Errorf("chapters = %v", rec.Chapters)
	}
}

func TestJSONGenericDialect(t *testing.T) {
	content := `{
		"name": "Dune",
		"writer": "Frank Herbert",
		"readers": ["Scott Brick", "Orlagh Cassidy"],
		"summary": "Spice and sand.",
		"series": {"name": "Dune Chronicles", "position": 1},
		"duration": 75598.28,
		"year": 1965,
		"chapters": [{"name": "Book One", "startMs": 500}]
	}`

	rec := NewJSONParser().ParseContent(content, "")
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Title != "Dune" {
		t.Errorf("title = %q", rec.Title)
	}
	if len(rec.Authors) != 1 || rec.Authors[0] != "Frank Herbert" {
		t.Errorf("authors = %v", rec.Authors)
	}
	if len(rec.Narrators) != 2 {
		t.Errorf("narrators = %v", rec.Narrators)
	}
	if rec.Description != "Spice and sand." {
		t.Errorf("description = %q", rec.Description)
	}
	if rec.SeriesName != "Dune Chronicles" {
		t.Errorf("series = %q", rec.SeriesName)
	}
	if rec.Duration != domain.TicksFromSeconds(75598.28) {
		t.Errorf("duration = %d", rec.Duration)
	}
	if len(rec.Chapters) != 1 || rec.Chapters[0].Start != 5_000_000 {
		t.Errorf("chapters = %v", rec.Chapters)
	}
}

func TestJSONChapterStartKeys(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int64
	}{
		{"seconds", `[{"title": "c", "start": 1.5}]`, 15_000_000},
		{"startTime", `[{"title": "c", "startTime": 2}]`, 20_000_000},
		{"milliseconds", `[{"title": "c", "startMs": 1500}]`, 15_000_000},
		{"raw ticks", `[{"title": "c", "startPositionTicks": 42}]`, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewJSONParser().ParseContent(tt.content, "")
			if rec == nil || len(rec.Chapters) != 1 {
				t.Fatalf("got %+v", rec)
			}
			if rec.Chapters[0].Start != tt.want {
				t.Errorf("start = %d, want %d", rec.Chapters[0].Start, tt.want)
			}
		})
	}
}

func TestJSONMalformed(t *testing.T) {
	p := NewJSONParser()
	for _, content := range []string{"", "{broken", `"just a string"`, "42", "{}", "[]"} {
		if rec := p.ParseContent(content, ""); rec != nil {
			t.Errorf("content %q: got %+v", content, rec)
		}
	}
}
