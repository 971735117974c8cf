package sidecar

import (
	"testing"

	"github.com/listenupapp/sidecar/internal/domain"
)

func TestFfmetadataParseContent(t *testing.T) {
	content := `;FFMETADATA1
title=A Study in Scarlet
artist=Arthur Conan Doyle
composer=David Timson
genre=Mystery
date=1887
[CHAPTER]
TIMEBASE=1/1000
START=0
END=323450
title=Part One
[CHAPTER]
TIMEBASE=1/1000
START=323450
END=600000
title=Part Two
`

	rec := NewFfmetadataParser().ParseContent(content, "")
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Kind != domain.SourceFfmetadata {
		t.Errorf("kind = %q", rec.Kind)
	}
	if rec.Title != "A Study in Scarlet" {
		t.Errorf("title = %q", rec.Title)
	}
	if len(rec.Authors) != 1 || rec.Authors[0] != "Arthur Conan Doyle" {
		t.Errorf("authors = %v", rec.Authors)
	}
	if len(rec.Narrators) != 1 || rec.Narrators[0] != "David Timson" {
		t.Errorf("narrators = %v", rec.Narrators)
	}
	if rec.Year != 1887 {
		t.Errorf("year = %d", rec.Year)
	}

	if len(rec.Chapters) != 2 {
		t.Fatalf("got %d chapters, want 2", len(rec.Chapters))
	}
	// START=323450 at timebase 1/1000 is 323.45 seconds.
	if got := rec.Chapters[1].Start; got != 3_234_500_000 {
		t.Errorf("chapter 2 start = %d ticks, want 3234500000", got)
	}
}

func TestFfmetadataTimebases(t *testing.T) {
	tests := []struct {
		name    string
		chapter string
		want    int64
	}{
		{
			name:    "default is milliseconds",
			chapter: "START=1500\ntitle=c",
			want:    15_000_000,
		},
		{
			name:    "explicit 1/75",
			chapter: "TIMEBASE=1/75\nSTART=100\ntitle=c",
			want:    domain.TicksFromSeconds(100.0 / 75.0),
		},
		{
			name:    "explicit 1/1",
			chapter: "TIMEBASE=1/1\nSTART=90\ntitle=c",
			want:    900_000_000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := ";FFMETADATA1\n[CHAPTER]\n" + tt.chapter + "\n"
			rec := NewFfmetadataParser().ParseContent(content, "")
			if rec == nil || len(rec.Chapters) != 1 {
				t.Fatalf("got %+v", rec)
			}
			if rec.Chapters[0].Start != tt.want {
				t.Errorf("start = %d, want %d", rec.Chapters[0].Start, tt.want)
			}
		})
	}
}

func TestFfmetadataEscapes(t *testing.T) {
	content := ";FFMETADATA1\n" +
		`title=Equals \= and semi \; here` + "\n" +
		`artist=Line\nBreak` + "\n"

	rec := NewFfmetadataParser().ParseContent(content, "")
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Title != "Equals = and semi ; here" {
		t.Errorf("title = %q", rec.Title)
	}
	if len(rec.Authors) != 1 || rec.Authors[0] != "Line\nBreak" {
		t.Errorf("authors = %q", rec.Authors)
	}
}

func TestFfmetadataHeaderRequired(t *testing.T) {
	p := NewFfmetadataParser()
	if rec := p.ParseContent("title=No Header\n", ""); rec != nil {
		t.Errorf("missing header accepted: %+v", rec)
	}
	// Header match is case-insensitive.
	if rec := p.ParseContent(";ffmetadata1\ntitle=ok\n", ""); rec == nil {
		t.Error("lowercase header rejected")
	}
}

func TestFfmetadataChapterWithoutStartDropped(t *testing.T) {
	content := ";FFMETADATA1\ntitle=Book\n[CHAPTER]\ntitle=broken\n[CHAPTER]\nSTART=0\ntitle=ok\n"
	rec := NewFfmetadataParser().ParseContent(content, "")
	if rec == nil {
		t.Fatal("expected a record")
	}
	if len(rec.Chapters) != 1 || rec.Chapters[0].Name != "ok" {
		t.Errorf("chapters = %v", rec.Chapters)
	}
}
