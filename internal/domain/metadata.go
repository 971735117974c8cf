// Package domain contains the canonical metadata record shared by every
// sidecar parser, the multi-file detector, and the aggregator.
package domain

import (
	"strings"

	"github.com/listenupapp/sidecar/internal/normalize"
)

// SourceKind identifies which parser or detector produced a record.
// The tags double as the merge priority keys in configuration.
type SourceKind string

// Known source kinds.
const (
	SourceCue        SourceKind = "cue"
	SourceOpf        SourceKind = "opf"
	SourceJSON       SourceKind = "json"
	SourceNfo        SourceKind = "nfo"
	SourceFfmetadata SourceKind = "ffmetadata"
	SourceText       SourceKind = "txt"
	SourceMultiFile  SourceKind = "multifile"
	SourceMerged     SourceKind = "merged"
)

// ChapterMark is a named point in playback time. Start is in canonical
// 100-nanosecond ticks.
type ChapterMark struct {
	Name  string `json:"name"`
	Start int64  `json:"start"`
}

// ParsedMetadata is the unit record produced by every sidecar parser and by
// the multi-file detector. Absent scalar fields are zero values; ratings,
// series index, and the abridged flag use pointers so that an explicit zero
// survives merging.
type ParsedMetadata struct {
	SourcePath string     `json:"source_path,omitempty"`
	Kind       SourceKind `json:"kind"`

	Title           string   `json:"title,omitempty"`
	SortTitle       string   `json:"sort_title,omitempty"`
	OriginalTitle   string   `json:"original_title,omitempty"`
	Subtitle        string   `json:"subtitle,omitempty"`
	Description     string   `json:"description,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
	PublishedDate   string   `json:"published_date,omitempty"`
	Year            int      `json:"year,omitempty"`
	Language        string   `json:"language,omitempty"`
	CommunityRating *float64 `json:"community_rating,omitempty"`
	CriticRating    *float64 `json:"critic_rating,omitempty"`
	Abridged        *bool    `json:"abridged,omitempty"`
	SeriesName      string   `json:"series_name,omitempty"`
	SeriesIndex     *float64 `json:"series_index,omitempty"`

	Authors   []string `json:"authors,omitempty"`
	Narrators []string `json:"narrators,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	Tags      []string `json:"tags,omitempty"`

	ISBN          string            `json:"isbn,omitempty"`
	ISBN13        string            `json:"isbn13,omitempty"`
	ASIN          string            `json:"asin,omitempty"`
	AudibleASIN   string            `json:"audible_asin,omitempty"`
	GoodreadsID   string            `json:"goodreads_id,omitempty"`
	GoogleBooksID string            `json:"google_books_id,omitempty"`
	OpenLibraryID string            `json:"open_library_id,omitempty"`
	Identifiers   map[string]string `json:"identifiers,omitempty"`

	Chapters []ChapterMark `json:"chapters,omitempty"`

	// Duration is the total runtime in canonical ticks, 0 when unknown.
	Duration  int64  `json:"duration,omitempty"`
	CoverPath string `json:"cover_path,omitempty"`
}

// NewParsedMetadata creates an empty record tagged with its producer.
func NewParsedMetadata(kind SourceKind, sourcePath string) *ParsedMetadata {
	return &ParsedMetadata{Kind: kind, SourcePath: sourcePath}
}

// HasChapters reports whether the record carries at least one chapter mark.
func (m *ParsedMetadata) HasChapters() bool {
	return len(m.Chapters) > 0
}

// HasContent reports whether the record carries anything worth merging.
// Producers discard records for which this is false.
func (m *ParsedMetadata) HasContent() bool {
	return m.Title != "" ||
		len(m.Authors) > 0 ||
		len(m.Narrators) > 0 ||
		m.HasChapters() ||
		m.Description != ""
}

// AddAuthor appends an author unless an entry differing only by case exists.
func (m *ParsedMetadata) AddAuthor(name string) {
	m.Authors = appendUnique(m.Authors, name)
}

// AddNarrator appends a narrator unless an entry differing only by case exists.
func (m *ParsedMetadata) AddNarrator(name string) {
	m.Narrators = appendUnique(m.Narrators, name)
}

// AddGenre appends a genre unless an entry differing only by case exists.
func (m *ParsedMetadata) AddGenre(name string) {
	m.Genres = appendUnique(m.Genres, name)
}

// AddTag appends a tag unless an entry differing only by case exists.
func (m *ParsedMetadata) AddTag(name string) {
	m.Tags = appendUnique(m.Tags, name)
}

// SetISBN routes an ISBN value to the 13-digit or 10-digit field by length.
// Hyphens and spaces are ignored for routing but the cleaned value is stored.
func (m *ParsedMetadata) SetISBN(value string) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(value))
	if cleaned == "" {
		return
	}
	if len(cleaned) == 13 {
		if m.ISBN13 == "" {
			m.ISBN13 = cleaned
		}
		return
	}
	if m.ISBN == "" {
		m.ISBN = cleaned
	}
}

// PutIdentifier stores a provider identifier in the open map.
func (m *ParsedMetadata) PutIdentifier(provider, value string) {
	provider = strings.TrimSpace(provider)
	value = strings.TrimSpace(value)
	if provider == "" || value == "" {
		return
	}
	if m.Identifiers == nil {
		m.Identifiers = make(map[string]string)
	}
	if _, ok := m.Identifiers[provider]; !ok {
		m.Identifiers[provider] = value
	}
}

// appendUnique appends value to list unless it is blank or already present
// under case-insensitive comparison. The first occurrence's casing wins.
func appendUnique(list []string, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return list
	}
	key := normalize.FoldKey(value)
	for _, existing := range list {
		if normalize.FoldKey(existing) == key {
			return list
		}
	}
	return append(list, value)
}
