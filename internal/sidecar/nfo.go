package sidecar

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/listenupapp/sidecar/internal/domain"
	"github.com/listenupapp/sidecar/internal/normalize"
)

// nfoRoots is the whitelist of root element names we accept. Anything else
// (tvshow, episodedetails, artist, ...) is not audiobook metadata.
var nfoRoots = map[string]bool{
	"audiobook": true,
	"book":      true,
	"album":     true,
	"movie":     true,
}

// NfoParser parses Kodi-style NFO files. NFO files in the wild are only
// approximately XML: scrapers prepend URLs or comments, so any leading
// non-XML content is stripped before decoding.
type NfoParser struct{}

// NewNfoParser creates an NFO parser.
func NewNfoParser() *NfoParser {
	return &NfoParser{}
}

// Descriptor returns the parser's identity and file claims.
func (p *NfoParser) Descriptor() Descriptor {
	return Descriptor{
		Name:       "nfo",
		Kind:       domain.SourceNfo,
		Priority:   40,
		Extensions: []string{".nfo"},
	}
}

// CanParse reports whether the file has an .nfo extension.
func (p *NfoParser) CanParse(path string) bool {
	return p.Descriptor().matches(path)
}

// Parse reads an NFO file from disk.
func (p *NfoParser) Parse(path string) (*domain.ParsedMetadata, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseContent(content, path), nil
}

type nfoDocument struct {
	XMLName     xml.Name
	Title       string      `xml:"title"`
	Original    string      `xml:"originaltitle"`
	SortTitle   string      `xml:"sorttitle"`
	Plot        string      `xml:"plot"`
	Outline     string      `xml:"outline"`
	Description string      `xml:"description"`
	Authors     []string    `xml:"author"`
	Artists     []string    `xml:"artist"`
	Writers     []string    `xml:"writer"`
	Narrators   []string    `xml:"narrator"`
	Readers     []string    `xml:"reader"`
	Performers  []string    `xml:"performer"`
	Actors      []nfoActor  `xml:"actor"`
	Publisher   string      `xml:"publisher"`
	Studio      string      `xml:"studio"`
	Label       string      `xml:"label"`
	Year        string      `xml:"year"`
	Premiered   string      `xml:"premiered"`
	ReleaseDate string      `xml:"releasedate"`
	Language    string      `xml:"language"`
	Genres      []string    `xml:"genre"`
	Tags        []string    `xml:"tag"`
	Rating      string      `xml:"rating"`
	UserRating  string      `xml:"userrating"`
	Runtime     string      `xml:"runtime"`
	Set         nfoSet      `xml:"set"`
	Series      string      `xml:"series"`
	UniqueIDs   []nfoUnique `xml:"uniqueid"`
	Thumb       string      `xml:"thumb"`
	Poster      string      `xml:"poster"`
	Cover       string      `xml:"cover"`
}

type nfoActor struct {
	Name string `xml:"name"`
	Role string `xml:"role"`
}

type nfoSet struct {
	Name string `xml:"name"`
}

type nfoUnique struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// ParseContent decodes a tolerant-XML NFO document. Unrecognized roots and
// malformed XML yield nil.
func (p *NfoParser) ParseContent(content, sourcePath string) *domain.ParsedMetadata {
	// Strip anything before the first '<' (scraper URLs, BOM junk).
	if i := strings.IndexByte(content, '<'); i > 0 {
		content = content[i:]
	} else if i < 0 {
		return nil
	}

	var doc nfoDocument
	if err := xml.Unmarshal([]byte(content), &doc); err != nil {
		return nil
	}
	if !nfoRoots[strings.ToLower(doc.XMLName.Local)] {
		return nil
	}

	rec := domain.NewParsedMetadata(domain.SourceNfo, sourcePath)

	rec.Title = strings.TrimSpace(doc.Title)
	rec.OriginalTitle = strings.TrimSpace(doc.Original)
	rec.SortTitle = strings.TrimSpace(doc.SortTitle)
	rec.Description = cleanDescription(firstNonEmpty(doc.Plot, doc.Outline, doc.Description))
	rec.Publisher = firstNonEmpty(doc.Publisher, doc.Studio, doc.Label)

	for _, name := range firstNonEmptyList(doc.Authors, doc.Artists, doc.Writers) {
		rec.AddAuthor(name)
	}
	for _, name := range firstNonEmptyList(doc.Narrators, doc.Readers, doc.Performers) {
		rec.AddNarrator(name)
	}
	for _, actor := range doc.Actors {
		if strings.EqualFold(strings.TrimSpace(actor.Role), "narrator") {
			rec.AddNarrator(actor.Name)
		}
	}

	applyNfoDates(rec, doc)

	if lang := strings.TrimSpace(doc.Language); lang != "" {
		rec.Language = normalize.LanguageCode(lang)
	}

	for _, g := range doc.Genres {
		rec.AddGenre(g)
	}
	for _, tag := range doc.Tags {
		rec.AddTag(tag)
	}

	if rating := firstNonEmpty(doc.Rating, doc.UserRating); rating != "" {
		if f, err := strconv.ParseFloat(rating, 64); err == nil {
			rec.CommunityRating = &f
		}
	}

	if minutes, err := strconv.Atoi(strings.TrimSpace(doc.Runtime)); err == nil && minutes > 0 {
		rec.Duration = domain.TicksFromDuration(time.Duration(minutes) * time.Minute)
	}

	rec.SeriesName = firstNonEmpty(doc.Set.Name, doc.Series)

	for _, id := range doc.UniqueIDs {
		classifyNfoUniqueID(rec, id)
	}

	if sourcePath != "" {
		rec.CoverPath = resolveNfoCover(filepath.Dir(sourcePath),
			firstNonEmpty(doc.Thumb, doc.Poster, doc.Cover))
	}

	return discard(rec)
}

// applyNfoDates sets Year and PublishedDate. A parseable release date takes
// precedence over the bare year element.
func applyNfoDates(rec *domain.ParsedMetadata, doc nfoDocument) {
	if y, err := strconv.Atoi(strings.TrimSpace(doc.Year)); err == nil {
		rec.Year = y
	}

	date := firstNonEmpty(doc.ReleaseDate, doc.Premiered)
	if date == "" {
		return
	}
	rec.PublishedDate = date
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05", "2006"} {
		if t, err := time.Parse(layout, date); err == nil {
			rec.Year = t.Year()
			return
		}
	}
}

// classifyNfoUniqueID routes a uniqueid element by its type attribute.
func classifyNfoUniqueID(rec *domain.ParsedMetadata, id nfoUnique) {
	value := strings.TrimSpace(id.Value)
	if value == "" {
		return
	}
	switch strings.ToLower(strings.TrimSpace(id.Type)) {
	case "isbn":
		rec.SetISBN(value)
	case "asin":
		if rec.ASIN == "" {
			rec.ASIN = value
		}
	case "audible":
		if rec.AudibleASIN == "" {
			rec.AudibleASIN = value
		}
	case "goodreads":
		if rec.GoodreadsID == "" {
			rec.GoodreadsID = value
		}
	case "googlebooks":
		if rec.GoogleBooksID == "" {
			rec.GoogleBooksID = value
		}
	case "openlibrary":
		if rec.OpenLibraryID == "" {
			rec.OpenLibraryID = value
		}
	default:
		rec.PutIdentifier(strings.ToLower(strings.TrimSpace(id.Type)), value)
	}
}

// resolveNfoCover resolves an image reference relative to the NFO directory
// and keeps it only if the file exists. Remote URLs are ignored.
func resolveNfoCover(dir, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.Contains(ref, "://") {
		return ""
	}
	candidate := ref
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(dir, ref)
	}
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return ""
}

// firstNonEmpty returns the first value that is non-empty after trimming.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// firstNonEmptyList returns the first list with at least one non-blank entry.
func firstNonEmptyList(lists ...[]string) []string {
	for _, list := range lists {
		for _, v := range list {
			if strings.TrimSpace(v) != "" {
				return list
			}
		}
	}
	return nil
}
