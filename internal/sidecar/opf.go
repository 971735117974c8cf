package sidecar

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/listenupapp/sidecar/internal/domain"
	"github.com/listenupapp/sidecar/internal/normalize"
)

// coverCandidates are checked beside the OPF file, in order.
var coverCandidates = []string{"cover.jpg", "cover.png", "cover.jpeg", "folder.jpg", "folder.png"}

// OpfParser parses OPF/Dublin-Core package files as written by Calibre and
// most ebook tooling. Elements are matched by local name so both prefixed
// (dc:title) and unprefixed (title) documents are accepted.
type OpfParser struct{}

// NewOpfParser creates an OPF parser.
func NewOpfParser() *OpfParser {
	return &OpfParser{}
}

// Descriptor returns the parser's identity and file claims.
func (p *OpfParser) Descriptor() Descriptor {
	return Descriptor{
		Name:       "opf",
		Kind:       domain.SourceOpf,
		Priority:   60,
		Extensions: []string{".opf"},
	}
}

// CanParse reports whether the file has an .opf extension.
func (p *OpfParser) CanParse(path string) bool {
	return p.Descriptor().matches(path)
}

// Parse reads an OPF package from disk.
func (p *OpfParser) Parse(path string) (*domain.ParsedMetadata, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseContent(content, path), nil
}

type opfPackage struct {
	Metadata opfMetadata `xml:"metadata"`
}

type opfMetadata struct {
	Titles      []string        `xml:"title"`
	Creators    []opfCreator    `xml:"creator"`
	Description string          `xml:"description"`
	Publisher   string          `xml:"publisher"`
	Dates       []string        `xml:"date"`
	Languages   []string        `xml:"language"`
	Subjects    []string        `xml:"subject"`
	Identifiers []opfIdentifier `xml:"identifier"`
	Metas       []opfMeta       `xml:"meta"`
}

type opfCreator struct {
	Role string `xml:"role,attr"`
	Name string `xml:",chardata"`
}

type opfIdentifier struct {
	Scheme string `xml:"scheme,attr"`
	Value  string `xml:",chardata"`
}

type opfMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

// ParseContent decodes the package metadata block. Malformed XML yields nil.
func (p *OpfParser) ParseContent(content, sourcePath string) *domain.ParsedMetadata {
	var pkg opfPackage
	if err := xml.Unmarshal([]byte(content), &pkg); err != nil {
		return nil
	}
	md := pkg.Metadata

	rec := domain.NewParsedMetadata(domain.SourceOpf, sourcePath)

	if len(md.Titles) > 0 {
		rec.Title = strings.TrimSpace(md.Titles[0])
	}
	if len(md.Titles) > 1 {
		rec.Subtitle = strings.TrimSpace(md.Titles[1])
	}

	for _, c := range md.Creators {
		// Narrators carry the MARC relator code "nrt"; anyone else is
		// treated as an author.
		if strings.EqualFold(strings.TrimSpace(c.Role), "nrt") {
			rec.AddNarrator(c.Name)
		} else {
			rec.AddAuthor(c.Name)
		}
	}

	rec.Description = cleanDescription(md.Description)
	rec.Publisher = strings.TrimSpace(md.Publisher)

	if len(md.Dates) > 0 {
		date := strings.TrimSpace(md.Dates[0])
		rec.PublishedDate = date
		if m := cueYearPattern.FindStringSubmatch(date); m != nil {
			rec.Year, _ = strconv.Atoi(m[1])
		}
	}
	if len(md.Languages) > 0 {
		rec.Language = normalize.LanguageCode(md.Languages[0])
	}
	for _, s := range md.Subjects {
		rec.AddGenre(s)
	}
	for _, id := range md.Identifiers {
		classifyOpfIdentifier(rec, id)
	}
	for _, m := range md.Metas {
		applyCalibreMeta(rec, m)
	}

	if sourcePath != "" {
		rec.CoverPath = findSiblingCover(filepath.Dir(sourcePath))
	}

	return discard(rec)
}

// classifyOpfIdentifier routes a dc:identifier into a known slot by its
// scheme attribute, falling back to a value heuristic when no scheme is set.
func classifyOpfIdentifier(rec *domain.ParsedMetadata, id opfIdentifier) {
	value := strings.TrimSpace(id.Value)
	if value == "" {
		return
	}
	scheme := strings.ToLower(strings.TrimSpace(id.Scheme))

	if scheme == "" {
		// No scheme: urn:isbn: prefix implies ISBN, a 10-character value
		// starting with B implies an ASIN.
		if strings.HasPrefix(strings.ToLower(value), "urn:isbn:") {
			rec.SetISBN(value[len("urn:isbn:"):])
			return
		}
		if len(value) == 10 && value[0] == 'B' {
			if rec.ASIN == "" {
				rec.ASIN = value
			}
			return
		}
		if isISBNLike(value) {
			rec.SetISBN(value)
		}
		return
	}

	switch scheme {
	case "isbn":
		rec.SetISBN(value)
	case "asin", "amazon", "mobi-asin":
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
	case "google", "googlebooks":
		if rec.GoogleBooksID == "" {
			rec.GoogleBooksID = value
		}
	case "openlibrary":
		if rec.OpenLibraryID == "" {
			rec.OpenLibraryID = value
		}
	default:
		rec.PutIdentifier(scheme, value)
	}
}

// isISBNLike reports whether a value looks like a bare 10- or 13-digit ISBN.
func isISBNLike(value string) bool {
	digits := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, value)
	if len(digits) != 10 && len(digits) != 13 {
		return false
	}
	for i, r := range digits {
		if r >= '0' && r <= '9' {
			continue
		}
		// ISBN-10 check digit may be X.
		if len(digits) == 10 && i == 9 && (r == 'X' || r == 'x') {
			continue
		}
		return false
	}
	return true
}

// applyCalibreMeta folds Calibre's meta extensions into the record.
func applyCalibreMeta(rec *domain.ParsedMetadata, m opfMeta) {
	content := strings.TrimSpace(m.Content)
	if content == "" {
		return
	}
	switch strings.ToLower(strings.TrimSpace(m.Name)) {
	case "calibre:series":
		rec.SeriesName = content
	case "calibre:series_index":
		if f, err := strconv.ParseFloat(content, 64); err == nil {
			rec.SeriesIndex = &f
		}
	case "calibre:rating":
		if f, err := strconv.ParseFloat(content, 64); err == nil {
			rec.CommunityRating = &f
		}
	case "calibre:title_sort":
		rec.SortTitle = content
	}
}

// findSiblingCover returns the first cover image that exists beside the OPF.
func findSiblingCover(dir string) string {
	for _, name := range coverCandidates {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
