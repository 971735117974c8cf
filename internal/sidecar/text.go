package sidecar

import (
	"bufio"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/listenupapp/sidecar/internal/domain"
	"github.com/listenupapp/sidecar/internal/normalize"
)

var (
	// H:MM:SS with optional fraction, optionally bracketed: "1:02:03.500 Title".
	textLongStamp = regexp.MustCompile(`^\[?(\d+):(\d{2}):(\d{2})(?:\.(\d{1,3}))?\]?\s+(.*)$`)
	// M:SS, optionally bracketed: "4:30 Title".
	textShortStamp = regexp.MustCompile(`^\[?(\d+):(\d{2})\]?\s+(.*)$`)
	// H:MM:SS duration literal fallback for info.txt.
	textClockDuration = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})$`)
)

// TextParser parses the plain-text sidecar conventions. Dispatch is by exact
// filename (case-insensitive), not content sniffing:
//
//	chapters.txt              timestamped chapter list
//	reader.txt, narrator.txt  one narrator per line
//	desc.txt, description.txt, about.txt
//	                          whole file is the description
//	info.txt, book.txt        "Key: Value" lines
type TextParser struct{}

// NewTextParser creates a plain-text sidecar parser.
func NewTextParser() *TextParser {
	return &TextParser{}
}

// Descriptor returns the parser's identity and file claims.
func (p *TextParser) Descriptor() Descriptor {
	return Descriptor{
		Name:     "text",
		Kind:     domain.SourceText,
		Priority: 10,
		Filenames: []string{
			"chapters.txt",
			"reader.txt", "narrator.txt",
			"desc.txt", "description.txt", "about.txt",
			"info.txt", "book.txt",
		},
	}
}

// CanParse reports whether the filename is one of the known conventions.
func (p *TextParser) CanParse(path string) bool {
	return p.Descriptor().matches(path)
}

// Parse reads a text sidecar from disk.
func (p *TextParser) Parse(path string) (*domain.ParsedMetadata, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseContent(content, path), nil
}

// ParseContent dispatches on the source filename. With no source path there
// is nothing to dispatch on, so no record is produced.
func (p *TextParser) ParseContent(content, sourcePath string) *domain.ParsedMetadata {
	switch strings.ToLower(filepath.Base(sourcePath)) {
	case "chapters.txt":
		return discard(parseChaptersText(content, sourcePath))
	case "reader.txt", "narrator.txt":
		return discard(parseNarratorsText(content, sourcePath))
	case "desc.txt", "description.txt", "about.txt":
		return discard(parseDescriptionText(content, sourcePath))
	case "info.txt", "book.txt":
		return discard(parseInfoText(content, sourcePath))
	default:
		return nil
	}
}

// parseChaptersText parses one chapter per line, trying the long timestamp
// grammar before the short one. Lines matching neither are skipped.
func parseChaptersText(content, sourcePath string) *domain.ParsedMetadata {
	rec := domain.NewParsedMetadata(domain.SourceText, sourcePath)

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var seconds float64
		var title string

		if m := textLongStamp.FindStringSubmatch(line); m != nil {
			hours, _ := strconv.Atoi(m[1])
			minutes, _ := strconv.Atoi(m[2])
			secs, _ := strconv.Atoi(m[3])
			seconds = float64(hours*3600 + minutes*60 + secs)
			if m[4] != "" {
				frac, _ := strconv.ParseFloat("0."+m[4], 64)
				seconds += frac
			}
			title = strings.TrimSpace(m[5])
		} else if m := textShortStamp.FindStringSubmatch(line); m != nil {
			minutes, _ := strconv.Atoi(m[1])
			secs, _ := strconv.Atoi(m[2])
			seconds = float64(minutes*60 + secs)
			title = strings.TrimSpace(m[3])
		} else {
			continue
		}

		if title == "" {
			title = fmt.Sprintf("Chapter %d", len(rec.Chapters)+1)
		}
		rec.Chapters = append(rec.Chapters, domain.ChapterMark{
			Name:  title,
			Start: domain.TicksFromSeconds(seconds),
		})
	}

	return rec
}

// parseNarratorsText treats every non-empty line as one narrator name.
func parseNarratorsText(content, sourcePath string) *domain.ParsedMetadata {
	rec := domain.NewParsedMetadata(domain.SourceText, sourcePath)
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		rec.AddNarrator(scanner.Text())
	}
	return rec
}

// parseDescriptionText treats the entire trimmed file as the description.
func parseDescriptionText(content, sourcePath string) *domain.ParsedMetadata {
	rec := domain.NewParsedMetadata(domain.SourceText, sourcePath)
	rec.Description = strings.TrimSpace(content)
	return rec
}

// parseInfoText parses "Key: Value" lines. A description key switches into
// accumulation mode: everything after it is the description, verbatim.
func parseInfoText(content, sourcePath string) *domain.ParsedMetadata {
	rec := domain.NewParsedMetadata(domain.SourceText, sourcePath)

	var desc []string
	inDescription := false

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()

		if inDescription {
			desc = append(desc, line)
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "title":
			rec.Title = value
		case "subtitle":
			rec.Subtitle = value
		case "author", "writer":
			rec.AddAuthor(value)
		case "narrator", "reader":
			rec.AddNarrator(value)
		case "publisher":
			rec.Publisher = value
		case "year":
			if y, err := strconv.Atoi(value); err == nil {
				rec.Year = y
			}
		case "date":
			rec.PublishedDate = value
		case "genre":
			for _, g := range strings.Split(value, ",") {
				rec.AddGenre(g)
			}
		case "series":
			rec.SeriesName = value
		case "duration":
			rec.Duration = parseDurationLiteral(value)
		case "language":
			rec.Language = normalize.LanguageCode(value)
		case "isbn":
			rec.SetISBN(value)
		case "asin":
			if rec.ASIN == "" {
				rec.ASIN = value
			}
		case "abridged":
			abridged := strings.EqualFold(value, "yes") || strings.EqualFold(value, "true")
			rec.Abridged = &abridged
		case "description":
			inDescription = true
			if value != "" {
				desc = append(desc, value)
			}
		}
	}

	if len(desc) > 0 {
		rec.Description = strings.TrimSpace(strings.Join(desc, "\n"))
	}

	return rec
}

// parseDurationLiteral accepts Go duration literals ("11h22m") and clock
// notation ("11:22:33"), returning canonical ticks or 0.
func parseDurationLiteral(value string) int64 {
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return domain.TicksFromDuration(d)
	}
	if m := textClockDuration.FindStringSubmatch(value); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		seconds, _ := strconv.Atoi(m[3])
		return domain.TicksFromDuration(time.Duration(hours*3600+minutes*60+seconds) * time.Second)
	}
	return 0
}
