package sidecar

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/listenupapp/sidecar/internal/domain"
	"github.com/listenupapp/sidecar/internal/normalize"
)

const ffmetadataHeader = ";ffmetadata1"

// FfmetadataParser parses FFmpeg metadata files (the `ffmpeg -f ffmetadata`
// text format): a fixed header, global key=value pairs, and INI-like
// [CHAPTER] sections with TIMEBASE/START/title keys.
type FfmetadataParser struct{}

// NewFfmetadataParser creates an FFmpeg metadata parser.
func NewFfmetadataParser() *FfmetadataParser {
	return &FfmetadataParser{}
}

// Descriptor returns the parser's identity and file claims.
func (p *FfmetadataParser) Descriptor() Descriptor {
	return Descriptor{
		Name:       "ffmetadata",
		Kind:       domain.SourceFfmetadata,
		Priority:   20,
		Extensions: []string{".ffmeta"},
		Filenames:  []string{"ffmetadata.txt", "ffmetadata", "metadata.txt"},
	}
}

// CanParse reports whether the file is named like an FFmpeg metadata file.
func (p *FfmetadataParser) CanParse(path string) bool {
	return p.Descriptor().matches(path)
}

// Parse reads an FFmpeg metadata file from disk.
func (p *FfmetadataParser) Parse(path string) (*domain.ParsedMetadata, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseContent(content, path), nil
}

// ParseContent rejects anything without the ;FFMETADATA1 header, then walks
// the sections. A chapter is finalized when its section ends (next section
// header or end of input).
func (p *FfmetadataParser) ParseContent(content, sourcePath string) *domain.ParsedMetadata {
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() || !strings.EqualFold(strings.TrimSpace(scanner.Text()), ffmetadataHeader) {
		return nil
	}

	rec := domain.NewParsedMetadata(domain.SourceFfmetadata, sourcePath)

	inChapter := false
	chapterNum := 0
	var pending map[string]string

	finalize := func() {
		if pending != nil {
			chapterNum++
			appendFfChapter(rec, pending, chapterNum)
			pending = nil
		}
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == ';' || trimmed[0] == '#' {
			continue
		}

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			finalize()
			section := strings.ToUpper(trimmed[1 : len(trimmed)-1])
			inChapter = section == "CHAPTER"
			if inChapter {
				pending = make(map[string]string)
			}
			continue
		}

		key, value, ok := splitFfPair(line)
		if !ok {
			continue
		}

		if inChapter {
			pending[strings.ToUpper(key)] = value
			continue
		}
		applyFfGlobal(rec, strings.ToLower(key), value)
	}
	finalize()

	return discard(rec)
}

// appendFfChapter converts an accumulated CHAPTER section into a mark.
// TIMEBASE=num/den makes START*num/den seconds; the default timebase is
// 1/1000 (milliseconds).
func appendFfChapter(rec *domain.ParsedMetadata, pending map[string]string, n int) {
	start, err := strconv.ParseFloat(strings.TrimSpace(pending["START"]), 64)
	if err != nil {
		return
	}

	num, den := 1.0, 1000.0
	if tb, ok := pending["TIMEBASE"]; ok {
		parts := strings.SplitN(tb, "/", 2)
		if len(parts) == 2 {
			tbNum, errN := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
			tbDen, errD := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
			if errN == nil && errD == nil && tbNum > 0 && tbDen > 0 {
				num, den = tbNum, tbDen
			}
		}
	}

	name := strings.TrimSpace(pending["TITLE"])
	if name == "" {
		name = fmt.Sprintf("Chapter %d", n)
	}

	rec.Chapters = append(rec.Chapters, domain.ChapterMark{
		Name:  name,
		Start: domain.TicksFromSeconds(start * num / den),
	})
}

// applyFfGlobal maps a pre-section key onto the record.
func applyFfGlobal(rec *domain.ParsedMetadata, key, value string) {
	if value == "" {
		return
	}
	switch key {
	case "title":
		rec.Title = value
	case "artist", "album_artist":
		rec.AddAuthor(value)
	case "composer":
		rec.AddNarrator(value)
	case "genre":
		rec.AddGenre(value)
	case "date":
		if year, err := strconv.Atoi(value); err == nil {
			rec.Year = year
		} else {
			rec.PublishedDate = value
			if m := cueYearPattern.FindStringSubmatch(value); m != nil {
				rec.Year, _ = strconv.Atoi(m[1])
			}
		}
	case "publisher":
		rec.Publisher = value
	case "description":
		rec.Description = value
	case "comment":
		if rec.Description == "" {
			rec.Description = value
		}
	case "language":
		rec.Language = normalize.LanguageCode(value)
	}
}

// splitFfPair splits a key=value line on the first unescaped '=' and
// unescapes both sides.
func splitFfPair(line string) (key, value string, ok bool) {
	escaped := false
	for i := 0; i < len(line); i++ {
		if escaped {
			escaped = false
			continue
		}
		switch line[i] {
		case '\\':
			escaped = true
		case '=':
			return strings.TrimSpace(ffUnescape(line[:i])), strings.TrimSpace(ffUnescape(line[i+1:])), true
		}
	}
	return "", "", false
}

// ffUnescape applies the format's escape sequences: \= \; \# \\ and \n.
func ffUnescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		i++
		if s[i] == 'n' {
			b.WriteByte('\n')
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
