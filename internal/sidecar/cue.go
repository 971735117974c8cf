package sidecar

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/listenupapp/sidecar/internal/domain"
)

var (
	cueTrackPattern = regexp.MustCompile(`(?i)^(\d+)\s+AUDIO\b`)
	cueIndexPattern = regexp.MustCompile(`^01\s+(\d+):(\d{2}):(\d{2})$`)
	cueYearPattern  = regexp.MustCompile(`\b(\d{4})\b`)
)

// CueParser parses cue sheets. Album-level directives populate the
// descriptive fields; each TRACK's INDEX 01 becomes a chapter mark.
type CueParser struct{}

// NewCueParser creates a cue sheet parser.
func NewCueParser() *CueParser {
	return &CueParser{}
}

// Descriptor returns the parser's identity and file claims.
func (p *CueParser) Descriptor() Descriptor {
	return Descriptor{
		Name:       "cue",
		Kind:       domain.SourceCue,
		Priority:   30,
		Extensions: []string{".cue"},
	}
}

// CanParse reports whether the file has a .cue extension.
func (p *CueParser) CanParse(path string) bool {
	return p.Descriptor().matches(path)
}

// Parse reads a cue sheet from disk.
func (p *CueParser) Parse(path string) (*domain.ParsedMetadata, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseContent(content, path), nil
}

// ParseContent runs the two-state line machine over the sheet. Album state
// lasts until the first `TRACK nn AUDIO` line; each further TRACK line
// starts the next track implicitly.
func (p *CueParser) ParseContent(content, sourcePath string) *domain.ParsedMetadata {
	rec := domain.NewParsedMetadata(domain.SourceCue, sourcePath)

	inTrack := false
	trackNum := 0
	pendingTitle := ""

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		directive, rest := splitDirective(line)
		switch strings.ToUpper(directive) {
		case "TRACK":
			if cueTrackPattern.MatchString(rest) {
				inTrack = true
				trackNum++
				pendingTitle = ""
			}

		case "TITLE":
			if inTrack {
				pendingTitle = cueUnquote(rest)
			} else {
				rec.Title = cueUnquote(rest)
			}

		case "PERFORMER":
			if !inTrack {
				rec.AddAuthor(cueUnquote(rest))
			}

		case "SONGWRITER":
			if !inTrack {
				rec.AddNarrator(cueUnquote(rest))
			}

		case "REM":
			if inTrack {
				continue
			}
			key, value := splitDirective(rest)
			switch strings.ToUpper(key) {
			case "GENRE":
				rec.AddGenre(cueUnquote(value))
			case "DATE":
				if m := cueYearPattern.FindStringSubmatch(cueUnquote(value)); m != nil {
					rec.Year, _ = strconv.Atoi(m[1])
				}
			case "COMMENT":
				rec.Description = cueUnquote(value)
			}

		case "INDEX":
			if !inTrack {
				continue
			}
			m := cueIndexPattern.FindStringSubmatch(rest)
			if m == nil {
				continue
			}
			minutes, _ := strconv.Atoi(m[1])
			seconds, _ := strconv.Atoi(m[2])
			frames, _ := strconv.Atoi(m[3])
			// CUE frames are 1/75 of a second, not hundredths.
			start := float64(minutes*60+seconds) + float64(frames)/75.0

			name := pendingTitle
			if name == "" {
				name = fmt.Sprintf("Chapter %d", trackNum)
			}
			rec.Chapters = append(rec.Chapters, domain.ChapterMark{
				Name:  name,
				Start: domain.TicksFromSeconds(start),
			})
		}
	}

	return discard(rec)
}

// splitDirective splits a line into its first word and the remainder.
func splitDirective(line string) (string, string) {
	line = strings.TrimSpace(line)
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		return line[:i], strings.TrimSpace(line[i+1:])
	}
	return line, ""
}

// cueUnquote strips surrounding double quotes from a directive value.
func cueUnquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}
