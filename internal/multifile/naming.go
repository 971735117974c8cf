package multifile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/listenupapp/sidecar/internal/domain"
)

// NamingStrategy selects how synthesized chapters are named.
type NamingStrategy string

// Naming strategies.
const (
	// StrategyFilename names chapters after the cleaned filename.
	StrategyFilename NamingStrategy = "filename"
	// StrategyMetadataTitle prefers the title fragment parsed from the
	// filename, falling back to the cleaned filename.
	StrategyMetadataTitle NamingStrategy = "metadata_title"
	// StrategySequential numbers chapters "Chapter 1", "Chapter 2", ...
	StrategySequential NamingStrategy = "sequential"
	// StrategyPattern strips known numbering prefixes, like
	// StrategyFilename.
	StrategyPattern NamingStrategy = "pattern"
)

// ParseStrategy maps a configuration string to a strategy, defaulting to
// StrategyFilename.
func ParseStrategy(s string) NamingStrategy {
	switch NamingStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyMetadataTitle:
		return StrategyMetadataTitle
	case StrategySequential:
		return StrategySequential
	case StrategyPattern:
		return StrategyPattern
	default:
		return StrategyFilename
	}
}

// Valid reports whether s is a known strategy.
func (s NamingStrategy) Valid() bool {
	switch s {
	case StrategyFilename, StrategyMetadataTitle, StrategySequential, StrategyPattern:
		return true
	}
	return false
}

// namePattern is one recognized filename numbering convention.
type namePattern struct {
	re       *regexp.Regexp
	discWise bool
}

// namePatterns are tried in priority order. The first match wins.
var namePatterns = []namePattern{
	// "Disc 1 - 01 - Title", "CD2-03 Title"
	{re: regexp.MustCompile(`(?i)^(?:disc|disk|cd)\s*(\d+)\s*[-_. ]+\s*(\d+)(?:\s*[-_. ]+\s*(.*))?$`), discWise: true},
	// "Chapter 01 - Title", "Chapter 1"
	{re: regexp.MustCompile(`(?i)^chapter\s*(\d+)(?:\s*[-_.: ]+\s*(.*))?$`)},
	// "Part 1 - Title"
	{re: regexp.MustCompile(`(?i)^part\s*(\d+)(?:\s*[-_. ]+\s*(.*))?$`)},
	// "Track 01"
	{re: regexp.MustCompile(`(?i)^track\s*(\d+)(?:\s*[-_. ]+\s*(.*))?$`)},
	// "01 - Title", "01. Title"
	{re: regexp.MustCompile(`^(\d+)\s*[-._]+\s*(.+)$`)},
	// "1 Title"
	{re: regexp.MustCompile(`^(\d+)\s+(.+)$`)},
}

// parseName extracts a track number and title fragment from a filename
// (extension already stripped). Disc-numbered names fold the disc into the
// track as disc*1000+track so one integer sorts across discs.
func parseName(name string) (track int, title string, ok bool) {
	name = strings.TrimSpace(name)
	for _, p := range namePatterns {
		m := p.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if p.discWise {
			disc, _ := strconv.Atoi(m[1])
			num, _ := strconv.Atoi(m[2])
			return disc*1000 + num, strings.TrimSpace(m[3]), true
		}
		num, _ := strconv.Atoi(m[1])
		fragment := ""
		if len(m) > 2 {
			fragment = strings.TrimSpace(m[2])
		}
		return num, fragment, true
	}
	return 0, "", false
}

// cleanName strips leading numbering and known prefixes from a filename
// (extension already stripped). Names that are nothing but numbering are
// returned unchanged.
func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if _, title, ok := parseName(name); ok && title != "" {
		return title
	}
	return name
}

// chapterName names one synthesized chapter per the configured strategy.
func chapterName(file domain.AudiobookFile, index int, strategy NamingStrategy) string {
	switch strategy {
	case StrategySequential:
		return fmt.Sprintf("Chapter %d", index+1)
	case StrategyMetadataTitle:
		if file.Title != "" {
			return file.Title
		}
	}
	return cleanName(stripExt(file.Name))
}

// genericNamePatterns matches placeholder chapter names, used only for a
// diagnostic log after synthesis.
var genericNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^chapter\s*\d+$`),
	regexp.MustCompile(`(?i)^track\s*\d+$`),
	regexp.MustCompile(`(?i)^part\s*\d+$`),
	regexp.MustCompile(`^\d+$`),
}

// isGenericName returns true if the chapter name is a placeholder.
func isGenericName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return true
	}
	for _, pattern := range genericNamePatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}
