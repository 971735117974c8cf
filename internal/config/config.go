// Package config holds the extraction configuration. Configuration is
// passed explicitly into every collection call so tests can run varied
// configs in parallel; there is no process-wide state.
package config

import (
	"os"
	"strings"

	"github.com/listenupapp/sidecar/internal/domain"
	"github.com/listenupapp/sidecar/internal/errors"
	"github.com/listenupapp/sidecar/internal/multifile"
)

// DefaultPriority is the default merge order, most authoritative first.
const DefaultPriority = "opf,json,nfo,cue,ffmetadata,txt"

// Extraction configures one metadata collection pass.
type Extraction struct {
	EnableCue        bool
	EnableOpf        bool
	EnableJSON       bool
	EnableNfo        bool
	EnableFfmetadata bool
	EnableText       bool
	EnableMultiFile  bool

	// NamingStrategy selects chapter names for multi-file audiobooks.
	NamingStrategy multifile.NamingStrategy

	// Priority is the merge order by source kind, most authoritative
	// first. Kinds not listed sort after all listed ones.
	Priority []domain.SourceKind
}

// Default returns the default configuration: every parser enabled, filename
// chapter naming, and the standard priority order.
func Default() Extraction {
	return Extraction{
		EnableCue:        true,
		EnableOpf:        true,
		EnableJSON:       true,
		EnableNfo:        true,
		EnableFfmetadata: true,
		EnableText:       true,
		EnableMultiFile:  true,
		NamingStrategy:   multifile.StrategyFilename,
		Priority:         ParsePriority(DefaultPriority),
	}
}

// ParsePriority splits a comma-separated priority list into source kinds.
// Entries are trimmed and lowercased; blanks are dropped. Unknown tags are
// kept so forward-compatible configs do not fail, they simply never match.
func ParsePriority(csv string) []domain.SourceKind {
	var kinds []domain.SourceKind
	for _, part := range strings.Split(csv, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			kinds = append(kinds, domain.SourceKind(part))
		}
	}
	return kinds
}

// Enabled reports whether the parser kind is switched on. The mapping is
// static by kind tag; the aggregator never inspects parser types.
func (e Extraction) Enabled(kind domain.SourceKind) bool {
	switch kind {
	case domain.SourceCue:
		return e.EnableCue
	case domain.SourceOpf:
		return e.EnableOpf
	case domain.SourceJSON:
		return e.EnableJSON
	case domain.SourceNfo:
		return e.EnableNfo
	case domain.SourceFfmetadata:
		return e.EnableFfmetadata
	case domain.SourceText:
		return e.EnableText
	case domain.SourceMultiFile:
		return e.EnableMultiFile
	default:
		return false
	}
}

// Validate checks that the configuration is usable.
func (e Extraction) Validate() error {
	if !e.NamingStrategy.Valid() {
		return errors.InvalidConfigf("unknown naming strategy %q", e.NamingStrategy)
	}
	if len(e.Priority) == 0 {
		return errors.InvalidConfigf("priority order must not be empty")
	}
	return nil
}

// Value returns the first non-empty value from flag, env var, or default,
// in that order.
func Value(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// BoolValue returns a bool from flag, env var, or default.
// Accepts "true", "1", "yes" (case-insensitive) as true.
func BoolValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := Value(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}
