// Package sidecar implements parsers for the metadata files stored beside
// audiobook audio: cue sheets, OPF packages, JSON metadata in several
// dialects, Kodi-style NFO files, FFmpeg metadata text, and plain text
// conventions like chapters.txt and reader.txt.
//
// Every parser is defensive: malformed or partial content degrades to
// omitted fields or no record at all, never to an error. Only I/O failures
// are reported as errors.
package sidecar

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/listenupapp/sidecar/internal/domain"
	"github.com/listenupapp/sidecar/internal/errors"
)

// Descriptor describes a parser's identity and the files it claims.
// Priority is the default ordering only; the merge order used during
// aggregation comes from configuration.
type Descriptor struct {
	Name       string
	Kind       domain.SourceKind
	Priority   int
	Extensions []string
	Filenames  []string
}

// Parser is the capability contract every sidecar format implements.
type Parser interface {
	// Descriptor returns the parser's identity and file claims.
	Descriptor() Descriptor

	// CanParse reports whether the parser claims the file. It is a pure
	// function of the path's extension and/or exact filename; it never
	// touches the filesystem.
	CanParse(path string) bool

	// Parse reads the file and delegates to ParseContent. It fails only
	// on I/O; malformed content yields (nil, nil).
	Parse(path string) (*domain.ParsedMetadata, error)

	// ParseContent parses raw content. sourcePath is advisory (used for
	// sibling lookups like cover art) and may be empty. Returns nil when
	// the content is malformed or yields no usable field.
	ParseContent(content, sourcePath string) *domain.ParsedMetadata
}

// Registry returns the fixed set of sidecar parsers in default priority
// order (most authoritative first). The set is closed; there is no runtime
// plugin discovery.
func Registry() []Parser {
	return []Parser{
		NewOpfParser(),
		NewJSONParser(),
		NewNfoParser(),
		NewCueParser(),
		NewFfmetadataParser(),
		NewTextParser(),
	}
}

// matches implements the shared CanParse logic: extension match or exact
// filename match, both case-insensitive.
func (d Descriptor) matches(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, name := range d.Filenames {
		if base == name {
			return true
		}
	}
	ext := filepath.Ext(base)
	for _, e := range d.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// readFile reads a candidate file, wrapping failures as unreadable-file
// errors so the aggregator can skip the candidate and keep going.
func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Unreadable(err, path)
	}
	return string(data), nil
}

// discard returns rec unless it carries no usable content, in which case a
// structurally-valid-but-empty parse collapses to no record.
func discard(rec *domain.ParsedMetadata) *domain.ParsedMetadata {
	if rec == nil || !rec.HasContent() {
		return nil
	}
	return rec
}
