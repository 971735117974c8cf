// Package multifile detects directories where each chapter is a separate
// audio file and synthesizes a metadata record with computed chapters.
package multifile

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/listenupapp/sidecar/internal/domain"
	"github.com/listenupapp/sidecar/internal/duration"
	"github.com/listenupapp/sidecar/internal/normalize"
)

// matchThreshold is the fraction of audio files that must follow a numbering
// convention before a directory counts as a chapter-per-file audiobook.
// The comparison is non-strict: 7 of 10 passes.
const matchThreshold = 0.7

// audioExtensions is the fixed allowlist of audio file extensions.
var audioExtensions = map[string]bool{
	".mp3": true, ".m4a": true, ".m4b": true, ".flac": true, ".ogg": true,
	".opus": true, ".wma": true, ".aac": true, ".wav": true, ".aiff": true,
}

// Detector classifies directories and synthesizes chapters from file
// boundaries. File durations come from the injected duration source.
type Detector struct {
	logger    *slog.Logger
	durations duration.Source
}

// NewDetector creates a detector.
func NewDetector(logger *slog.Logger, durations duration.Source) *Detector {
	return &Detector{logger: logger, durations: durations}
}

// IsMultiFile reports whether the directory looks like a chapter-per-file
// audiobook: at least 2 audio files, at least 70% of them following a
// recognized numbering convention.
func (d *Detector) IsMultiFile(dir string) bool {
	names, err := listAudioFiles(dir)
	if err != nil {
		d.logger.Warn("failed to list directory", "dir", dir, "error", err)
		return false
	}
	return isMultiFile(names)
}

func isMultiFile(names []string) bool {
	if len(names) < 2 {
		return false
	}
	matching := 0
	for _, name := range names {
		if _, _, ok := parseName(stripExt(name)); ok {
			matching++
		}
	}
	return float64(matching) >= float64(len(names))*matchThreshold
}

// OrderFiles parses every audio filename for a track number and title
// fragment and returns the files in playback order: track ascending, files
// without a number last, ties broken by case-insensitive filename.
func (d *Detector) OrderFiles(dir string) ([]domain.AudiobookFile, error) {
	names, err := listAudioFiles(dir)
	if err != nil {
		return nil, err
	}
	return orderFiles(dir, names), nil
}

func orderFiles(dir string, names []string) []domain.AudiobookFile {
	files := make([]domain.AudiobookFile, 0, len(names))
	for _, name := range names {
		track, title, ok := parseName(stripExt(name))
		files = append(files, domain.AudiobookFile{
			Path:     filepath.Join(dir, name),
			Name:     name,
			Track:    track,
			HasTrack: ok,
			Title:    title,
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if a.HasTrack != b.HasTrack {
			return a.HasTrack
		}
		if a.HasTrack && a.Track != b.Track {
			return a.Track < b.Track
		}
		return normalize.FoldKey(a.Name) < normalize.FoldKey(b.Name)
	})

	for i := range files {
		files[i].SortOrder = i
	}
	return files
}

// SynthesizeChapters walks the ordered files accumulating a running start
// time; each file's duration advances the start of the next chapter. A file
// whose duration cannot be determined contributes zero and is logged.
func (d *Detector) SynthesizeChapters(ctx context.Context, files []domain.AudiobookFile, strategy NamingStrategy) ([]domain.ChapterMark, error) {
	marks := make([]domain.ChapterMark, 0, len(files))
	var start int64

	for i := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dur, err := d.durations.Duration(ctx, files[i].Path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			d.logger.Warn("duration lookup failed", "path", files[i].Path, "error", err)
			dur = 0
		}

		files[i].Start = start
		files[i].Duration = domain.TicksFromDuration(dur)

		marks = append(marks, domain.ChapterMark{
			Name:  chapterName(files[i], i, strategy),
			Start: start,
		})
		start += files[i].Duration
	}

	return marks, nil
}

// BuildRecord classifies the directory and, when it qualifies, returns a
// record with synthesized chapters and the directory name as a fallback
// title. A directory that does not qualify yields (nil, nil).
func (d *Detector) BuildRecord(ctx context.Context, dir string, strategy NamingStrategy) (*domain.ParsedMetadata, error) {
	names, err := listAudioFiles(dir)
	if err != nil {
		d.logger.Warn("failed to list directory", "dir", dir, "error", err)
		return nil, nil
	}
	if len(names) == 0 || !isMultiFile(names) {
		return nil, nil
	}

	files := orderFiles(dir, names)
	chapters, err := d.SynthesizeChapters(ctx, files, strategy)
	if err != nil {
		return nil, err
	}

	rec := domain.NewParsedMetadata(domain.SourceMultiFile, dir)
	rec.Title = filepath.Base(dir)
	rec.Chapters = chapters
	for _, f := range files {
		rec.Duration += f.Duration
	}

	if generic := countGeneric(chapters); generic*2 > len(chapters) {
		d.logger.Debug("synthesized chapter names are mostly placeholders",
			"dir", dir, "generic", generic, "total", len(chapters))
	}

	return rec, nil
}

func countGeneric(chapters []domain.ChapterMark) int {
	n := 0
	for _, ch := range chapters {
		if isGenericName(ch.Name) {
			n++
		}
	}
	return n
}

// listAudioFiles returns the audio filenames directly inside dir, skipping
// subdirectories and hidden files.
func listAudioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if audioExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
