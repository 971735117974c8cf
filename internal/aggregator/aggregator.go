// Package aggregator orchestrates sidecar metadata extraction for one
// library item: it discovers candidate files, parses them concurrently,
// optionally runs multi-file detection, and merges everything into one
// record using the configured priority order.
package aggregator

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/listenupapp/sidecar/internal/config"
	"github.com/listenupapp/sidecar/internal/domain"
	"github.com/listenupapp/sidecar/internal/duration"
	"github.com/listenupapp/sidecar/internal/errors"
	"github.com/listenupapp/sidecar/internal/multifile"
	"github.com/listenupapp/sidecar/internal/sidecar"
)

// Candidate pairs a discovered file with the parser that claimed it.
type Candidate struct {
	Parser sidecar.Parser
	Path   string
}

// Aggregator runs the extraction pipeline. It is safe for concurrent use;
// collections share no mutable state.
type Aggregator struct {
	logger   *slog.Logger
	registry []sidecar.Parser
	detector *multifile.Detector
}

// New creates an aggregator with the full parser registry and a multi-file
// detector backed by the given duration source.
func New(logger *slog.Logger, durations duration.Source) *Aggregator {
	return &Aggregator{
		logger:   logger,
		registry: sidecar.Registry(),
		detector: multifile.NewDetector(logger, durations),
	}
}

// FindCandidates lists the directory once and pairs every file with each
// enabled parser that claims it.
func (a *Aggregator) FindCandidates(dir string, cfg config.Extraction) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Unreadable(err, dir)
	}

	var candidates []Candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, parser := range a.registry {
			if !cfg.Enabled(parser.Descriptor().Kind) {
				continue
			}
			if parser.CanParse(entry.Name()) {
				candidates = append(candidates, Candidate{
					Parser: parser,
					Path:   filepath.Join(dir, entry.Name()),
				})
			}
		}
	}
	return candidates, nil
}

// Collect extracts metadata for one item. A file path resolves to its
// containing directory; a directory is used as-is. The result is nil when
// no source produced usable content. One parser's failure never aborts the
// others; only cancellation aborts the collection, and a canceled
// collection yields no result at all.
func (a *Aggregator) Collect(ctx context.Context, itemPath string, cfg config.Extraction) (*domain.ParsedMetadata, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(itemPath)
	if err != nil {
		return nil, errors.NotFoundf("item path %s: %v", itemPath, err)
	}
	dir := itemPath
	if !info.IsDir() {
		dir = filepath.Dir(itemPath)
	}

	candidates, err := a.FindCandidates(dir, cfg)
	if err != nil {
		return nil, err
	}

	// Parse candidates in parallel. Each invocation reads one file and
	// returns an independent value, so no locking is needed; the indexed
	// results slice keeps discovery order for the later stable sort.
	results := make([]*domain.ParsedMetadata, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			rec, err := c.Parser.Parse(c.Path)
			if err != nil {
				// Unreadable file: skip this candidate, keep going.
				a.logger.Warn("sidecar parse failed",
					"parser", c.Parser.Descriptor().Name,
					"path", c.Path,
					"error", err)
				return nil
			}
			if rec == nil || !rec.HasContent() {
				return nil
			}

			a.logger.Debug("parsed sidecar",
				"parser", c.Parser.Descriptor().Name,
				"path", c.Path,
				"chapters", len(rec.Chapters))
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Canceled(err)
	}

	records := make([]*domain.ParsedMetadata, 0, len(results)+1)
	for _, rec := range results {
		if rec != nil {
			records = append(records, rec)
		}
	}

	if cfg.EnableMultiFile {
		rec, err := a.detector.BuildRecord(ctx, dir, cfg.NamingStrategy)
		if err != nil {
			return nil, errors.Canceled(err)
		}
		if rec != nil {
			a.logger.Debug("detected multi-file audiobook",
				"dir", dir, "chapters", len(rec.Chapters))
			records = append(records, rec)
		}
	}

	switch len(records) {
	case 0:
		return nil, nil
	case 1:
		// Single source passes through unchanged, kind included.
		return records[0], nil
	default:
		return Merge(records, cfg.Priority), nil
	}
}
