// Package duration provides the audio-duration lookup the multi-file
// detector depends on. Decoding audio is outside the extraction core, so
// the capability is an interface with an audiometa-backed default.
package duration

import (
	"context"
	"log/slog"
	"time"

	"github.com/simonhull/audiometa"
)

// Source yields the playback duration of one audio file.
type Source interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, path string) (time.Duration, error)

// Duration calls f.
func (f SourceFunc) Duration(ctx context.Context, path string) (time.Duration, error) {
	return f(ctx, path)
}

// Probe reads durations from audio file headers via audiometa.
type Probe struct {
	logger *slog.Logger
}

// NewProbe creates an audiometa-backed duration source.
func NewProbe(logger *slog.Logger) *Probe {
	return &Probe{logger: logger}
}

// Duration opens the file lazily and reads its technical properties.
// Unsupported or corrupt files report a zero duration with no error, so one
// bad file never sinks a whole detection pass.
func (p *Probe) Duration(ctx context.Context, path string) (time.Duration, error) {
	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		p.logger.Warn("failed to probe audio duration", "path", path, "error", err)
		return 0, nil
	}
	defer file.Close()

	return file.Audio.Duration, nil
}
