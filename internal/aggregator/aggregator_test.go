package aggregator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/listenupapp/sidecar/internal/config"
	"github.com/listenupapp/sidecar/internal/domain"
	"github.com/listenupapp/sidecar/internal/duration"
	"github.com/listenupapp/sidecar/internal/errors"
	"github.com/listenupapp/sidecar/internal/logger"
)

func testAggregator() *Aggregator {
	source := duration.SourceFunc(func(_ context.Context, _ string) (time.Duration, error) {
		return 10 * time.Minute, nil
	})
	return New(logger.Discard().Logger, source)
}

func writeSidecar(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const testOpf = `<package xmlns:dc="http://purl.org/dc/elements/1.1/"><metadata>
<dc:title>OPF Title</dc:title>
<dc:creator>OPF Author</dc:creator>
</metadata></package>`

const testCue = `TITLE "Cue Title"
PERFORMER "Cue Author"
TRACK 01 AUDIO
  TITLE "Intro"
  INDEX 01 00:00:00
TRACK 02 AUDIO
  TITLE "Middle"
  INDEX 01 10:00:00
`

func TestFindCandidates(t *testing.T) {
	dir := t.TempDir()
	writeSidecar(t, dir, "metadata.opf", testOpf)
	writeSidecar(t, dir, "book.cue", testCue)
	writeSidecar(t, dir, "reader.txt", "A Narrator\n")
	writeSidecar(t, dir, "audio.mp3", "not metadata")

	candidates, err := testAggregator().FindCandidates(dir, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 3 {
		t.Fatalf("got %d candidates: %+v", len(candidates), candidates)
	}

	// Disabling a parser removes its candidates.
	cfg := config.Default()
	cfg.EnableCue = false
	candidates, err = testAggregator().FindCandidates(dir, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range candidates {
		if c.Parser.Descriptor().Kind == domain.SourceCue {
			t.Error("disabled cue parser still claimed a file")
		}
	}
}

func TestCollectMergesByPriority(t *testing.T) {
	dir := t.TempDir()
	writeSidecar(t, dir, "metadata.opf", testOpf)
	writeSidecar(t, dir, "book.cue", testCue)
	writeSidecar(t, dir, "reader.txt", "A Narrator\n")

	cfg := config.Default()
	cfg.EnableMultiFile = false

	rec, err := testAggregator().Collect(context.Background(), dir, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("expected a record")
	}

	if rec.Kind != domain.SourceMerged {
		t.Errorf("kind = %q", rec.Kind)
	}
	if rec.Title != "OPF Title" {
		t.Errorf("title = %q, want the OPF to win", rec.Title)
	}
	if len(rec.Authors) != 2 {
		t.Errorf("authors = %v", rec.Authors)
	}
	if len(rec.Narrators) != 1 || rec.Narrators[0] != "A Narrator" {
		t.Errorf("narrators = %v", rec.Narrators)
	}
	// Only the cue sheet had chapters.
	if len(rec.Chapters) != 2 {
		t.Errorf("chapters = %v", rec.Chapters)
	}
}

func TestCollectSingleSourcePassthrough(t *testing.T) {
	dir := t.TempDir()
	writeSidecar(t, dir, "book.cue", testCue)

	cfg := config.Default()
	cfg.EnableMultiFile = false

	rec, err := testAggregator().Collect(context.Background(), dir, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("expected a record")
	}
	// One source passes through unchanged, original kind included.
	if rec.Kind != domain.SourceCue {
		t.Errorf("kind = %q, want cue", rec.Kind)
	}
}

func TestCollectFilePathUsesParentDir(t *testing.T) {
	dir := t.TempDir()
	writeSidecar(t, dir, "metadata.opf", testOpf)
	writeSidecar(t, dir, "audio.m4b", "audio bytes")

	cfg := config.Default()
	cfg.EnableMultiFile = false

	rec, err := testAggregator().Collect(context.Background(), filepath.Join(dir, "audio.m4b"), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.Title != "OPF Title" {
		t.Errorf("sibling sidecar not found from file path: %+v", rec)
	}
}

func TestCollectWithMultiFile(t *testing.T) {
	dir := t.TempDir()
	writeSidecar(t, dir, "metadata.opf", testOpf)
	for _, name := range []string{"01 - One.mp3", "02 - Two.mp3", "03 - Three.mp3"} {
		writeSidecar(t, dir, name, "audio")
	}

	rec, err := testAggregator().Collect(context.Background(), dir, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Title != "OPF Title" {
		t.Errorf("title = %q", rec.Title)
	}
	// Chapters synthesized from file boundaries, 10 minutes apart.
	if len(rec.Chapters) != 3 {
		t.Fatalf("chapters = %v", rec.Chapters)
	}
	if rec.Chapters[1].Start != domain.TicksFromDuration(10*time.Minute) {
		t.Errorf("chapter 2 start = %d", rec.Chapters[1].Start)
	}
}

func TestCollectNoSources(t *testing.T) {
	dir := t.TempDir()
	writeSidecar(t, dir, "audio.m4b", "audio bytes")

	rec, err := testAggregator().Collect(context.Background(), dir, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if rec != nil {
		t.Errorf("expected no record, got %+v", rec)
	}
}

func TestCollectMalformedSidecarSkipped(t *testing.T) {
	dir := t.TempDir()
	writeSidecar(t, dir, "meta.json", "{definitely not json")
	writeSidecar(t, dir, "book.cue", testCue)

	cfg := config.Default()
	cfg.EnableMultiFile = false

	rec, err := testAggregator().Collect(context.Background(), dir, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.Title != "Cue Title" {
		t.Errorf("malformed sibling sank the collection: %+v", rec)
	}
}

func TestCollectMissingPath(t *testing.T) {
	_, err := testAggregator().Collect(context.Background(), "/does/not/exist", config.Default())
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want not-found", err)
	}
}

func TestCollectInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Priority = nil
	_, err := testAggregator().Collect(context.Background(), t.TempDir(), cfg)
	if err == nil {
		t.Error("expected config validation error")
	}
}

func TestCollectCanceled(t *testing.T) {
	dir := t.TempDir()
	writeSidecar(t, dir, "metadata.opf", testOpf)
	for _, name := range []string{"01 - One.mp3", "02 - Two.mp3"} {
		writeSidecar(t, dir, name, "audio")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := testAggregator().Collect(ctx, dir, config.Default())
	if err == nil {
		t.Error("expected cancellation error")
	}
	if rec != nil {
		t.Errorf("canceled collection produced a partial record: %+v", rec)
	}
}
