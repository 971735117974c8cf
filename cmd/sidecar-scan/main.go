// sidecar-scan extracts metadata for one audiobook path and prints the
// merged record as JSON. Exits 1 when no source produced usable content.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/listenupapp/sidecar/internal/aggregator"
	"github.com/listenupapp/sidecar/internal/config"
	"github.com/listenupapp/sidecar/internal/duration"
	"github.com/listenupapp/sidecar/internal/logger"
	"github.com/listenupapp/sidecar/internal/multifile"
)

func main() {
	itemPath := flag.String("path", "", "Audiobook file or directory to extract")
	priority := flag.String("priority", "", "Comma-separated merge priority (default "+config.DefaultPriority+")")
	naming := flag.String("naming", "", "Multi-file chapter naming: filename, metadata_title, sequential, pattern")

	cue := flag.String("cue", "", "Enable cue sheet parsing (default true)")
	opf := flag.String("opf", "", "Enable OPF parsing (default true)")
	jsonMeta := flag.String("json", "", "Enable JSON metadata parsing (default true)")
	nfo := flag.String("nfo", "", "Enable NFO parsing (default true)")
	ffmetadata := flag.String("ffmetadata", "", "Enable FFmpeg metadata parsing (default true)")
	text := flag.String("text", "", "Enable plain text parsing (default true)")
	multiFile := flag.String("multi-file", "", "Enable multi-file detection (default true)")

	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "Log format (pretty, json)")
	flag.Parse()

	if *itemPath == "" && flag.NArg() > 0 {
		*itemPath = flag.Arg(0)
	}

	log := logger.New(logger.Config{
		Format: config.Value(*logFormat, "SIDECAR_LOG_FORMAT", ""),
		Level:  logger.ParseLevel(config.Value(*logLevel, "SIDECAR_LOG_LEVEL", "info")),
	})

	if *itemPath == "" {
		log.Fatal("usage: sidecar-scan [flags] <path>")
	}

	cfg := config.Default()
	cfg.EnableCue = config.BoolValue(*cue, "SIDECAR_ENABLE_CUE", true)
	cfg.EnableOpf = config.BoolValue(*opf, "SIDECAR_ENABLE_OPF", true)
	cfg.EnableJSON = config.BoolValue(*jsonMeta, "SIDECAR_ENABLE_JSON", true)
	cfg.EnableNfo = config.BoolValue(*nfo, "SIDECAR_ENABLE_NFO", true)
	cfg.EnableFfmetadata = config.BoolValue(*ffmetadata, "SIDECAR_ENABLE_FFMETADATA", true)
	cfg.EnableText = config.BoolValue(*text, "SIDECAR_ENABLE_TEXT", true)
	cfg.EnableMultiFile = config.BoolValue(*multiFile, "SIDECAR_ENABLE_MULTI_FILE", true)
	cfg.Priority = config.ParsePriority(config.Value(*priority, "SIDECAR_PRIORITY", config.DefaultPriority))
	cfg.NamingStrategy = multifile.ParseStrategy(config.Value(*naming, "SIDECAR_NAMING", ""))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agg := aggregator.New(log.Logger, duration.NewProbe(log.Logger))

	record, err := agg.Collect(ctx, *itemPath, cfg)
	if err != nil {
		log.Fatal("extraction failed", "path", *itemPath, "error", err)
	}
	if record == nil {
		log.Warn("no metadata found", "path", *itemPath)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		log.Fatal("failed to encode record", "error", err)
	}
	fmt.Println(string(out))
}
