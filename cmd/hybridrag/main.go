// Command hybridrag exposes the engine's ingest/query/admin_reset/health
// operations over a small CLI, one subcommand per operation.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"hybridrag/internal/config"
	"hybridrag/internal/observability"
	"hybridrag/internal/rag/engine"
	"hybridrag/internal/rag/retrieve"
)

const (
	exitOK          = 0
	exitConfigError = 2
	exitStoreError  = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return exitConfigError
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return exitConfigError
	}
	observability.InitLogger(cfg.Obs.LogPath, cfg.Obs.LogLevel)

	ctx := context.Background()
	var shutdown func(context.Context) error
	if cfg.Obs.OTLPEndpoint != "" {
		shutdown, err = observability.InitOTel(ctx, cfg.Obs)
		if err != nil {
			log.Warn().Err(err).Msg("otel init failed, continuing without export")
		}
	}
	if shutdown != nil {
		defer func() { _ = shutdown(context.Background()) }()
	}

	e, err := engine.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start engine: %v\n", err)
		return exitStoreError
	}

	switch args[0] {
	case "ingest":
		return cmdIngest(ctx, e, args[1:])
	case "query":
		return cmdQuery(ctx, e, args[1:])
	case "admin-reset":
		return cmdAdminReset(ctx, e)
	case "health":
		return cmdHealth(ctx, e)
	default:
		usage()
		return exitConfigError
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: hybridrag <ingest|query|admin-reset|health> [flags]")
}

func cmdIngest(ctx context.Context, e *engine.Engine, args []string) int {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	file := fs.String("file", "", "path to a document (use -stdin to read from STDIN instead)")
	stdin := fs.Bool("stdin", false, "read document content from STDIN")
	language := fs.String("lang", "", "document language code (defaults to the configured default)")
	if err := fs.Parse(args); err != nil {
		return exitConfigError
	}

	var content []byte
	var err error
	switch {
	case *stdin:
		content, err = io.ReadAll(os.Stdin)
	case *file != "":
		content, err = os.ReadFile(*file)
	default:
		fmt.Fprintln(os.Stderr, "ingest: one of -file or -stdin is required")
		return exitConfigError
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ingest: read input: %v\n", err)
		return exitConfigError
	}

	docID, err := e.Ingest(ctx, content, *language)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ingest: %v\n", err)
		return exitStoreError
	}
	fmt.Println(docID)
	return exitOK
}

func cmdQuery(ctx context.Context, e *engine.Engine, args []string) int {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	q := fs.String("q", "", "query text")
	topK := fs.Int("k", 0, "number of results (0 uses the configured default)")
	language := fs.String("lang", "", "language filter")
	if err := fs.Parse(args); err != nil {
		return exitConfigError
	}
	if *q == "" {
		fmt.Fprintln(os.Stderr, "query: -q is required")
		return exitConfigError
	}

	results, err := e.Query(ctx, retrieve.Request{Query: *q, TopK: *topK, Language: *language})
	if err != nil {
		fmt.Fprintf(os.Stderr, "query: %v\n", err)
		return exitStoreError
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		fmt.Fprintf(os.Stderr, "query: encode results: %v\n", err)
		return exitStoreError
	}
	return exitOK
}

func cmdAdminReset(ctx context.Context, e *engine.Engine) int {
	if err := e.AdminReset(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "admin-reset: %v\n", err)
		return exitStoreError
	}
	fmt.Println("ok")
	return exitOK
}

func cmdHealth(ctx context.Context, e *engine.Engine) int {
	h := e.Health(ctx)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(h)
	if !h.Healthy() {
		return exitStoreError
	}
	return exitOK
}
