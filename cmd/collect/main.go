// Command collect runs a single collection and prints the result.
//
//	collect --sources ./sources/tech.yml --limit-per-source 20
//	collect --diagnostics
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/lysyi3m/trend-comb/app/fetch"
	"github.com/lysyi3m/trend-comb/app/logging"
	"github.com/lysyi3m/trend-comb/app/pipeline"
	"github.com/lysyi3m/trend-comb/app/report"
	"github.com/lysyi3m/trend-comb/app/source"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

type options struct {
	Sources          string `long:"sources" env:"SOURCES_FILE" description:"Source list (JSON or YAML); embedded defaults when empty"`
	LimitPerSource   int    `long:"limit-per-source" default:"50" description:"Items taken from each source before normalization"`
	Concurrency      int    `long:"concurrency" default:"8" description:"Parallel upstream requests (1-32)"`
	RequirePublished bool   `long:"require-published" description:"Drop articles without a publication time"`
	Diagnostics      bool   `long:"diagnostics" description:"Print a per-source table instead of the feed"`
	Timeout          int    `long:"timeout" default:"15" description:"Upstream request timeout in seconds"`
	UserAgent        string `long:"user-agent" env:"USER_AGENT" default:"trend-comb/1.0" description:"User agent string for HTTP requests"`
	Debug            bool   `long:"debug" description:"Enable debug logging"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts options

	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, err)
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitConfig
	}

	if opts.Timeout <= 0 {
		fmt.Fprintf(stderr, "invalid timeout: %d\n", opts.Timeout)
		return exitConfig
	}
	if opts.Concurrency < 1 || opts.Concurrency > fetch.MaxConcurrency {
		fmt.Fprintf(stderr, "invalid concurrency: %d (must be 1-%d)\n", opts.Concurrency, fetch.MaxConcurrency)
		return exitConfig
	}

	slog.SetDefault(logging.New(stderr, "text", opts.Debug))

	sources, err := source.Resolve(opts.Sources)
	if err != nil {
		fmt.Fprintln(stderr, err)
		if errors.Is(err, source.ErrInvalidSources) {
			return exitConfig
		}
		return exitFailed
	}

	collector := pipeline.NewPipeline(time.Duration(opts.Timeout)*time.Second, opts.UserAgent)
	runOpts := pipeline.Options{
		Sources:          sources.All(),
		LimitPerSource:   opts.LimitPerSource,
		Concurrency:      opts.Concurrency,
		RequirePublished: opts.RequirePublished,
	}

	if opts.Diagnostics {
		if err := report.Render(stdout, collector.Diagnose(ctx, runOpts)); err != nil {
			fmt.Fprintln(stderr, err)
			return exitFailed
		}
		return exitOK
	}

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(collector.Run(ctx, runOpts)); err != nil {
		fmt.Fprintf(stderr, "failed to encode feed: %v\n", err)
		return exitFailed
	}
	return exitOK
}
