package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

// ErrHelp is returned by Load when usage was requested and printed
var ErrHelp = errors.New("help requested")

type rawCfg struct {
	// Server configuration
	Port         string `long:"port" env:"PORT" default:"8000" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Collection configuration
	SourcesFile    string `long:"sources-file" env:"SOURCES_FILE" description:"Source list (JSON or YAML) used instead of the embedded defaults"`
	SourcesDir     string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory that per-request source files are resolved in"`
	HTTPTimeout    int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"15" description:"Upstream request timeout in seconds"`
	MaxConcurrency int    `long:"max-concurrency" env:"MAX_CONCURRENCY" default:"8" description:"Default number of parallel upstream requests (1-32)"`
	UserAgent      string `long:"user-agent" env:"USER_AGENT" default:"trend-comb/1.0" description:"User agent string for HTTP requests"`

	// Scheduled collection
	Schedule     string `long:"schedule" env:"SCHEDULE" description:"Cron expression for background collection runs (optional)"`
	SnapshotPath string `long:"snapshot-path" env:"SNAPSHOT_PATH" description:"File the latest scheduled feed is written to (optional)"`

	// Application metadata
	LogFormat string `long:"log-format" env:"LOG_FORMAT" default:"text" choice:"text" choice:"json" description:"Log output format"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	cfg, err := parse(os.Args[1:])
	if err != nil {
		return nil, err
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, ErrHelp
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("invalid http timeout: %d", raw.HTTPTimeout)
	}
	if raw.MaxConcurrency < 1 || raw.MaxConcurrency > 32 {
		return nil, fmt.Errorf("invalid max concurrency: %d (must be 1-32)", raw.MaxConcurrency)
	}

	return &Cfg{
		Port:           raw.Port,
		APIAccessKey:   raw.APIAccessKey,
		SourcesFile:    raw.SourcesFile,
		SourcesDir:     raw.SourcesDir,
		HTTPTimeout:    time.Duration(raw.HTTPTimeout) * time.Second,
		MaxConcurrency: raw.MaxConcurrency,
		UserAgent:      raw.UserAgent,
		Schedule:       raw.Schedule,
		SnapshotPath:   raw.SnapshotPath,
		LogFormat:      raw.LogFormat,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}, nil
}
