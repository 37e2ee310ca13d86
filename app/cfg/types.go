package cfg

import "time"

type Cfg struct {
	// Server configuration
	Port         string
	APIAccessKey string

	// Collection configuration
	SourcesFile    string
	SourcesDir     string
	HTTPTimeout    time.Duration
	MaxConcurrency int
	UserAgent      string

	// Scheduled collection
	Schedule     string
	SnapshotPath string

	// Application metadata
	LogFormat string
	Debug     bool
	Version   string
}
