package fetch

import (
	"time"

	"github.com/lysyi3m/trend-comb/app/source"
)

// Kind is the payload format sniffed from a response
type Kind string

const (
	KindJSON Kind = "json"
	KindFeed Kind = "feed"
	KindHTML Kind = "html"
	KindText Kind = "text"
)

// Result is the outcome of fetching one source. A transport failure is
// recorded in Err; a Result is produced for every source of a run.
type Result struct {
	Source      source.Descriptor
	URL         string // final URL after redirects
	StatusCode  int
	ContentType string
	Kind        Kind
	Body        []byte
	Err         error
	Duration    time.Duration
}

// Failed reports whether the request never produced a usable response
func (r Result) Failed() bool {
	return r.Err != nil
}

// Observer is notified around every request while its permit is held
type Observer interface {
	FetchStarted(d source.Descriptor)
	FetchFinished(r Result)
}
