package pipeline

import (
	"encoding/json"
	"strconv"

	"github.com/lysyi3m/trend-comb/app/fetch"
	"github.com/lysyi3m/trend-comb/app/normalize"
	"github.com/lysyi3m/trend-comb/app/parse"
	"github.com/lysyi3m/trend-comb/app/source"
)

// Options controls a single collection run
type Options struct {
	Sources          []source.Descriptor
	LimitPerSource   int // items taken per source before normalization, <= 0 for all
	Concurrency      int
	RequirePublished bool
}

type Feed struct {
	FetchedAt string              `json:"fetched_at"`
	Count     int                 `json:"count"`
	Items     []normalize.Article `json:"items"`
}

// Report is the per-source view of a run used for diagnostics
type Report struct {
	FetchedAt string         `json:"fetched_at"`
	Count     int            `json:"count"`
	Results   []SourceReport `json:"results"`
}

type SourceReport struct {
	Source      source.Descriptor `json:"src"`
	Status      FetchStatus       `json:"status"`
	Error       string            `json:"error,omitempty"`
	ContentType string            `json:"content_type,omitempty"`
	Kind        fetch.Kind        `json:"kind,omitempty"`
	Outcome     parse.Status      `json:"outcome"`
	Rule        string            `json:"rule,omitempty"`
	Parsed      map[string]any    `json:"parsed"`
	DurationMS  int64             `json:"duration_ms"`
}

// FetchStatus is an HTTP status code, or the "error" marker when the
// request produced no response.
type FetchStatus struct {
	Code   int
	Failed bool
}

func (s FetchStatus) String() string {
	if s.Failed {
		return "error"
	}
	return strconv.Itoa(s.Code)
}

func (s FetchStatus) MarshalJSON() ([]byte, error) {
	if s.Failed {
		return json.Marshal("error")
	}
	return json.Marshal(s.Code)
}
