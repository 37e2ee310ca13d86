package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lysyi3m/trend-comb/app/source"
)

const (
	DefaultConcurrency = 8
	MaxConcurrency     = 32
)

type Fetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	observer     Observer
}

type Option func(*Fetcher)

// WithObserver attaches an observer notified around every request
func WithObserver(o Observer) Option {
	return func(f *Fetcher) {
		f.observer = o
	}
}

// WithMaxBodyBytes caps how much of each response body is read
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodyBytes = n
		}
	}
}

// NewClient builds an HTTP client whose connection pool is sized for
// concurrency parallel requests. Compressed bodies are decoded by the
// fetcher itself so the transport never negotiates on its own.
func NewClient(timeout time.Duration, concurrency int) *http.Client {
	concurrency = ClampConcurrency(concurrency)
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          concurrency,
		MaxIdleConnsPerHost:   concurrency,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ExpectContinueTimeout: time.Second,
		DisableCompression:    true,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func NewFetcher(client *http.Client, userAgent string, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:       client,
		userAgent:    userAgent,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ClampConcurrency maps a requested parallelism onto [1, MaxConcurrency].
// Zero selects DefaultConcurrency.
func ClampConcurrency(n int) int {
	switch {
	case n == 0:
		return DefaultConcurrency
	case n < 1:
		return 1
	case n > MaxConcurrency:
		return MaxConcurrency
	}
	return n
}

// FetchAll fetches every source with at most concurrency requests in
// flight. The returned results are in the same order as sources.
func (f *Fetcher) FetchAll(ctx context.Context, sources []source.Descriptor, concurrency int) []Result {
	results := make([]Result, len(sources))
	permits := make(chan struct{}, ClampConcurrency(concurrency))

	var wg sync.WaitGroup
	for i, d := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()

			select {
			case permits <- struct{}{}:
			case <-ctx.Done():
				results[i] = Result{Source: d, URL: d.Endpoint, Err: fmt.Errorf("failed to fetch: %w", ctx.Err())}
				return
			}
			defer func() { <-permits }()

			results[i] = f.Fetch(ctx, d)
		}()
	}
	wg.Wait()

	return results
}

// Fetch issues one GET for d. Errors never escape: they are recorded on
// the returned Result.
func (f *Fetcher) Fetch(ctx context.Context, d source.Descriptor) Result {
	if f.observer != nil {
		f.observer.FetchStarted(d)
	}

	start := time.Now()
	result := f.fetch(ctx, d)
	result.Duration = time.Since(start)

	if result.Err != nil {
		slog.Warn("Fetch failed", "source", d.Name, "url", d.Endpoint, "error", result.Err)
	} else {
		slog.Debug("Fetch completed", "source", d.Name, "status", result.StatusCode,
			"kind", result.Kind, "bytes", len(result.Body), "duration", result.Duration)
	}

	if f.observer != nil {
		f.observer.FetchFinished(result)
	}
	return result
}

func (f *Fetcher) fetch(ctx context.Context, d source.Descriptor) Result {
	result := Result{Source: d, URL: d.Endpoint}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.Endpoint, nil)
	if err != nil {
		result.Err = fmt.Errorf("failed to create request: %w", err)
		return result
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Encoding", "br, gzip")

	resp, err := f.client.Do(req)
	if err != nil {
		result.Err = fmt.Errorf("failed to fetch: %w", err)
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	result.ContentType = strings.ToLower(resp.Header.Get("Content-Type"))
	if resp.Request != nil && resp.Request.URL != nil {
		result.URL = resp.Request.URL.String()
	}

	body, err := readBody(resp, f.maxBodyBytes)
	if err != nil {
		result.Err = err
		return result
	}

	result.Kind, result.Body = Classify(result.URL, result.ContentType, body)
	// Feed parsers honour the XML prolog encoding themselves
	if result.Kind != KindFeed {
		result.Body = toUTF8(result.Body, result.ContentType)
	}

	return result
}
