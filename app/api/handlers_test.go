package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/trend-comb/app/normalize"
	"github.com/lysyi3m/trend-comb/app/pipeline"
	"github.com/lysyi3m/trend-comb/app/source"
)

type fakeCollector struct {
	lastOpts pipeline.Options
	calls    int
}

func (f *fakeCollector) Run(ctx context.Context, opts pipeline.Options) pipeline.Feed {
	f.lastOpts = opts
	f.calls++
	items := []normalize.Article{{Title: "t", URL: "https://example.com/a", Language: normalize.Language}}
	return pipeline.Feed{FetchedAt: "2025-01-31T12:00:00+00:00", Count: len(items), Items: items}
}

func (f *fakeCollector) Diagnose(ctx context.Context, opts pipeline.Options) pipeline.Report {
	f.lastOpts = opts
	f.calls++
	return pipeline.Report{FetchedAt: "2025-01-31T12:00:00+00:00", Count: len(opts.Sources)}
}

func setupTestServer(t *testing.T, apiKey string) (*gin.Engine, *fakeCollector, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	collector := &fakeCollector{}
	registry := source.NewRegistry([]source.Descriptor{
		{Name: "one", Endpoint: "https://one.example.com/rss", Method: "GET"},
		{Name: "two", Endpoint: "https://two.example.com/api", Method: "GET"},
	})

	handler := NewHandler(collector, registry, dir, 8, "test-version")
	return NewServer(handler, apiKey), collector, dir
}

func perform(r http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetHealth(t *testing.T) {
	r, _, _ := setupTestServer(t, "secret")

	w := perform(r, http.MethodGet, "/health", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON body, got: %s", w.Body.String())
	}
	if body["ok"] != true {
		t.Errorf("Expected ok true, got %v", body["ok"])
	}
	if ts, _ := body["ts"].(string); !strings.HasSuffix(ts, "+00:00") {
		t.Errorf("Expected UTC timestamp, got %v", body["ts"])
	}
	if body["version"] != "test-version" {
		t.Errorf("Expected version 'test-version', got %v", body["version"])
	}
}

func TestGetSources(t *testing.T) {
	r, _, dir := setupTestServer(t, "")

	w := perform(r, http.MethodGet, "/sources", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var sources []source.Descriptor
	if err := json.Unmarshal(w.Body.Bytes(), &sources); err != nil {
		t.Fatalf("Expected descriptor list, got: %s", w.Body.String())
	}
	if len(sources) != 2 || sources[0].Name != "one" {
		t.Errorf("Expected configured sources, got %+v", sources)
	}

	custom := `[{"source": "custom", "endpoint": "https://custom.example.com/feed"}]`
	if err := os.WriteFile(filepath.Join(dir, "urls.json"), []byte(custom), 0644); err != nil {
		t.Fatal(err)
	}

	w = perform(r, http.MethodGet, "/sources?file=urls.json", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	sources = nil
	json.Unmarshal(w.Body.Bytes(), &sources)
	if len(sources) != 1 || sources[0].Name != "custom" || sources[0].Method != "GET" {
		t.Errorf("Expected file sources, got %+v", sources)
	}
}

func TestSourceFileErrors(t *testing.T) {
	r, collector, dir := setupTestServer(t, "")

	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`[{"source": "x"}]`), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		target string
		status int
	}{
		{"/feed?file=bad.json", http.StatusUnprocessableEntity},
		{"/feed?file=missing.json", http.StatusUnprocessableEntity},
		{"/trends?file=../outside.json", http.StatusBadRequest},
		{"/sources?file=/etc/passwd", http.StatusBadRequest},
	}

	for _, tt := range tests {
		w := perform(r, http.MethodGet, tt.target, "", nil)
		if w.Code != tt.status {
			t.Errorf("Expected status %d for %s, got %d", tt.status, tt.target, w.Code)
		}
	}

	if collector.calls != 0 {
		t.Errorf("Expected no collection for rejected sources, got %d", collector.calls)
	}
}

func TestGetFeed(t *testing.T) {
	r, collector, _ := setupTestServer(t, "")

	w := perform(r, http.MethodGet, "/feed", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if collector.lastOpts.LimitPerSource != 50 || collector.lastOpts.Concurrency != 8 || !collector.lastOpts.RequirePublished {
		t.Errorf("Expected default options, got %+v", collector.lastOpts)
	}
	if len(collector.lastOpts.Sources) != 2 {
		t.Errorf("Expected 2 default sources, got %d", len(collector.lastOpts.Sources))
	}
	if w.Header().Get("X-Feed-Items") != "1" {
		t.Errorf("Expected X-Feed-Items 1, got '%s'", w.Header().Get("X-Feed-Items"))
	}

	var feed map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &feed); err != nil {
		t.Fatalf("Expected JSON body, got: %s", w.Body.String())
	}
	for _, key := range []string{"fetched_at", "count", "items"} {
		if _, ok := feed[key]; !ok {
			t.Errorf("Expected key '%s' in feed", key)
		}
	}

	w = perform(r, http.MethodGet, "/feed?limit_per_source=5&concurrent=3&require_published=false", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if collector.lastOpts.LimitPerSource != 5 || collector.lastOpts.Concurrency != 3 || collector.lastOpts.RequirePublished {
		t.Errorf("Expected query options, got %+v", collector.lastOpts)
	}
}

func TestGetFeedRejectsBadParams(t *testing.T) {
	r, collector, _ := setupTestServer(t, "")

	targets := []string{
		"/feed?limit_per_source=0",
		"/feed?limit_per_source=201",
		"/feed?limit_per_source=abc",
		"/feed?concurrent=0",
		"/feed?concurrent=33",
		"/feed?require_published=maybe",
		"/trends?limit_per_source=-1",
	}

	for _, target := range targets {
		w := perform(r, http.MethodGet, target, "", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %s, got %d", target, w.Code)
		}
	}

	if collector.calls != 0 {
		t.Errorf("Expected no collection for bad params, got %d", collector.calls)
	}
}

func TestGetTrends(t *testing.T) {
	r, collector, _ := setupTestServer(t, "")

	w := perform(r, http.MethodGet, "/trends?limit_per_source=0", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if collector.lastOpts.LimitPerSource != 0 {
		t.Errorf("Expected untrimmed diagnostics, got limit %d", collector.lastOpts.LimitPerSource)
	}

	w = perform(r, http.MethodGet, "/trends", "", nil)
	if collector.lastOpts.LimitPerSource != 20 {
		t.Errorf("Expected default limit 20, got %d", collector.lastOpts.LimitPerSource)
	}
}

func TestPostSources(t *testing.T) {
	r, collector, _ := setupTestServer(t, "")

	body := `[{"source": "posted", "endpoint": "https://posted.example.com/rss"}]`
	w := perform(r, http.MethodPost, "/trends", body, map[string]string{"Content-Type": "application/json"})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(collector.lastOpts.Sources) != 1 || collector.lastOpts.Sources[0].Name != "posted" {
		t.Errorf("Expected posted sources, got %+v", collector.lastOpts.Sources)
	}

	w = perform(r, http.MethodPost, "/feed", `[{"source": "x", "method": "DELETE", "endpoint": "https://x.example.com"}]`, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422 for invalid body, got %d", w.Code)
	}

	w = perform(r, http.MethodPost, "/feed", "", nil)
	if w.Code != http.StatusOK || len(collector.lastOpts.Sources) != 2 {
		t.Errorf("Expected empty body to use defaults, got %d with %d sources", w.Code, len(collector.lastOpts.Sources))
	}
}

func TestAuthMiddleware(t *testing.T) {
	r, _, _ := setupTestServer(t, "secret")

	tests := []struct {
		name    string
		headers map[string]string
		status  int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"header key", map[string]string{"X-API-Key": "secret"}, http.StatusOK},
		{"bearer key", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodGet, "/sources", "", tt.headers)
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r, _, _ := setupTestServer(t, "")

	w := perform(r, http.MethodOptions, "/feed", "", nil)

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Expected CORS header, got '%s'", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestGetFeedXML(t *testing.T) {
	r, collector, _ := setupTestServer(t, "")

	w := perform(r, http.MethodGet, "/feed.xml?limit_per_source=5", "", map[string]string{"X-Forwarded-Proto": "https"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("Expected RSS content type, got '%s'", ct)
	}
	if w.Header().Get("X-Feed-Items") != "1" {
		t.Errorf("Expected X-Feed-Items 1, got '%s'", w.Header().Get("X-Feed-Items"))
	}
	if collector.lastOpts.LimitPerSource != 5 {
		t.Errorf("Expected limit 5, got %d", collector.lastOpts.LimitPerSource)
	}

	body := w.Body.String()
	if !strings.Contains(body, "<link>https://example.com/a</link>") {
		t.Errorf("Expected item link in RSS, got: %s", body)
	}
	if !strings.Contains(body, `<atom:link href="https://example.com/feed.xml?limit_per_source=5"`) {
		t.Errorf("Expected self link from request, got: %s", body)
	}
	if !strings.Contains(body, "<generator>trend-comb/test-version</generator>") {
		t.Errorf("Expected generator version, got: %s", body)
	}
}

func TestGetFeedXMLBadParams(t *testing.T) {
	r, collector, _ := setupTestServer(t, "")

	w := perform(r, http.MethodGet, "/feed.xml?limit_per_source=0", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	if collector.calls != 0 {
		t.Errorf("Expected no collection, got %d calls", collector.calls)
	}
}
