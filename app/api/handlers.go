package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/trend-comb/app/fetch"
	"github.com/lysyi3m/trend-comb/app/normalize"
	"github.com/lysyi3m/trend-comb/app/pipeline"
	"github.com/lysyi3m/trend-comb/app/rss"
	"github.com/lysyi3m/trend-comb/app/source"
)

const maxSourcesBody = 1 << 20 // 1MB

var errBadRequest = errors.New("bad request")

func NewHandler(collector CollectorInterface, sources *source.Registry, sourcesDir string,
	concurrency int, version string) *Handler {
	return &Handler{
		collector:   collector,
		sources:     sources,
		sourcesDir:  sourcesDir,
		concurrency: fetch.ClampConcurrency(concurrency),
		version:     version,
		generator:   rss.NewGenerator(version),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"ts":      normalize.FormatTime(time.Now()),
		"version": h.version,
	})
}

func (h *Handler) GetSources(c *gin.Context) {
	sources, ok := h.requestSources(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, sources)
}

func (h *Handler) GetFeed(c *gin.Context) {
	feed, ok := h.collectFeed(c)
	if !ok {
		return
	}

	c.Header("X-Feed-Items", strconv.Itoa(feed.Count))
	c.JSON(http.StatusOK, feed)
}

// GetFeedXML serves the same collection as GetFeed rendered as RSS 2.0
func (h *Handler) GetFeedXML(c *gin.Context) {
	feed, ok := h.collectFeed(c)
	if !ok {
		return
	}

	rssContent, err := h.generator.Run(feed, selfLink(c))
	if err != nil {
		slog.Error("Failed to generate RSS", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate RSS"})
		return
	}

	c.Header("X-Feed-Items", strconv.Itoa(feed.Count))
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rssContent))
}

func (h *Handler) collectFeed(c *gin.Context) (pipeline.Feed, bool) {
	params, err := h.parseParams(c, 50, 1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return pipeline.Feed{}, false
	}

	sources, ok := h.requestSources(c)
	if !ok {
		return pipeline.Feed{}, false
	}

	return h.collector.Run(c.Request.Context(), pipeline.Options{
		Sources:          sources,
		LimitPerSource:   params.LimitPerSource,
		Concurrency:      params.Concurrency,
		RequirePublished: params.RequirePublished,
	}), true
}

func (h *Handler) GetTrends(c *gin.Context) {
	params, err := h.parseParams(c, 20, 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sources, ok := h.requestSources(c)
	if !ok {
		return
	}

	report := h.collector.Diagnose(c.Request.Context(), pipeline.Options{
		Sources:        sources,
		LimitPerSource: params.LimitPerSource,
		Concurrency:    params.Concurrency,
	})

	c.JSON(http.StatusOK, report)
}

func (h *Handler) parseParams(c *gin.Context, defaultLimit, minLimit int) (queryParams, error) {
	params := queryParams{
		LimitPerSource:   defaultLimit,
		Concurrency:      h.concurrency,
		RequirePublished: true,
	}

	var err error
	if params.LimitPerSource, err = intParam(c, "limit_per_source", defaultLimit, minLimit, 200); err != nil {
		return params, err
	}
	if params.Concurrency, err = intParam(c, "concurrent", h.concurrency, 1, fetch.MaxConcurrency); err != nil {
		return params, err
	}

	if raw, ok := c.GetQuery("require_published"); ok {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return params, fmt.Errorf("%w: require_published must be a boolean", errBadRequest)
		}
		params.RequirePublished = value
	}

	return params, nil
}

func intParam(c *gin.Context, name string, def, min, max int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return def, nil
	}

	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("%w: %s must be between %d and %d", errBadRequest, name, min, max)
	}
	return value, nil
}

// requestSources picks the source list for a request: a JSON body on
// POST, a file under the sources directory, or the configured defaults.
// It writes the error response itself and reports false on failure.
func (h *Handler) requestSources(c *gin.Context) ([]source.Descriptor, bool) {
	if c.Request.Method == http.MethodPost {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSourcesBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return nil, false
		}
		if len(strings.TrimSpace(string(body))) > 0 {
			sources, err := source.Parse(body, source.SyntaxJSON)
			if err != nil {
				slog.Warn("Rejected posted source list", "error", err)
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return nil, false
			}
			return sources, true
		}
	}

	file := c.Query("file")
	if file == "" {
		return h.sources.All(), true
	}

	path, err := h.sourcePath(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	registry, err := source.Resolve(path)
	if err != nil {
		slog.Warn("Rejected source file", "file", file, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return nil, false
	}

	return registry.All(), true
}

// sourcePath confines a requested file name to the sources directory
func (h *Handler) sourcePath(file string) (string, error) {
	if filepath.IsAbs(file) {
		return "", fmt.Errorf("%w: file must be relative to the sources directory", errBadRequest)
	}

	path := filepath.Join(h.sourcesDir, filepath.Clean(file))
	rel, err := filepath.Rel(h.sourcesDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: file escapes the sources directory", errBadRequest)
	}

	return path, nil
}

func selfLink(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.RequestURI()
}
