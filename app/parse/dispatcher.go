package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/lysyi3m/trend-comb/app/fetch"
)

// maxTextRunes bounds the opaque payload kept for unparseable bodies
const maxTextRunes = 2000

// Dispatcher routes fetch results to the parser for their sniffed kind
type Dispatcher struct {
	rules *Registry
}

func NewDispatcher(rules *Registry) *Dispatcher {
	if rules == nil {
		rules = DefaultRegistry()
	}
	return &Dispatcher{rules: rules}
}

func (d *Dispatcher) Dispatch(r fetch.Result) Outcome {
	if r.Failed() {
		return Outcome{Status: StatusFailed, Err: r.Err}
	}

	var outcome Outcome
	switch r.Kind {
	case fetch.KindFeed:
		outcome = parseFeed(r.Body)
	case fetch.KindHTML:
		outcome = parseHTML(r.Body, r.URL)
	case fetch.KindJSON:
		outcome = d.parseJSON(r.Body, r.URL)
	default:
		outcome = Outcome{Status: StatusOpaque, Payload: truncateRunes(string(r.Body), maxTextRunes)}
	}

	if outcome.Err != nil {
		slog.Debug("Parse failed", "source", r.Source.Name, "kind", r.Kind, "error", outcome.Err)
	}
	return outcome
}

func (d *Dispatcher) parseJSON(body []byte, rawURL string) Outcome {
	var payload any
	decoder := json.NewDecoder(bytes.NewReader(body))
	if err := decoder.Decode(&payload); err != nil {
		return Outcome{Status: StatusFailed, Err: fmt.Errorf("failed to decode JSON: %w", err)}
	}

	rule, ok := d.rules.Match(hostname(rawURL))
	if !ok {
		return Outcome{Status: StatusOpaque, Payload: payload}
	}

	return itemsOutcome(rule.Name, rule.Extract(payload))
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
