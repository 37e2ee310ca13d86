// Package report renders diagnostics for terminals.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lysyi3m/trend-comb/app/parse"
	"github.com/lysyi3m/trend-comb/app/pipeline"
	"github.com/mattn/go-runewidth"
)

const (
	maxSourceWidth = 36
	maxErrorWidth  = 60
)

var header = []string{"SOURCE", "STATUS", "KIND", "OUTCOME", "RULE", "ITEMS", "MS", "ERROR"}

// Render writes one aligned row per source result. Widths are measured
// in terminal cells so wide runes in source names keep columns aligned.
func Render(w io.Writer, report pipeline.Report) error {
	rows := [][]string{header}
	for _, r := range report.Results {
		rows = append(rows, row(r))
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > widths[i] {
				widths[i] = width
			}
		}
	}

	for _, row := range rows {
		if _, err := io.WriteString(w, formatRow(row, widths)+"\n"); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	_, err := fmt.Fprintf(w, "\n%d sources, fetched at %s\n", report.Count, report.FetchedAt)
	return err
}

func row(r pipeline.SourceReport) []string {
	items := "-"
	if list, ok := r.Parsed["items"].([]parse.Item); ok {
		items = strconv.Itoa(len(list))
	}

	return []string{
		runewidth.Truncate(r.Source.Name, maxSourceWidth, "…"),
		r.Status.String(),
		orDash(string(r.Kind)),
		string(r.Outcome),
		orDash(r.Rule),
		items,
		strconv.FormatInt(r.DurationMS, 10),
		runewidth.Truncate(oneLine(r.Error), maxErrorWidth, "…"),
	}
}

func formatRow(cells []string, widths []int) string {
	var sb strings.Builder
	for i, cell := range cells {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(cell)
		// last column is left ragged
		if i < len(cells)-1 {
			sb.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)))
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
