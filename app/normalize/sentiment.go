package normalize

import (
	"math"
	"strings"
)

var (
	positiveWords = []string{"rise", "growth", "record", "expand", "funding", "profit"}
	negativeWords = []string{"decline", "fall", "loss", "slowdown", "layoff", "ban"}
)

// Headline scores a title by keyword containment. Each keyword counts
// once regardless of how often it occurs.
func Headline(title string) Sentiment {
	t := strings.ToLower(title)

	pos := countContained(t, positiveWords)
	neg := countContained(t, negativeWords)
	matches := pos + neg
	if matches == 0 {
		return Sentiment{}
	}

	score := float64(pos-neg) / float64(matches)
	return Sentiment{
		Magnitude: float64(matches),
		Score:     math.RoundToEven(score*100) / 100,
	}
}

func countContained(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
