package normalize

// Article is the canonical record every provider item is reduced to.
// Optional fields are nil when absent and encode as JSON null.
type Article struct {
	Title       string    `json:"title"`
	Source      Source    `json:"source"`
	Author      *string   `json:"author"`
	URL         string    `json:"url"`
	PublishedAt *string   `json:"publishedAt"`
	Description *string   `json:"description"`
	URLToImage  *string   `json:"urlToImage"`
	Content     *string   `json:"content"`
	Language    string    `json:"language"`
	Sentiment   Sentiment `json:"documentSentiment"`
}

type Source struct {
	Name string `json:"name"`
}

// Sentiment is a keyword headline score. Score lies in [-1, 1], Magnitude
// counts matched keywords.
type Sentiment struct {
	Magnitude float64 `json:"magnitude"`
	Score     float64 `json:"score"`
}

// Language is the fixed tag carried by every article
const Language = "en"
