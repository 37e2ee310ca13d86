package parse

// Item is one raw record pulled from a provider payload. Keys follow
// the provider's vocabulary; the normalizer resolves them through aliases.
type Item map[string]any

type Status string

const (
	StatusOK     Status = "ok"     // items present
	StatusEmpty  Status = "empty"  // understood, zero items
	StatusOpaque Status = "opaque" // unrecognized payload, kept raw
	StatusFailed Status = "failed" // fetch or parse error
)

// Outcome is the dispatcher's verdict on one fetch result. Only StatusOK
// contributes items to a feed.
type Outcome struct {
	Status  Status
	Rule    string
	Items   []Item
	Payload any
	Err     error
}

func (o Outcome) Contributes() bool {
	return o.Status == StatusOK
}

func itemsOutcome(rule string, items []Item) Outcome {
	if len(items) == 0 {
		return Outcome{Status: StatusEmpty, Rule: rule}
	}
	return Outcome{Status: StatusOK, Rule: rule, Items: items}
}
