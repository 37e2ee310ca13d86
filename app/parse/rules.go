package parse

import (
	"sync"
)

// Extractor pulls raw items out of a decoded JSON payload. It must
// tolerate payloads of any shape.
type Extractor func(payload any) []Item

// Rule binds a provider's extraction logic to the domains serving it
type Rule struct {
	Name    string
	Domains []string
	Extract Extractor
}

func (r Rule) Matches(host string) bool {
	for _, d := range r.Domains {
		if matchesDomain(host, d) {
			return true
		}
	}
	return false
}

// Registry is an ordered table of JSON extraction rules. The first rule
// matching a host wins.
type Registry struct {
	mu    sync.RWMutex
	rules []Rule
}

func NewRegistry(rules ...Rule) *Registry {
	r := &Registry{}
	for _, rule := range rules {
		r.Register(rule)
	}
	return r
}

// DefaultRegistry returns a registry holding the built-in provider rules
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultRules()...)
}

// Register appends rule after every previously registered rule
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule)
}

func (r *Registry) Match(host string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rule := range r.rules {
		if rule.Matches(host) {
			return rule, true
		}
	}
	return Rule{}, false
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name
	}
	return names
}
