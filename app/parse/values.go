package parse

import "strings"

// Tolerant accessors over decoded JSON. A missing key or a value of the
// wrong shape yields the zero value, never a panic.

func object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

// field walks nested objects along path
func field(v any, path ...string) any {
	for _, key := range path {
		m := object(v)
		if m == nil {
			return nil
		}
		v = m[key]
	}
	return v
}

func text(v any) string {
	s, _ := v.(string)
	return s
}

// either returns a unless it is empty, then b
func either(a, b any) any {
	if isEmpty(a) {
		return b
	}
	return a
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

// objects maps every element of l through fn, skipping elements that
// are not objects.
func objects(l []any, fn func(map[string]any) Item) []Item {
	var items []Item
	for _, v := range l {
		m := object(v)
		if m == nil {
			continue
		}
		items = append(items, fn(m))
	}
	return items
}

// matchesDomain reports whether host equals domain or is a subdomain of it
func matchesDomain(host, domain string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	domain = strings.ToLower(domain)
	return host == domain || strings.HasSuffix(host, "."+domain)
}
