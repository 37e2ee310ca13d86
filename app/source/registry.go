package source

import (
	_ "embed"
	"maps"
	"sync"
)

//go:embed defaults.yml
var defaultsYAML []byte

var loadDefaults = sync.OnceValues(func() ([]Descriptor, error) {
	return Parse(defaultsYAML, SyntaxYAML)
})

// Registry is an ordered, read-only list of source descriptors
type Registry struct {
	sources []Descriptor
	byName  map[string]int
}

// NewRegistry builds a registry over a copy of descriptors
func NewRegistry(descriptors []Descriptor) *Registry {
	r := &Registry{
		sources: make([]Descriptor, 0, len(descriptors)),
		byName:  make(map[string]int, len(descriptors)),
	}

	for _, d := range descriptors {
		d.Placeholders = maps.Clone(d.Placeholders)
		if _, ok := r.byName[d.Name]; !ok {
			r.byName[d.Name] = len(r.sources)
		}
		r.sources = append(r.sources, d)
	}

	return r
}

// Default returns the embedded default source set
func Default() *Registry {
	descriptors, err := loadDefaults()
	if err != nil {
		panic("embedded source list is invalid: " + err.Error())
	}
	return NewRegistry(descriptors)
}

// All returns the descriptors in registration order. The slice is a copy.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.sources))
	for i, d := range r.sources {
		d.Placeholders = maps.Clone(d.Placeholders)
		out[i] = d
	}
	return out
}

// Lookup finds the first descriptor registered under name
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	d := r.sources[i]
	d.Placeholders = maps.Clone(d.Placeholders)
	return d, true
}

func (r *Registry) Len() int {
	return len(r.sources)
}
