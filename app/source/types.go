package source

import (
	"net/url"
	"strings"
)

// Format is the expected payload format of a source. It is a hint only,
// the fetcher sniffs the real format from the response.
type Format string

const (
	FormatXML  Format = "xml"
	FormatAtom Format = "atom"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// Descriptor describes one upstream endpoint to poll
type Descriptor struct {
	Name         string            `json:"source" yaml:"source"`
	Category     string            `json:"category,omitempty" yaml:"category,omitempty"`
	Endpoint     string            `json:"endpoint" yaml:"endpoint"`
	Method       string            `json:"method" yaml:"method"`
	Format       Format            `json:"format,omitempty" yaml:"format,omitempty"`
	Region       string            `json:"region,omitempty" yaml:"region,omitempty"`
	AuthRequired bool              `json:"auth_required" yaml:"auth_required"`
	Notes        string            `json:"notes,omitempty" yaml:"notes,omitempty"`
	Placeholders map[string]string `json:"placeholders,omitempty" yaml:"placeholders,omitempty"`
}

// Host returns the lower-cased network location of the endpoint, or an
// empty string when the endpoint cannot be parsed.
func (d Descriptor) Host() string {
	return Domain(d.Endpoint)
}

// Domain returns the lower-cased host[:port] of rawURL.
func Domain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

func (f Format) valid() bool {
	switch f {
	case "", FormatXML, FormatAtom, FormatJSON, FormatHTML:
		return true
	default:
		return false
	}
}
