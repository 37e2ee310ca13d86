package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSources marks a source list that cannot be turned into
// descriptors. It is the only error class that fails a whole run.
var ErrInvalidSources = errors.New("invalid source list")

// Syntax of an externally supplied source list
type Syntax string

const (
	SyntaxJSON Syntax = "json"
	SyntaxYAML Syntax = "yaml"
)

// SyntaxFor picks the list syntax from a file name. Anything that is not
// .yml/.yaml is read as JSON.
func SyntaxFor(path string) Syntax {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return SyntaxYAML
	default:
		return SyntaxJSON
	}
}

// Resolve returns the registry for a run. An empty path selects the
// embedded default set; a path that cannot be read or parsed is an error,
// never a silent fallback to the defaults.
func Resolve(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	descriptors, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewRegistry(descriptors), nil
}

// LoadFile reads and validates a source list from disk
func LoadFile(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrInvalidSources, path, err)
	}

	descriptors, err := Parse(data, SyntaxFor(path))
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", path, err)
	}
	return descriptors, nil
}

// Parse decodes and validates an ordered list of descriptors. Unknown
// record keys are rejected rather than ignored.
func Parse(data []byte, syntax Syntax) ([]Descriptor, error) {
	var descriptors []Descriptor

	switch syntax {
	case SyntaxYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&descriptors); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: failed to parse YAML: %v", ErrInvalidSources, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&descriptors); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON: %v", ErrInvalidSources, err)
		}
	}

	if len(descriptors) == 0 {
		return nil, fmt.Errorf("%w: at least one source is required", ErrInvalidSources)
	}

	for i := range descriptors {
		setDefaults(&descriptors[i])
		if err := validate(descriptors[i]); err != nil {
			return nil, fmt.Errorf("%w: source at index %d: %v", ErrInvalidSources, i, err)
		}
	}

	return descriptors, nil
}

func setDefaults(d *Descriptor) {
	d.Endpoint = strings.TrimSpace(d.Endpoint)
	d.Method = strings.ToUpper(strings.TrimSpace(d.Method))
	if d.Method == "" {
		d.Method = http.MethodGet
	}
	d.Format = Format(strings.ToLower(string(d.Format)))
	if strings.TrimSpace(d.Name) == "" {
		d.Name = Domain(d.Endpoint)
	}
}

func validate(d Descriptor) error {
	if d.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}

	u, err := url.Parse(d.Endpoint)
	if err != nil {
		return fmt.Errorf("endpoint is not a valid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint must be an http(s) URL: %s", d.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint has no host: %s", d.Endpoint)
	}

	if d.Method != http.MethodGet {
		return fmt.Errorf("unsupported method %q", d.Method)
	}

	if !d.Format.valid() {
		return fmt.Errorf("unknown format %q", d.Format)
	}

	return nil
}
