package profiles

import (
	"bytes"
	"fmt"
	"os"

	"github.com/user/pane-scraper/internal/entity"
	"gopkg.in/yaml.v3"
)

// Parse decodes one YAML profile and validates it. Unknown keys are rejected
// so that a typo in a selector key does not silently drop a field.
func Parse(data []byte) (entity.Profile, error) {
	var p entity.Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return entity.Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return entity.Profile{}, err
	}
	return p, nil
}

// LoadFile reads a YAML profile from path.
func LoadFile(path string) (entity.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.Profile{}, err
	}
	p, err := Parse(data)
	if err != nil {
		return entity.Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Resolve returns the profile from file when set, otherwise the built-in named name.
func Resolve(name, file string) (entity.Profile, error) {
	if file != "" {
		return LoadFile(file)
	}
	p, ok := Builtin()[name]
	if !ok {
		return entity.Profile{}, fmt.Errorf("unknown profile %q (built-in: %v)", name, Names())
	}
	return p, nil
}

// Marshal renders p as YAML, e.g. as a starting point for a custom profile.
func Marshal(p entity.Profile) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
