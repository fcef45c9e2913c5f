package entity

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSentinel is used when a FieldSpec does not name its own.
const DefaultSentinel = "N/A"

// FieldSpec declares how to read one named field from an item.
type FieldSpec struct {
	Name     string `yaml:"name"`
	Selector string `yaml:"selector"`
	// Attribute is read instead of the element text when set, e.g. "href".
	Attribute string `yaml:"attribute,omitempty"`
	Sentinel  string `yaml:"sentinel,omitempty"`
	// Required fields fail the whole item instead of falling back to the sentinel.
	Required bool `yaml:"required,omitempty"`
}

// SentinelValue returns the placeholder written when the element is missing.
func (f FieldSpec) SentinelValue() string {
	if f.Sentinel == "" {
		return DefaultSentinel
	}
	return f.Sentinel
}

func (f FieldSpec) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("field name is empty")
	}
	if strings.TrimSpace(f.Selector) == "" {
		return fmt.Errorf("field %q: selector is empty", f.Name)
	}
	return nil
}

// ValidateFields checks each spec and rejects duplicate names.
func ValidateFields(specs []FieldSpec) error {
	if len(specs) == 0 {
		return errors.New("no fields declared")
	}
	seen := make(map[string]bool, len(specs))
	for _, f := range specs {
		if err := f.Validate(); err != nil {
			return err
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}
