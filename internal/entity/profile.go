package entity

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Mode selects how items are addressed.
type Mode string

const (
	// ModeListing clicks each list item and reads a shared detail pane.
	ModeListing Mode = "listing"
	// ModeDetail collects item links and visits each detail page.
	ModeDetail Mode = "detail"
)

// Profile describes one target site: where to start, how to find items, and
// which fields to read from each.
type Profile struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Mode        Mode   `yaml:"mode"`
	StartURL    string `yaml:"start_url"`
	// BaseURL resolves relative item links. Defaults to StartURL.
	BaseURL string `yaml:"base_url,omitempty"`

	// ManualLogin pauses the run at the operator gate after the first navigation.
	ManualLogin bool `yaml:"manual_login,omitempty"`

	// ListSelector must become visible before items are enumerated.
	ListSelector string `yaml:"list_selector"`
	// ScrollSelector is exhaustively scrolled before enumeration. "document"
	// scrolls the page itself; empty disables scroll loading.
	ScrollSelector string `yaml:"scroll_selector,omitempty"`
	ItemSelector   string `yaml:"item_selector"`

	// LinkAttribute is read from each item in detail mode. Defaults to "href".
	LinkAttribute string `yaml:"link_attribute,omitempty"`
	// ReadySelector must become visible on each detail page before extraction.
	ReadySelector string `yaml:"ready_selector,omitempty"`
	// MaxItems caps enumeration; 0 means no cap.
	MaxItems int `yaml:"max_items,omitempty"`

	Fields []FieldSpec `yaml:"fields"`

	// Output is the default output file name, relative to the output directory.
	Output string `yaml:"output"`
}

// DocumentScroll selects the page's own scrolling element.
const DocumentScroll = "document"

func (p Profile) Link() string {
	if p.LinkAttribute == "" {
		return "href"
	}
	return p.LinkAttribute
}

// Base parses BaseURL, falling back to StartURL.
func (p Profile) Base() (*url.URL, error) {
	raw := p.BaseURL
	if raw == "" {
		raw = p.StartURL
	}
	return url.Parse(raw)
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("profile name is empty")
	}
	switch p.Mode {
	case ModeListing, ModeDetail:
	default:
		return fmt.Errorf("profile %q: unknown mode %q", p.Name, p.Mode)
	}
	u, err := url.Parse(p.StartURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("profile %q: start_url must be an absolute URL", p.Name)
	}
	if p.BaseURL != "" {
		if b, err := url.Parse(p.BaseURL); err != nil || b.Host == "" {
			return fmt.Errorf("profile %q: base_url must be an absolute URL", p.Name)
		}
	}
	if p.ListSelector == "" {
		return fmt.Errorf("profile %q: list_selector is required", p.Name)
	}
	if p.ItemSelector == "" {
		return fmt.Errorf("profile %q: item_selector is required", p.Name)
	}
	if p.MaxItems < 0 {
		return fmt.Errorf("profile %q: max_items must be >= 0", p.Name)
	}
	if p.Output == "" {
		return fmt.Errorf("profile %q: output is required", p.Name)
	}
	if err := ValidateFields(p.Fields); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return nil
}
