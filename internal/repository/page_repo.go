package repository

import "context"

// FieldSource resolves one selector to at most one element and reads it.
type FieldSource interface {
	// Lookup returns the trimmed text of the first element matching selector,
	// or its attribute value when attr is set. found is false when nothing
	// matches; err is reserved for lookups that could not be performed.
	Lookup(ctx context.Context, selector, attr string) (value string, found bool, err error)
}

// ScrollTarget is a scrollable region whose content height can be probed.
type ScrollTarget interface {
	// ScrollHeight returns the current content height in pixels.
	ScrollHeight(ctx context.Context) (int64, error)
	// ScrollToEnd scrolls the region to its current maximum offset.
	ScrollToEnd(ctx context.Context) error
}

// ListItem is one clickable entry of a listing.
type ListItem interface {
	Click(ctx context.Context) error
}

// PageRepository drives the single browser page owned by a run.
type PageRepository interface {
	FieldSource

	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// WaitVisible blocks until selector matches a visible element.
	WaitVisible(ctx context.Context, selector string) error
	// ScrollTarget returns a handle on the element matching selector, or on
	// the document for entity.DocumentScroll.
	ScrollTarget(selector string) ScrollTarget
	// ListItems returns every element currently matching selector.
	ListItems(ctx context.Context, selector string) ([]ListItem, error)
	// Attributes reads attr from every element matching selector, in DOM order.
	// Elements without the attribute yield an empty string.
	Attributes(ctx context.Context, selector, attr string) ([]string, error)
	// HTML returns the serialized document.
	HTML(ctx context.Context) (string, error)
}

// DocumentParser turns a page snapshot into a FieldSource that needs no browser.
type DocumentParser interface {
	Parse(html string) (FieldSource, error)
}
