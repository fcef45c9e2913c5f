package repository

import (
	"context"

	"github.com/user/pane-scraper/internal/entity"
)

// Export is everything a sink needs for the single end-of-run write.
type Export struct {
	RunID   string
	Profile string
	Header  []string
	Records entity.ResultSet
}

// RecordSink persists a whole Result Set in one write.
type RecordSink interface {
	// Name identifies the sink in logs and metrics.
	Name() string
	// Target describes where the records went, e.g. a file path or table.
	Target() string
	Write(ctx context.Context, export Export) error
}
