package repository

import (
	"context"
	"errors"

	"github.com/user/pane-scraper/internal/entity"
)

// ErrStatusNotFound is returned when no run snapshot exists.
var ErrStatusNotFound = errors.New("run status not found")

// StatusRepository stores run snapshots for the control surface.
type StatusRepository interface {
	// Save stores status, replacing any earlier snapshot of the same run.
	Save(ctx context.Context, status *entity.RunStatus) error
	// Get returns the snapshot of runID.
	Get(ctx context.Context, runID string) (*entity.RunStatus, error)
	// Latest returns the most recently saved run.
	Latest(ctx context.Context) (*entity.RunStatus, error)
}
