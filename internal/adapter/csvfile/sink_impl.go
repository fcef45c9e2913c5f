package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/pane-scraper/internal/repository"
)

// SinkImpl writes a Result Set as one UTF-8 CSV file with a header row.
type SinkImpl struct {
	path string
}

var _ repository.RecordSink = (*SinkImpl)(nil)

func NewSink(path string) *SinkImpl {
	return &SinkImpl{path: path}
}

func (s *SinkImpl) Name() string   { return "csv" }
func (s *SinkImpl) Target() string { return s.path }

// Write renders the whole file to a temporary sibling and renames it into
// place, so a failed write never leaves a truncated output behind.
func (s *SinkImpl) Write(_ context.Context, export repository.Export) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(export.Header); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range export.Records {
		if err := w.Write(rec.Project(export.Header)); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("move csv into place: %w", err)
	}
	return nil
}
