package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/pane-scraper/internal/entity"
	"github.com/user/pane-scraper/internal/repository"
	"github.com/user/pane-scraper/pkg/metrics"
	"go.uber.org/zap"
)

// ErrNoSinks is returned when an Exporter has nowhere to write.
var ErrNoSinks = errors.New("no record sinks configured")

// ExportResult summarises the end-of-run write.
type ExportResult struct {
	Records int
	Header  []string
	Targets []string
}

// Exporter writes a finished Result Set to every configured sink, once.
type Exporter struct {
	sinks  []repository.RecordSink
	logger *zap.Logger
}

func NewExporter(sinks []repository.RecordSink, logger *zap.Logger) *Exporter {
	return &Exporter{sinks: sinks, logger: logger}
}

// Export skips all writes for an empty Result Set. Otherwise the header is the
// first record's field names and each sink receives the full set. Failing
// sinks are logged; an error is returned only when every sink failed.
func (e *Exporter) Export(ctx context.Context, runID, profile string, records entity.ResultSet) (ExportResult, error) {
	if len(records) == 0 {
		e.logger.Warn("no data was scraped, skipping export", zap.String("run_id", runID))
		return ExportResult{}, nil
	}
	if len(e.sinks) == 0 {
		return ExportResult{}, ErrNoSinks
	}

	export := repository.Export{
		RunID:   runID,
		Profile: profile,
		Header:  records.Header(),
		Records: records,
	}
	res := ExportResult{Records: len(records), Header: export.Header}

	var errs []error
	for _, sink := range e.sinks {
		if err := sink.Write(ctx, export); err != nil {
			e.logger.Error("sink write failed",
				zap.String("sink", sink.Name()), zap.String("target", sink.Target()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
			continue
		}
		metrics.RecordsExported.WithLabelValues(sink.Name()).Add(float64(len(records)))
		e.logger.Info("records exported",
			zap.String("sink", sink.Name()), zap.String("target", sink.Target()), zap.Int("records", len(records)))
		res.Targets = append(res.Targets, sink.Target())
	}

	if len(res.Targets) == 0 {
		return res, fmt.Errorf("export failed: %w", errors.Join(errs...))
	}
	return res, nil
}
