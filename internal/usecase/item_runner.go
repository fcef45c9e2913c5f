package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/user/pane-scraper/internal/entity"
	"github.com/user/pane-scraper/pkg/metrics"
	"github.com/user/pane-scraper/pkg/utils"
	"go.uber.org/zap"
)

// errSkipItem marks an item with nothing to extract, such as an empty link.
var errSkipItem = errors.New("item has nothing to extract")

type itemFunc func(ctx context.Context, i int) (entity.Record, error)

// eachItem runs fn for items 0..n-1 strictly in order. A failing or panicking
// item is logged with its 1-based ordinal and left out of the Result Set; only
// cancellation of ctx stops the loop.
func (uc *scraperUseCase) eachItem(ctx context.Context, t *runTracker, n int, fn itemFunc) (entity.ResultSet, error) {
	records := make(entity.ResultSet, 0, n)
	profile := t.status.Profile

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return records, fmt.Errorf("extraction interrupted at item %d: %w", i+1, err)
		}

		rec, err := isolate(ctx, i, fn)
		switch {
		case errors.Is(err, errSkipItem):
			metrics.ItemsTotal.WithLabelValues(profile, "skipped").Inc()
			t.logger.Info("skipping item", zap.Int("item", i+1), zap.Error(err))
			t.update(ctx, func(s *entity.RunStatus) { s.Skipped++ })
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return records, fmt.Errorf("extraction interrupted at item %d: %w", i+1, ctxErr)
			}
			metrics.ItemsTotal.WithLabelValues(profile, "failed").Inc()
			t.logger.Warn("error scraping item", zap.Int("item", i+1), zap.Error(err))
			t.update(ctx, func(s *entity.RunStatus) { s.Failed++ })
		default:
			records = append(records, rec)
			metrics.ItemsTotal.WithLabelValues(profile, "extracted").Inc()
			t.logger.Info("scraped item", zap.Int("item", i+1), zap.Strings("preview", previewRecord(rec)))
			t.update(ctx, func(s *entity.RunStatus) { s.Extracted++ })
		}
	}
	return records, nil
}

// isolate turns a panic inside fn into an item error.
func isolate(ctx context.Context, i int, fn itemFunc) (rec entity.Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx, i)
}

// resolveLink makes href absolute against base. Blank links are skipped.
func resolveLink(base *url.URL, href string) (string, error) {
	if strings.TrimSpace(href) == "" {
		return "", errSkipItem
	}
	abs, err := utils.ToAbsoluteURL(base, href)
	if err != nil {
		return "", fmt.Errorf("resolve link %q: %w", href, err)
	}
	return abs, nil
}

func previewRecord(rec entity.Record) []string {
	fields := rec.Fields()
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name+": "+utils.Preview(f.Value, 15))
	}
	return out
}
