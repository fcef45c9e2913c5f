package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/pane-scraper/internal/repository"
	"go.uber.org/zap"
)

// ErrIncompleteLoad means the scroll budget ran out before the content height settled.
var ErrIncompleteLoad = errors.New("scroll budget exhausted before content settled")

// ScrollBudget bounds the exhaustive scroll loop. Zero fields are unbounded.
type ScrollBudget struct {
	MaxIterations int
	MaxDuration   time.Duration
}

// ScrollResult reports what a load did.
type ScrollResult struct {
	Scrolls  int
	Reads    int
	Height   int64
	Complete bool
}

// ScrollLoader drives a scrollable region to its end until two consecutive
// height probes agree.
type ScrollLoader struct {
	settle time.Duration
	budget ScrollBudget
	logger *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewScrollLoader creates a loader that pauses for settle after every scroll.
func NewScrollLoader(settle time.Duration, budget ScrollBudget, logger *zap.Logger) *ScrollLoader {
	return &ScrollLoader{
		settle: settle,
		budget: budget,
		logger: logger,
		sleep:  sleepContext,
		now:    time.Now,
	}
}

// Load reads the height, then repeatedly scrolls to the end, settles and
// re-reads until the height stops changing. When the budget runs out the
// partial result is returned together with ErrIncompleteLoad.
func (l *ScrollLoader) Load(ctx context.Context, target repository.ScrollTarget) (ScrollResult, error) {
	var res ScrollResult
	start := l.now()

	last, err := target.ScrollHeight(ctx)
	if err != nil {
		return res, fmt.Errorf("read scroll height: %w", err)
	}
	res.Reads++
	res.Height = last

	for {
		if l.budget.MaxIterations > 0 && res.Scrolls >= l.budget.MaxIterations {
			l.logger.Warn("scroll iteration budget exhausted",
				zap.Int("scrolls", res.Scrolls), zap.Int64("height", res.Height))
			return res, ErrIncompleteLoad
		}
		if l.budget.MaxDuration > 0 && l.now().Sub(start) >= l.budget.MaxDuration {
			l.logger.Warn("scroll time budget exhausted",
				zap.Int("scrolls", res.Scrolls), zap.Duration("elapsed", l.now().Sub(start)))
			return res, ErrIncompleteLoad
		}

		if err := target.ScrollToEnd(ctx); err != nil {
			return res, fmt.Errorf("scroll to end: %w", err)
		}
		res.Scrolls++

		if err := l.sleep(ctx, l.settle); err != nil {
			return res, err
		}

		height, err := target.ScrollHeight(ctx)
		if err != nil {
			return res, fmt.Errorf("read scroll height: %w", err)
		}
		res.Reads++
		l.logger.Debug("scrolled", zap.Int("iteration", res.Scrolls), zap.Int64("height", height))

		if height == last {
			res.Complete = true
			return res, nil
		}
		last = height
		res.Height = height
	}
}

// sleepContext waits for d or until ctx ends.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
