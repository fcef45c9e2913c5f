package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/user/pane-scraper/internal/entity"
	"github.com/user/pane-scraper/internal/repository"
	"github.com/user/pane-scraper/pkg/metrics"
	"go.uber.org/zap"
)

// runTracker owns the state machine of a single run and mirrors every change
// to the status repository and metrics.
type runTracker struct {
	status entity.RunStatus
	repo   repository.StatusRepository
	logger *zap.Logger
	now    func() time.Time
}

func newRunTracker(runID, profile string, repo repository.StatusRepository, logger *zap.Logger, now func() time.Time) *runTracker {
	ts := now()
	return &runTracker{
		status: entity.RunStatus{
			RunID:     runID,
			Profile:   profile,
			State:     entity.StateNavigating,
			StartedAt: ts,
			UpdatedAt: ts,
		},
		repo:   repo,
		logger: logger.With(zap.String("run_id", runID), zap.String("profile", profile)),
		now:    now,
	}
}

// start publishes the initial navigating state.
func (t *runTracker) start(ctx context.Context) {
	t.setStageGauge(entity.StateNavigating)
	t.logger.Info("run started", zap.String("state", string(entity.StateNavigating)))
	t.persist(ctx)
}

// transition moves the run to next, rejecting moves the state machine does not allow.
func (t *runTracker) transition(ctx context.Context, next entity.RunState) error {
	prev := t.status.State
	if !prev.CanTransition(next) {
		return fmt.Errorf("invalid run transition %s -> %s", prev, next)
	}
	t.status.State = next
	t.status.UpdatedAt = t.now()
	if next.Terminal() {
		finished := t.status.UpdatedAt
		t.status.FinishedAt = &finished
	}
	t.setStageGauge(next)
	t.logger.Info("run state changed", zap.String("from", string(prev)), zap.String("to", string(next)))
	t.persist(ctx)
	return nil
}

// update applies fn to the status and persists it without changing state.
func (t *runTracker) update(ctx context.Context, fn func(s *entity.RunStatus)) {
	fn(&t.status)
	t.status.UpdatedAt = t.now()
	t.persist(ctx)
}

// finish records the terminal outcome. A nil err means done.
func (t *runTracker) finish(ctx context.Context, err error) {
	outcome := entity.StateDone
	if err != nil {
		outcome = entity.StateAborted
		t.status.Error = err.Error()
	}
	if terr := t.transition(ctx, outcome); terr != nil {
		t.logger.Error("could not record final state", zap.Error(terr))
	}
	metrics.RunsTotal.WithLabelValues(t.status.Profile, string(outcome)).Inc()
	metrics.RunDuration.WithLabelValues(t.status.Profile).Observe(t.now().Sub(t.status.StartedAt).Seconds())
}

func (t *runTracker) snapshot() *entity.RunStatus {
	s := t.status
	s.Outputs = append([]string(nil), t.status.Outputs...)
	return &s
}

func (t *runTracker) persist(ctx context.Context) {
	if t.repo == nil {
		return
	}
	// Status persistence must not fail a run, and should still land after cancellation.
	if err := t.repo.Save(context.WithoutCancel(ctx), t.snapshot()); err != nil {
		t.logger.Warn("failed to save run status", zap.Error(err))
	}
}

func (t *runTracker) setStageGauge(current entity.RunState) {
	for _, s := range entity.AllStates {
		v := 0.0
		if s == current {
			v = 1
		}
		metrics.RunStage.WithLabelValues(t.status.Profile, string(s)).Set(v)
	}
}
