package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/user/pane-scraper/internal/entity"
	"github.com/user/pane-scraper/internal/repository"
	"github.com/user/pane-scraper/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrNavigation aborts a run whose start page did not load.
	ErrNavigation = errors.New("navigation failed")
	// ErrContainerMissing aborts a run whose list container never rendered.
	ErrContainerMissing = errors.New("list container not found")
	// ErrGateClosed aborts a run whose operator gate ended without a signal.
	ErrGateClosed = errors.New("operator gate closed before resume")
)

// DefaultGatePrompt is shown by gates that talk to a human.
const DefaultGatePrompt = "ACTION REQUIRED: log in to the site in the browser window, then resume the run."

// Scraper runs one profile end to end.
type Scraper interface {
	Run(ctx context.Context, profile entity.Profile) (*entity.RunStatus, error)
}

// Options tunes waits and budgets of a run.
type Options struct {
	NavTimeout   time.Duration
	WaitTimeout  time.Duration
	ClickSettle  time.Duration
	ScrollSettle time.Duration
	ScrollBudget ScrollBudget
	// DetailRate limits detail-page visits per second. <= 0 disables pacing.
	DetailRate float64
	GatePrompt string
}

type scraperUseCase struct {
	page       repository.PageRepository
	parser     repository.DocumentParser
	gate       repository.OperatorGate
	exporter   *Exporter
	statusRepo repository.StatusRepository
	opts       Options
	logger     *zap.Logger

	newRunID func() string
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewScraperUseCase wires a Scraper around one browser page. gate may be nil
// for profiles that never need an operator.
func NewScraperUseCase(
	page repository.PageRepository,
	parser repository.DocumentParser,
	gate repository.OperatorGate,
	exporter *Exporter,
	statusRepo repository.StatusRepository,
	opts Options,
	logger *zap.Logger,
) Scraper {
	if opts.GatePrompt == "" {
		opts.GatePrompt = DefaultGatePrompt
	}
	return &scraperUseCase{
		page:       page,
		parser:     parser,
		gate:       gate,
		exporter:   exporter,
		statusRepo: statusRepo,
		opts:       opts,
		logger:     logger,
		newRunID:   func() string { return uuid.NewString() },
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// Run executes Navigating -> [AwaitingOperator] -> Loading -> Extracting ->
// Exporting -> Done. Fatal errors move the run to Aborted and are returned
// along with the final status.
func (uc *scraperUseCase) Run(ctx context.Context, profile entity.Profile) (*entity.RunStatus, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	t := newRunTracker(uc.newRunID(), profile.Name, uc.statusRepo, uc.logger, uc.now)
	t.start(ctx)

	err := uc.run(ctx, t, profile)
	t.finish(ctx, err)
	if err != nil {
		t.logger.Error("run aborted", zap.Error(err))
		return t.snapshot(), err
	}

	s := t.snapshot()
	t.logger.Info("run finished",
		zap.Int("items_found", s.ItemsFound),
		zap.Int("extracted", s.Extracted),
		zap.Int("failed", s.Failed),
		zap.Int("skipped", s.Skipped),
		zap.Bool("load_complete", s.LoadComplete),
		zap.Strings("outputs", s.Outputs),
	)
	return s, nil
}

func (uc *scraperUseCase) run(ctx context.Context, t *runTracker, p entity.Profile) error {
	if err := uc.navigate(ctx, p.StartURL); err != nil {
		return err
	}
	t.logger.Info("navigated to start page", zap.String("url", p.StartURL))

	if p.ManualLogin {
		if err := t.transition(ctx, entity.StateAwaitingOperator); err != nil {
			return err
		}
		if uc.gate == nil {
			return fmt.Errorf("%w: profile requires manual login but no gate is configured", ErrGateClosed)
		}
		t.logger.Info("waiting for operator", zap.String("prompt", uc.opts.GatePrompt))
		if err := uc.gate.Await(ctx, uc.opts.GatePrompt); err != nil {
			return fmt.Errorf("%w: %w", ErrGateClosed, err)
		}
		t.logger.Info("operator resumed the run")
	}

	if err := t.transition(ctx, entity.StateLoading); err != nil {
		return err
	}
	if err := uc.load(ctx, t, p); err != nil {
		return err
	}

	if err := t.transition(ctx, entity.StateExtracting); err != nil {
		return err
	}
	var (
		records entity.ResultSet
		err     error
	)
	switch p.Mode {
	case entity.ModeListing:
		records, err = uc.extractListing(ctx, t, p)
	case entity.ModeDetail:
		records, err = uc.extractDetails(ctx, t, p)
	}
	if err != nil {
		return err
	}

	if err := t.transition(ctx, entity.StateExporting); err != nil {
		return err
	}
	res, err := uc.exporter.Export(ctx, t.status.RunID, p.Name, records)
	if err != nil {
		return err
	}
	t.update(ctx, func(s *entity.RunStatus) { s.Outputs = res.Targets })
	return nil
}

func (uc *scraperUseCase) navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, uc.opts.NavTimeout)
	defer cancel()
	if err := uc.page.Navigate(navCtx, url); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigation, url, err)
	}
	return nil
}

func (uc *scraperUseCase) waitVisible(ctx context.Context, selector string) error {
	waitCtx, cancel := context.WithTimeout(ctx, uc.opts.WaitTimeout)
	defer cancel()
	return uc.page.WaitVisible(waitCtx, selector)
}

// load waits for the list container and, when configured, scrolls it to exhaustion.
func (uc *scraperUseCase) load(ctx context.Context, t *runTracker, p entity.Profile) error {
	if err := uc.waitVisible(ctx, p.ListSelector); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrContainerMissing, p.ListSelector, err)
	}
	t.logger.Info("list container is visible", zap.String("selector", p.ListSelector))

	if p.ScrollSelector == "" {
		t.update(ctx, func(s *entity.RunStatus) { s.LoadComplete = true })
		return nil
	}

	loader := NewScrollLoader(uc.opts.ScrollSettle, uc.opts.ScrollBudget, t.logger)
	loader.sleep = uc.sleep
	loader.now = uc.now

	res, err := loader.Load(ctx, uc.page.ScrollTarget(p.ScrollSelector))
	metrics.ScrollIterations.WithLabelValues(p.Name).Observe(float64(res.Scrolls))
	switch {
	case errors.Is(err, ErrIncompleteLoad):
		t.logger.Warn("continuing with partially loaded list",
			zap.Int("scrolls", res.Scrolls), zap.Int64("height", res.Height))
	case err != nil:
		return fmt.Errorf("scroll load: %w", err)
	default:
		t.logger.Info("all items are loaded", zap.Int("scrolls", res.Scrolls), zap.Int64("height", res.Height))
	}
	t.update(ctx, func(s *entity.RunStatus) { s.LoadComplete = res.Complete })
	return nil
}

// extractListing clicks each item in order and reads the shared detail pane.
// Items share one pane, so each must finish before the next is clicked.
func (uc *scraperUseCase) extractListing(ctx context.Context, t *runTracker, p entity.Profile) (entity.ResultSet, error) {
	items, err := uc.page.ListItems(ctx, p.ItemSelector)
	if err != nil {
		return nil, fmt.Errorf("enumerate items %s: %w", p.ItemSelector, err)
	}
	items = capItems(items, p.MaxItems)
	t.update(ctx, func(s *entity.RunStatus) { s.ItemsFound = len(items) })
	t.logger.Info("found items to scrape", zap.Int("count", len(items)))

	extractor := NewFieldExtractor(p.Fields)
	return uc.eachItem(ctx, t, len(items), func(ctx context.Context, i int) (entity.Record, error) {
		if err := items[i].Click(ctx); err != nil {
			return entity.Record{}, fmt.Errorf("click: %w", err)
		}
		if err := uc.sleep(ctx, uc.opts.ClickSettle); err != nil {
			return entity.Record{}, err
		}
		return extractor.Extract(ctx, uc.page)
	})
}

// extractDetails collects item links and visits each detail page in turn.
func (uc *scraperUseCase) extractDetails(ctx context.Context, t *runTracker, p entity.Profile) (entity.ResultSet, error) {
	links, err := uc.page.Attributes(ctx, p.ItemSelector, p.Link())
	if err != nil {
		return nil, fmt.Errorf("collect links %s: %w", p.ItemSelector, err)
	}
	links = capItems(links, p.MaxItems)
	t.update(ctx, func(s *entity.RunStatus) { s.ItemsFound = len(links) })
	t.logger.Info("found item links", zap.Int("count", len(links)))

	base, err := p.Base()
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	limit := rate.Inf
	if uc.opts.DetailRate > 0 {
		limit = rate.Limit(uc.opts.DetailRate)
	}
	limiter := rate.NewLimiter(limit, 1)

	extractor := NewFieldExtractor(p.Fields)
	return uc.eachItem(ctx, t, len(links), func(ctx context.Context, i int) (entity.Record, error) {
		target, err := resolveLink(base, links[i])
		if err != nil {
			return entity.Record{}, err
		}
		if err := limiter.Wait(ctx); err != nil {
			return entity.Record{}, err
		}
		t.logger.Info("navigating to item", zap.Int("item", i+1), zap.String("url", target))

		if err := uc.navigate(ctx, target); err != nil {
			return entity.Record{}, err
		}
		if p.ReadySelector != "" {
			if err := uc.waitVisible(ctx, p.ReadySelector); err != nil {
				return entity.Record{}, fmt.Errorf("wait for %s: %w", p.ReadySelector, err)
			}
		}
		html, err := uc.page.HTML(ctx)
		if err != nil {
			return entity.Record{}, fmt.Errorf("snapshot page: %w", err)
		}
		doc, err := uc.parser.Parse(html)
		if err != nil {
			return entity.Record{}, fmt.Errorf("parse page: %w", err)
		}
		return extractor.Extract(ctx, doc)
	})
}

func capItems[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
