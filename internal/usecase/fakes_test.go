package usecase

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/user/pane-scraper/internal/entity"
	"github.com/user/pane-scraper/internal/repository"
	"github.com/user/pane-scraper/pkg/metrics"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

// mapSource is a FieldSource keyed by selector. Keys of the form
// "selector@attr" answer attribute lookups.
type mapSource map[string]string

func (m mapSource) Lookup(_ context.Context, selector, attr string) (string, bool, error) {
	key := selector
	if attr != "" {
		key += "@" + attr
	}
	v, ok := m[key]
	return v, ok, nil
}

// heightTarget replays a fixed sequence of scroll heights. Reading past the
// end repeats the last value.
type heightTarget struct {
	heights []int64
	reads   int
	scrolls int
	readErr error
}

func (h *heightTarget) ScrollHeight(context.Context) (int64, error) {
	if h.readErr != nil {
		return 0, h.readErr
	}
	i := h.reads
	if i >= len(h.heights) {
		i = len(h.heights) - 1
	}
	h.reads++
	return h.heights[i], nil
}

func (h *heightTarget) ScrollToEnd(context.Context) error {
	h.scrolls++
	return nil
}

type fakeItem struct {
	page     *fakePage
	idx      int
	clickErr error
	panics   bool
}

func (it *fakeItem) Click(context.Context) error {
	if it.panics {
		panic("detached node")
	}
	if it.clickErr != nil {
		return it.clickErr
	}
	it.page.current = it.idx
	return nil
}

// fakePage emulates a listing page with a shared detail pane, or a set of
// detail pages keyed by URL.
type fakePage struct {
	navErrs   map[string]error
	waitErrs  map[string]error
	navigated []string
	url       string

	scroll *heightTarget

	// listing mode
	items   []repository.ListItem
	panes   []mapSource
	current int

	// detail mode
	links []string
	pages map[string]string
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	if err := p.navErrs[url]; err != nil {
		return err
	}
	p.url = url
	return nil
}

func (p *fakePage) WaitVisible(_ context.Context, selector string) error {
	return p.waitErrs[selector]
}

func (p *fakePage) ScrollTarget(string) repository.ScrollTarget {
	if p.scroll == nil {
		p.scroll = &heightTarget{heights: []int64{100}}
	}
	return p.scroll
}

func (p *fakePage) ListItems(context.Context, string) ([]repository.ListItem, error) {
	return p.items, nil
}

func (p *fakePage) Attributes(context.Context, string, string) ([]string, error) {
	return p.links, nil
}

func (p *fakePage) HTML(context.Context) (string, error) {
	html, ok := p.pages[p.url]
	if !ok {
		return "", errors.New("no page loaded")
	}
	return html, nil
}

func (p *fakePage) Lookup(ctx context.Context, selector, attr string) (string, bool, error) {
	if p.current < 0 || p.current >= len(p.panes) {
		return "", false, nil
	}
	return p.panes[p.current].Lookup(ctx, selector, attr)
}

// listingPage builds one clickable item per pane.
func listingPage(panes ...mapSource) *fakePage {
	p := &fakePage{current: -1, panes: panes}
	for i := range panes {
		p.items = append(p.items, &fakeItem{page: p, idx: i})
	}
	return p
}

type fakeGate struct {
	calls int
	err   error
}

func (g *fakeGate) Await(context.Context, string) error {
	g.calls++
	return g.err
}

type fakeSink struct {
	name   string
	err    error
	writes []repository.Export
}

func (s *fakeSink) Name() string   { return s.name }
func (s *fakeSink) Target() string { return s.name + ".out" }

func (s *fakeSink) Write(_ context.Context, export repository.Export) error {
	s.writes = append(s.writes, export)
	return s.err
}

// stateRecorder is a StatusRepository that remembers the sequence of states.
type stateRecorder struct {
	mu     sync.Mutex
	states []entity.RunState
	last   *entity.RunStatus
}

func (r *stateRecorder) Save(_ context.Context, s *entity.RunStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.states); n == 0 || r.states[n-1] != s.State {
		r.states = append(r.states, s.State)
	}
	cp := *s
	r.last = &cp
	return nil
}

func (r *stateRecorder) Get(_ context.Context, runID string) (*entity.RunStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil || r.last.RunID != runID {
		return nil, repository.ErrStatusNotFound
	}
	return r.last, nil
}

func (r *stateRecorder) Latest(ctx context.Context) (*entity.RunStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return nil, repository.ErrStatusNotFound
	}
	return r.last, nil
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newTestScraper(page repository.PageRepository, gate repository.OperatorGate, statusRepo repository.StatusRepository, sinks ...repository.RecordSink) *scraperUseCase {
	logger := zap.NewNop()
	uc := NewScraperUseCase(page, htmlParser{}, gate, NewExporter(sinks, logger), statusRepo, Options{
		NavTimeout:  time.Second,
		WaitTimeout: time.Second,
	}, logger).(*scraperUseCase)
	uc.newRunID = func() string { return "run-1" }
	uc.sleep = noSleep
	return uc
}

// htmlParser treats the page snapshot as "selector=value" lines.
type htmlParser struct{}

func (htmlParser) Parse(html string) (repository.FieldSource, error) {
	src := mapSource{}
	for _, line := range strings.Split(html, "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			src[k] = v
		}
	}
	return src, nil
}
