package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/pane-scraper/internal/entity"
)

func listingProfile() entity.Profile {
	return entity.Profile{
		Name:           "jobs",
		Mode:           entity.ModeListing,
		StartURL:       "https://jobs.example.com/search",
		ListSelector:   "ul.results",
		ScrollSelector: "ul.results",
		ItemSelector:   "li.result",
		Fields: []entity.FieldSpec{
			{Name: "Job Title", Selector: "h2"},
			{Name: "Company Name", Selector: "span.company"},
		},
		Output: "jobs.csv",
	}
}

func pane(title, company string) mapSource {
	return mapSource{"h2": title, "span.company": company}
}

func TestScraper_ListingExtractsEveryItemInOrder(t *testing.T) {
	page := listingPage(pane("A", "Acme"), pane("B", "Beta"), pane("C", "Corp"))
	page.scroll = &heightTarget{heights: []int64{100, 250, 250}}
	sink := &fakeSink{name: "csv"}
	statuses := &stateRecorder{}

	status, err := newTestScraper(page, nil, statuses, sink).Run(context.Background(), listingProfile())

	require.NoError(t, err)
	assert.Equal(t, entity.StateDone, status.State)
	assert.Equal(t, 3, status.ItemsFound)
	assert.Equal(t, 3, status.Extracted)
	assert.True(t, status.LoadComplete)
	assert.Equal(t, []string{"csv.out"}, status.Outputs)
	assert.NotNil(t, status.FinishedAt)

	require.Len(t, sink.writes, 1)
	assert.Equal(t, []string{"Job Title", "Company Name"}, sink.writes[0].Header)
	assert.Equal(t, [][]string{{"A", "Acme"}, {"B", "Beta"}, {"C", "Corp"}}, sink.writes[0].Records.Rows())
	assert.Equal(t, "run-1", sink.writes[0].RunID)

	assert.Equal(t, []entity.RunState{
		entity.StateNavigating,
		entity.StateLoading,
		entity.StateExtracting,
		entity.StateExporting,
		entity.StateDone,
	}, statuses.states)
	assert.Equal(t, 2, page.scroll.scrolls)
}

func TestScraper_FailingItemIsIsolated(t *testing.T) {
	page := listingPage(pane("A", "Acme"), pane("B", "Beta"), pane("C", "Corp"), pane("D", "Delta"))
	page.items[1].(*fakeItem).clickErr = errors.New("element not interactable")
	sink := &fakeSink{name: "csv"}

	status, err := newTestScraper(page, nil, nil, sink).Run(context.Background(), listingProfile())

	require.NoError(t, err)
	assert.Equal(t, 4, status.ItemsFound)
	assert.Equal(t, 3, status.Extracted)
	assert.Equal(t, 1, status.Failed)
	require.Len(t, sink.writes, 1)
	assert.Equal(t, [][]string{{"A", "Acme"}, {"C", "Corp"}, {"D", "Delta"}}, sink.writes[0].Records.Rows())
}

func TestScraper_PanickingItemIsIsolated(t *testing.T) {
	page := listingPage(pane("A", "Acme"), pane("B", "Beta"))
	page.items[0].(*fakeItem).panics = true
	sink := &fakeSink{name: "csv"}

	status, err := newTestScraper(page, nil, nil, sink).Run(context.Background(), listingProfile())

	require.NoError(t, err)
	assert.Equal(t, 1, status.Failed)
	assert.Equal(t, 1, status.Extracted)
	assert.Equal(t, [][]string{{"B", "Beta"}}, sink.writes[0].Records.Rows())
}

func TestScraper_MissingFieldGetsSentinelAndItemSurvives(t *testing.T) {
	page := listingPage(pane("A", "Acme"), mapSource{"h2": "B"})
	sink := &fakeSink{name: "csv"}

	_, err := newTestScraper(page, nil, nil, sink).Run(context.Background(), listingProfile())

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "Acme"}, {"B", entity.DefaultSentinel}}, sink.writes[0].Records.Rows())
}

func TestScraper_NoItemsWritesNothing(t *testing.T) {
	page := listingPage()
	sink := &fakeSink{name: "csv"}

	status, err := newTestScraper(page, nil, nil, sink).Run(context.Background(), listingProfile())

	require.NoError(t, err)
	assert.Equal(t, entity.StateDone, status.State)
	assert.Zero(t, status.Extracted)
	assert.Empty(t, status.Outputs)
	assert.Empty(t, sink.writes)
}

func TestScraper_MaxItemsCapsTheList(t *testing.T) {
	page := listingPage(pane("A", "Acme"), pane("B", "Beta"), pane("C", "Corp"))
	sink := &fakeSink{name: "csv"}
	p := listingProfile()
	p.MaxItems = 2

	status, err := newTestScraper(page, nil, nil, sink).Run(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, 2, status.ItemsFound)
	assert.Len(t, sink.writes[0].Records, 2)
}

func TestScraper_NavigationFailureAborts(t *testing.T) {
	p := listingProfile()
	page := listingPage(pane("A", "Acme"))
	page.navErrs = map[string]error{p.StartURL: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	sink := &fakeSink{name: "csv"}
	statuses := &stateRecorder{}

	status, err := newTestScraper(page, nil, statuses, sink).Run(context.Background(), p)

	require.ErrorIs(t, err, ErrNavigation)
	assert.Equal(t, entity.StateAborted, status.State)
	assert.NotEmpty(t, status.Error)
	assert.Empty(t, sink.writes)
	assert.Equal(t, []entity.RunState{entity.StateNavigating, entity.StateAborted}, statuses.states)
}

func TestScraper_MissingContainerAborts(t *testing.T) {
	p := listingProfile()
	page := listingPage(pane("A", "Acme"))
	page.waitErrs = map[string]error{p.ListSelector: context.DeadlineExceeded}
	sink := &fakeSink{name: "csv"}

	status, err := newTestScraper(page, nil, nil, sink).Run(context.Background(), p)

	require.ErrorIs(t, err, ErrContainerMissing)
	assert.Equal(t, entity.StateAborted, status.State)
	assert.Empty(t, sink.writes)
}

func TestScraper_ManualLoginWaitsForOperator(t *testing.T) {
	p := listingProfile()
	p.ManualLogin = true
	gate := &fakeGate{}
	statuses := &stateRecorder{}

	_, err := newTestScraper(listingPage(pane("A", "Acme")), gate, statuses, &fakeSink{name: "csv"}).
		Run(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, 1, gate.calls)
	assert.Equal(t, []entity.RunState{
		entity.StateNavigating,
		entity.StateAwaitingOperator,
		entity.StateLoading,
		entity.StateExtracting,
		entity.StateExporting,
		entity.StateDone,
	}, statuses.states)
}

func TestScraper_GateNotCalledWithoutManualLogin(t *testing.T) {
	gate := &fakeGate{}

	_, err := newTestScraper(listingPage(pane("A", "Acme")), gate, nil, &fakeSink{name: "csv"}).
		Run(context.Background(), listingProfile())

	require.NoError(t, err)
	assert.Zero(t, gate.calls)
}

func TestScraper_GateFailureAborts(t *testing.T) {
	p := listingProfile()
	p.ManualLogin = true
	gate := &fakeGate{err: errors.New("stdin closed")}
	sink := &fakeSink{name: "csv"}

	status, err := newTestScraper(listingPage(pane("A", "Acme")), gate, nil, sink).Run(context.Background(), p)

	require.ErrorIs(t, err, ErrGateClosed)
	assert.Equal(t, entity.StateAborted, status.State)
	assert.Empty(t, sink.writes)
}

func TestScraper_IncompleteLoadStillExports(t *testing.T) {
	page := listingPage(pane("A", "Acme"))
	page.scroll = &heightTarget{heights: []int64{100, 200, 300, 400}}
	sink := &fakeSink{name: "csv"}
	uc := newTestScraper(page, nil, nil, sink)
	uc.opts.ScrollBudget = ScrollBudget{MaxIterations: 2}

	status, err := uc.Run(context.Background(), listingProfile())

	require.NoError(t, err)
	assert.False(t, status.LoadComplete)
	assert.Equal(t, entity.StateDone, status.State)
	assert.Len(t, sink.writes, 1)
}

func TestScraper_CancelledRunAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	page := listingPage(pane("A", "Acme"), pane("B", "Beta"))
	page.items[0] = cancelItem{cancel: cancel}
	sink := &fakeSink{name: "csv"}

	status, err := newTestScraper(page, nil, nil, sink).Run(ctx, listingProfile())

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, entity.StateAborted, status.State)
	assert.Empty(t, sink.writes)
}

type cancelItem struct {
	cancel context.CancelFunc
}

func (c cancelItem) Click(ctx context.Context) error {
	c.cancel()
	return ctx.Err()
}

func detailProfile() entity.Profile {
	return entity.Profile{
		Name:          "companies",
		Mode:          entity.ModeDetail,
		StartURL:      "https://dir.example.com/companies",
		BaseURL:       "https://dir.example.com",
		ListSelector:  "a.company",
		ItemSelector:  "a.company",
		ReadySelector: "h1",
		Fields: []entity.FieldSpec{
			{Name: "Company Name", Selector: "h1", Required: true},
			{Name: "Description", Selector: "div.prose", Sentinel: "Not found"},
		},
		Output: "companies.csv",
	}
}

func TestScraper_DetailVisitsEachLink(t *testing.T) {
	page := &fakePage{
		links: []string{"/companies/acme", "", "/companies/beta", "https://other.example.com/x"},
		pages: map[string]string{
			"https://dir.example.com/companies/acme": "h1=Acme\ndiv.prose=Rockets",
			"https://dir.example.com/companies/beta": "h1=Beta",
			"https://other.example.com/x":            "div.prose=no heading",
		},
	}
	sink := &fakeSink{name: "csv"}

	status, err := newTestScraper(page, nil, nil, sink).Run(context.Background(), detailProfile())

	require.NoError(t, err)
	assert.Equal(t, 4, status.ItemsFound)
	assert.Equal(t, 2, status.Extracted)
	assert.Equal(t, 1, status.Skipped)
	assert.Equal(t, 1, status.Failed)
	assert.True(t, status.LoadComplete)
	assert.Equal(t, []string{
		"https://dir.example.com/companies",
		"https://dir.example.com/companies/acme",
		"https://dir.example.com/companies/beta",
		"https://other.example.com/x",
	}, page.navigated)
	assert.Equal(t, [][]string{{"Acme", "Rockets"}, {"Beta", "Not found"}}, sink.writes[0].Records.Rows())
}

func TestScraper_DetailNavigationFailureSkipsOnlyThatItem(t *testing.T) {
	page := &fakePage{
		links:   []string{"/a", "/b"},
		navErrs: map[string]error{"https://dir.example.com/a": errors.New("timeout")},
		pages: map[string]string{
			"https://dir.example.com/b": "h1=Beta",
		},
	}
	sink := &fakeSink{name: "csv"}

	status, err := newTestScraper(page, nil, nil, sink).Run(context.Background(), detailProfile())

	require.NoError(t, err)
	assert.Equal(t, 1, status.Failed)
	assert.Equal(t, [][]string{{"Beta", "Not found"}}, sink.writes[0].Records.Rows())
}

func TestScraper_InvalidProfile(t *testing.T) {
	p := listingProfile()
	p.Fields = nil

	status, err := newTestScraper(listingPage(), nil, nil).Run(context.Background(), p)

	require.Error(t, err)
	assert.Nil(t, status)
}
