package profiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/pane-scraper/internal/entity"
)

func TestBuiltin_AreValid(t *testing.T) {
	for name, p := range Builtin() {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, p.Validate())
		})
	}
	assert.Equal(t, []string{"linkedin-jobs", "yc-ai-companies"}, Names())
}

func TestLinkedInJobs(t *testing.T) {
	p := LinkedInJobs()
	assert.True(t, p.ManualLogin)
	assert.Equal(t, entity.ModeListing, p.Mode)
	assert.Equal(t, p.ListSelector, p.ScrollSelector)
	for _, f := range p.Fields {
		assert.Equal(t, "N/A", f.SentinelValue(), f.Name)
	}
}

func TestYCCompanies(t *testing.T) {
	p := YCCompanies()
	assert.False(t, p.ManualLogin)
	assert.Equal(t, entity.ModeDetail, p.Mode)
	assert.Equal(t, 100, p.MaxItems)
	assert.Equal(t, []string{"Company Name", "Description", "Website Link", "Visible Page Text"}, fieldNames(p))
}

func fieldNames(p entity.Profile) []string {
	out := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		out[i] = f.Name
	}
	return out
}

func TestParse_RoundTripsMarshal(t *testing.T) {
	data, err := Marshal(YCCompanies())
	require.NoError(t, err)

	p, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, YCCompanies(), p)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`
name: jobs
mode: listing
start_url: https://example.com
list_selector: ul
item_selector: li
output: jobs.csv
fields:
  - name: Title
    selectr: h2
`))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("name: jobs\nmode: listing\n"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	p, err := Resolve("linkedin-jobs", "")
	require.NoError(t, err)
	assert.Equal(t, "linkedin-jobs", p.Name)

	_, err = Resolve("nope", "")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: custom
mode: detail
start_url: https://example.com/list
list_selector: ul
item_selector: a.item
ready_selector: h1
output: custom.csv
fields:
  - name: Title
    selector: h1
    required: true
  - name: Link
    selector: a.site
    attribute: href
    sentinel: Not found
`), 0o644))

	p, err = Resolve("ignored", path)
	require.NoError(t, err)
	assert.Equal(t, "custom", p.Name)
	assert.Equal(t, entity.ModeDetail, p.Mode)
	require.Len(t, p.Fields, 2)
	assert.True(t, p.Fields[0].Required)
	assert.Equal(t, "href", p.Fields[1].Attribute)
}
