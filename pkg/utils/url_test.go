package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAbsoluteURL(t *testing.T) {
	base, err := url.Parse("https://www.ycombinator.com/companies/industry/ai")
	require.NoError(t, err)

	tests := map[string]string{
		"/companies/acme":            "https://www.ycombinator.com/companies/acme",
		"  /companies/beta \n":       "https://www.ycombinator.com/companies/beta",
		"https://other.example/x":    "https://other.example/x",
		"ml":                         "https://www.ycombinator.com/companies/industry/ml",
		"/companies/acme?tab=jobs#a": "https://www.ycombinator.com/companies/acme?tab=jobs#a",
	}
	for in, want := range tests {
		got, err := ToAbsoluteURL(base, in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	got, err := ToAbsoluteURL(nil, "/x")
	require.NoError(t, err)
	assert.Equal(t, "/x", got)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText(" a  b\n\tc "))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "one two", Preview("one two", 3))
	assert.Equal(t, "one two...", Preview("one  two three", 2))
}
