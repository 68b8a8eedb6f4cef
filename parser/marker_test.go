package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPathSize(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		n        int
		rest     string
		ok       bool
	}{
		{"empty", "", 0, "", false},
		{"unrelated fragment", "section-2", 0, "section-2", false},
		{"marker only", "baseurl_path_size=1", 1, "", true},
		{"zero", "baseurl_path_size=0", 0, "", true},
		{"marker after fragment", "top#baseurl_path_size=2", 2, "top", true},
		{"marker before fragment", "baseurl_path_size=3#top", 3, "top", true},
		{"marker between tokens", "a#baseurl_path_size=1#b", 1, "a#b", true},
		{"duplicate markers", "baseurl_path_size=1#baseurl_path_size=5", 1, "", true},
		{"not an integer", "baseurl_path_size=abc", 0, "baseurl_path_size=abc", false},
		{"empty value", "baseurl_path_size=", 0, "baseurl_path_size=", false},
		{"negative", "baseurl_path_size=-1", 0, "baseurl_path_size=-1", false},
		{"spaces", "baseurl_path_size= 1", 0, "baseurl_path_size= 1", false},
		{"wrong key", "baseurl_path=1", 0, "baseurl_path=1", false},
		{"explicit plus sign", "baseurl_path_size=+1", 1, "", true},
		{"empty tokens collapse", "x##baseurl_path_size=1", 1, "x", true},
		{"trailing separator", "x#baseurl_path_size=1#", 1, "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, rest, ok := ExtractPathSize(tt.fragment)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.n, n)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestStripIgnore(t *testing.T) {
	rest, found := StripIgnore("url_ignore")
	assert.True(t, found)
	assert.Equal(t, "", rest)

	rest, found = StripIgnore("top#url_ignore")
	assert.True(t, found)
	assert.Equal(t, "top", rest)

	rest, found = StripIgnore("url_ignored")
	assert.False(t, found)
	assert.Equal(t, "url_ignored", rest)
}

func TestSetPathSize(t *testing.T) {
	raw, err := SetPathSize("https://www.github.com/wiki/part", 1)
	require.NoError(t, err)
	assert.Equal(t, "https://www.github.com/wiki/part#baseurl_path_size=1", raw)

	u, err := Parse(raw)
	require.NoError(t, err)
	assert.True(t, HasPathSize(u))

	_, err = SetPathSize("https://www.github.com", -1)
	assert.ErrorIs(t, err, ErrNegativePathSize)
}

func TestSetURLNotChange(t *testing.T) {
	raw := SetURLNotChange("https://cdn.example.com/img.png")
	u, err := Parse(raw)
	require.NoError(t, err)
	_, found := StripIgnore(u.Fragment())
	assert.True(t, found)
}

func TestURLWithPathSize(t *testing.T) {
	u, err := Parse("https://h/a#top#baseurl_path_size=oops")
	require.NoError(t, err)

	v := u.WithPathSize(1)
	assert.Equal(t, "top#baseurl_path_size=1", v.Fragment())
	assert.True(t, HasPathSize(v))

	assert.Equal(t, "baseurl_path_size=0", u.WithFragment("").WithPathSize(0).Fragment())
	assert.Equal(t, u, u.WithPathSize(-1))
}
