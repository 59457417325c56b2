package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Location
	}{
		{
			name: "repository root",
			url:  "https://github.com/acme/flows",
			want: Location{Owner: "acme", Repo: "flows"},
		},
		{
			name: "repository root with trailing slash and .git",
			url:  "https://github.com/acme/flows.git/",
			want: Location{Owner: "acme", Repo: "flows"},
		},
		{
			name: "tree with branch only",
			url:  "https://github.com/acme/flows/tree/develop",
			want: Location{Owner: "acme", Repo: "flows", Branch: "develop"},
		},
		{
			name: "tree with path",
			url:  "https://github.com/acme/flows/tree/main/export/slack",
			want: Location{Owner: "acme", Repo: "flows", Branch: "main", Path: "export/slack"},
		},
		{
			name: "blob file",
			url:  "https://github.com/acme/flows/blob/main/workflows/digest.json",
			want: Location{Owner: "acme", Repo: "flows", Branch: "main", Path: "workflows/digest.json", File: true},
		},
		{
			name: "raw file",
			url:  "https://raw.githubusercontent.com/acme/flows/main/digest.json",
			want: Location{Owner: "acme", Repo: "flows", Branch: "main", Path: "digest.json", File: true},
		},
		{
			name: "www host and surrounding spaces",
			url:  "  https://www.github.com/acme/n8n.flows  ",
			want: Location{Owner: "acme", Repo: "n8n.flows"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseURL_Invalid(t *testing.T) {
	tests := []string{
		"",
		"not a url",
		"ftp://github.com/acme/flows",
		"https://gitlab.com/acme/flows",
		"https://github.com/acme",
		"https://github.com/acme/flows/blob/main/readme.md",
		"https://github.com/acme/flows/issues/1",
		"https://raw.githubusercontent.com/acme/flows/main",
		"https://github.com/ac me/flows",
	}

	for _, u := range tests {
		t.Run(u, func(t *testing.T) {
			_, err := ParseURL(u)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidURL)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestLocation_URLs(t *testing.T) {
	loc := Location{Owner: "acme", Repo: "flows"}
	assert.Equal(t, "https://github.com/acme/flows", loc.RepoURL())
	assert.Equal(t, "https://raw.githubusercontent.com/acme/flows/main/a/b.json", loc.RawURL("main", "a/b.json"))
}

func TestIsGitHubURL(t *testing.T) {
	assert.True(t, IsGitHubURL("https://github.com/acme/flows"))
	assert.True(t, IsGitHubURL("http://raw.githubusercontent.com/acme/flows/main/a.json"))
	assert.False(t, IsGitHubURL("/home/user/flows"))
	assert.False(t, IsGitHubURL("https://example.com/acme/flows"))
}

func TestWebURL(t *testing.T) {
	tests := []struct {
		origin string
		want   string
	}{
		{
			"https://raw.githubusercontent.com/acme/flows/main/workflows/a.json",
			"https://github.com/acme/flows/blob/main/workflows/a.json",
		},
		{"https://raw.githubusercontent.com/acme/flows", ""},
		{"file://a.json", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			assert.Equal(t, tt.want, WebURL(tt.origin))
		})
	}
}
