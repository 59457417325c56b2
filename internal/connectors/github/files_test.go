package github

import (
	"testing"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
)

func entries(paths ...string) []*gh.TreeEntry {
	out := make([]*gh.TreeEntry, 0, len(paths))
	for _, p := range paths {
		out = append(out, &gh.TreeEntry{Path: gh.Ptr(p), Type: gh.Ptr("blob"), SHA: gh.Ptr("sha-" + p)})
	}
	return out
}

func paths(es []*gh.TreeEntry) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.GetPath())
	}
	return out
}

func TestSelectWorkflowFiles(t *testing.T) {
	tree := append(entries(
		"top.json",
		"README.md",
		"export/one.json",
		"a/b/c/deep.json",
		"a/b/workflows/nested.json",
		"workflows/x/y/flow.json",
		"package.JSON",
	), &gh.TreeEntry{Path: gh.Ptr("dir.json"), Type: gh.Ptr("tree")})

	tests := []struct {
		name string
		tree []*gh.TreeEntry
		dir  string
		want []string
	}{
		{
			name: "shallow and workflows directories",
			tree: tree,
			want: []string{
				"top.json",
				"export/one.json",
				"a/b/workflows/nested.json",
				"workflows/x/y/flow.json",
				"package.JSON",
			},
		},
		{
			name: "under path",
			tree: tree,
			dir:  "a/b",
			want: []string{"a/b/c/deep.json", "a/b/workflows/nested.json"},
		},
		{
			name: "path with slashes trimmed",
			tree: tree,
			dir:  "/export/",
			want: []string{"export/one.json"},
		},
		{
			name: "path naming a file",
			tree: tree,
			dir:  "top.json",
			want: []string{"top.json"},
		},
		{
			name: "empty selection falls back to all json",
			tree: entries("a/b/c/one.json", "a/b/c/two.json", "notes.txt"),
			want: []string{"a/b/c/one.json", "a/b/c/two.json"},
		},
		{
			name: "unknown path falls back to all json",
			tree: entries("a.json"),
			dir:  "missing",
			want: []string{"a.json"},
		},
		{
			name: "no json at all",
			tree: entries("README.md"),
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paths(selectWorkflowFiles(tt.tree, tt.dir)))
		})
	}
}
