package github

import (
	"strings"

	gh "github.com/google/go-github/v80/github"
)

// selectWorkflowFiles picks the .json blobs of a tree.
// With dir set, only files under it are kept. Otherwise files inside a
// workflows/ directory or at most one directory deep are kept. An empty
// selection falls back to every .json blob.
func selectWorkflowFiles(entries []*gh.TreeEntry, dir string) []*gh.TreeEntry {
	dir = strings.Trim(dir, "/")

	var all, selected []*gh.TreeEntry
	for _, entry := range entries {
		path := entry.GetPath()
		if entry.GetType() != "blob" || !isJSON(path) {
			continue
		}
		all = append(all, entry)

		if dir != "" {
			if path == dir || strings.HasPrefix(path, dir+"/") {
				selected = append(selected, entry)
			}
			continue
		}
		if strings.HasPrefix(path, "workflows/") || strings.Contains(path, "/workflows/") ||
			strings.Count(path, "/") <= 1 {
			selected = append(selected, entry)
		}
	}

	if len(selected) == 0 {
		return all
	}
	return selected
}
