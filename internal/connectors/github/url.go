package github

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	webHost = "github.com"
	rawHost = "raw.githubusercontent.com"
)

// namePattern matches owner and repository names.
var namePattern = regexp.MustCompile(`^[\w.\-]+$`)

// Location is a parsed GitHub URL.
type Location struct {
	Owner string
	Repo  string

	// Branch is empty when the URL names the repository root, meaning the
	// default branch.
	Branch string

	// Path is a directory for tree URLs and a file for blob and raw URLs.
	Path string

	// File is true for blob and raw URLs.
	File bool
}

// RepoURL returns the canonical repository URL, used as the origin group.
func (l Location) RepoURL() string {
	return fmt.Sprintf("https://%s/%s/%s", webHost, l.Owner, l.Repo)
}

// RawURL returns the raw download URL of a file at ref.
func (l Location) RawURL(ref, path string) string {
	return fmt.Sprintf("https://%s/%s/%s/%s/%s", rawHost, l.Owner, l.Repo, ref, path)
}

// IsGitHubURL reports whether s points at github.com or its raw file host.
func IsGitHubURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == webHost || host == "www."+webHost || host == rawHost
}

// ParseURL parses a repository, tree, blob or raw file URL.
// A branch containing slashes cannot be told apart from a path; the first
// segment after tree/ or blob/ is taken as the branch.
func ParseURL(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if !IsGitHubURL(s) {
		return Location{}, fmt.Errorf("%w: %s", ErrInvalidURL, s)
	}
	u, _ := url.Parse(s)

	segs := splitPath(u.Path)
	if strings.ToLower(u.Hostname()) == rawHost {
		if len(segs) < 4 || !isJSON(segs[len(segs)-1]) {
			return Location{}, fmt.Errorf("%w: %s", ErrInvalidURL, s)
		}
		return newLocation(s, segs[0], segs[1], segs[2], strings.Join(segs[3:], "/"), true)
	}

	switch {
	case len(segs) == 2:
		return newLocation(s, segs[0], segs[1], "", "", false)
	case len(segs) >= 4 && segs[2] == "tree":
		return newLocation(s, segs[0], segs[1], segs[3], strings.Join(segs[4:], "/"), false)
	case len(segs) >= 5 && segs[2] == "blob" && isJSON(segs[len(segs)-1]):
		return newLocation(s, segs[0], segs[1], segs[3], strings.Join(segs[4:], "/"), true)
	}
	return Location{}, fmt.Errorf("%w: %s", ErrInvalidURL, s)
}

func newLocation(raw, owner, repo, branch, path string, file bool) (Location, error) {
	repo = strings.TrimSuffix(repo, ".git")
	if !namePattern.MatchString(owner) || !namePattern.MatchString(repo) {
		return Location{}, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	return Location{Owner: owner, Repo: repo, Branch: branch, Path: path, File: file}, nil
}

func splitPath(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func isJSON(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".json")
}
