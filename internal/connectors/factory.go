package connectors

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/flowhub/internal/connectors/filesystem"
	"github.com/custodia-labs/flowhub/internal/connectors/github"
	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var (
	_ driven.ConnectorFactory = (*Factory)(nil)
	_ driven.GroupResolver    = (*Factory)(nil)
)

// Factory creates connectors by origin. GitHub connectors share one API
// client so they draw from the same rate limit.
type Factory struct {
	githubConfig github.Config

	mu           sync.Mutex
	githubClient *github.Client
}

// NewFactory creates a factory using cfg for GitHub access.
func NewFactory(cfg github.Config) *Factory {
	return &Factory{githubConfig: cfg}
}

// Create returns a connector for origin: a GitHub repository, tree, blob or
// raw URL, or a local directory or file path.
func (f *Factory) Create(ctx context.Context, origin string) (driven.Connector, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return nil, fmt.Errorf("%w: empty origin", domain.ErrInvalidInput)
	}

	if github.IsGitHubURL(origin) {
		loc, err := github.ParseURL(origin)
		if err != nil {
			return nil, err
		}
		client, err := f.github(ctx)
		if err != nil {
			return nil, err
		}
		return github.New(loc, client), nil
	}

	if path, ok := filesystem.LocalPath(origin); ok && path != "" {
		return filesystem.New(path, ""), nil
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedSource, origin)
}

// Group returns the canonical repository URL for a GitHub repository or
// tree URL. Local paths and single files form no group.
func (f *Factory) Group(origin string) (string, error) {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return "", fmt.Errorf("%w: empty origin", domain.ErrInvalidInput)
	}
	if !github.IsGitHubURL(origin) {
		return "", fmt.Errorf("%w: %s is not a repository URL", domain.ErrUnsupportedSource, origin)
	}
	loc, err := github.ParseURL(origin)
	if err != nil {
		return "", err
	}
	if loc.File {
		return "", fmt.Errorf("%w: %s names a single file", domain.ErrUnsupportedSource, origin)
	}
	return loc.RepoURL(), nil
}

func (f *Factory) github(ctx context.Context) (*github.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.githubClient == nil {
		// The client outlives this request.
		client, err := github.NewClient(context.WithoutCancel(ctx), f.githubConfig)
		if err != nil {
			return nil, err
		}
		f.githubClient = client
	}
	return f.githubClient, nil
}
