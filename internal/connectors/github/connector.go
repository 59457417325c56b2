package github

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driven"
	"github.com/custodia-labs/flowhub/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector fetches workflow documents from one GitHub location.
type Connector struct {
	loc    Location
	client *Client
	mu     sync.Mutex
	branch string
	closed bool
}

// New creates a connector for loc.
func New(loc Location, client *Client) *Connector {
	return &Connector{loc: loc, client: client, branch: loc.Branch}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "github"
}

// OriginGroup returns the repository URL for repository and tree imports.
// Single-file imports carry no group and create no registration.
func (c *Connector) OriginGroup() string {
	if c.loc.File {
		return ""
	}
	return c.loc.RepoURL()
}

// Validate resolves the branch, which also confirms the repository exists.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.resolveBranch(ctx)
	return err
}

// FullSync streams every selected workflow file. A file that cannot be
// fetched after retries is reported on the error channel.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawWorkflow, <-chan error) {
	docsChan := make(chan domain.RawWorkflow)
	errsChan := make(chan error, 1)

	go func() {
		defer close(docsChan)
		defer close(errsChan)

		send := func(doc domain.RawWorkflow) bool {
			select {
			case <-ctx.Done():
				return false
			case docsChan <- doc:
				return true
			}
		}
		fail := func(err error) bool {
			select {
			case <-ctx.Done():
				return false
			case errsChan <- err:
				return true
			}
		}

		branch, err := c.resolveBranch(ctx)
		if err != nil {
			fail(fmt.Errorf("%w: resolve branch: %w", domain.ErrListingFailed, err))
			return
		}

		if c.loc.File {
			content, err := c.client.GetFile(ctx, c.loc.Owner, c.loc.Repo, branch, c.loc.Path)
			if err != nil {
				fail(fmt.Errorf("%s: %w", c.loc.Path, err))
				return
			}
			send(domain.RawWorkflow{Content: content, OriginURL: c.loc.RawURL(branch, c.loc.Path)})
			return
		}

		tree, err := c.client.GetTree(ctx, c.loc.Owner, c.loc.Repo, branch)
		if err != nil {
			fail(fmt.Errorf("%w: list files: %w", domain.ErrListingFailed, err))
			return
		}
		if tree.GetTruncated() {
			logger.Warn("github: tree of %s is truncated, some files will be skipped", c.loc.RepoURL())
		}

		files := selectWorkflowFiles(tree.Entries, c.loc.Path)
		logger.Info("github: %d JSON files to import from %s/%s", len(files), c.loc.Owner, c.loc.Repo)

		group := c.OriginGroup()
		for _, entry := range files {
			content, err := c.client.GetBlob(ctx, c.loc.Owner, c.loc.Repo, entry.GetSHA())
			if err != nil {
				if ctx.Err() != nil || !fail(fmt.Errorf("%s: %w", entry.GetPath(), err)) {
					return
				}
				continue
			}
			if !send(domain.RawWorkflow{
				Content:     content,
				OriginURL:   c.loc.RawURL(branch, entry.GetPath()),
				OriginGroup: group,
			}) {
				return
			}
		}
	}()

	return docsChan, errsChan
}

// Close releases resources.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Connector) resolveBranch(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", domain.ErrConnectorClosed
	}
	branch := c.branch
	c.mu.Unlock()

	if branch != "" {
		return branch, nil
	}

	branch, err := c.client.DefaultBranch(ctx, c.loc.Owner, c.loc.Repo)
	if err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrRepoNotFound, c.loc.RepoURL())
		}
		return "", err
	}

	c.mu.Lock()
	c.branch = branch
	c.mu.Unlock()
	return branch, nil
}
