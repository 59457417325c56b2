// Package filesystem reads workflow documents from a local directory or file.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driven"
	"github.com/custodia-labs/flowhub/internal/logger"
)

// URIScheme prefixes the origin URL of every local document.
const URIScheme = "file://"

// Ensure Connector implements the interfaces.
var (
	_ driven.Connector = (*Connector)(nil)
	_ driven.Watcher   = (*Connector)(nil)
)

// Connector imports *.json documents from the top level of a directory,
// or a single file when rootPath names one.
type Connector struct {
	rootPath string
	group    string
	mu       sync.Mutex
	closed   bool
	watcher  *fsnotify.Watcher
}

// New creates a connector for rootPath. group is stored as the origin group
// of every document and may be empty.
func New(rootPath, group string) *Connector {
	return &Connector{rootPath: rootPath, group: group}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// OriginGroup returns the group stamped on imported documents.
func (c *Connector) OriginGroup() string {
	return c.group
}

// Validate checks that the root path exists.
func (c *Connector) Validate(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := os.Stat(c.rootPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: path %s", domain.ErrNotFound, c.rootPath)
		}
		return fmt.Errorf("stat %s: %w", c.rootPath, err)
	}
	return nil
}

// FullSync streams every matching document in name order.
// Unreadable files are reported on the error channel.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawWorkflow, <-chan error) {
	docsChan := make(chan domain.RawWorkflow)
	errsChan := make(chan error, 1)

	go func() {
		defer close(docsChan)
		defer close(errsChan)

		if err := c.checkOpen(); err != nil {
			errsChan <- err
			return
		}

		paths, err := c.listFiles()
		if err != nil {
			errsChan <- fmt.Errorf("%w: %w", domain.ErrListingFailed, err)
			return
		}
		logger.Debug("filesystem: %d JSON files in %s", len(paths), c.rootPath)

		for _, path := range paths {
			doc, err := c.readDocument(path)
			if err != nil {
				select {
				case <-ctx.Done():
					return
				case errsChan <- err:
				}
				continue
			}

			select {
			case <-ctx.Done():
				return
			case docsChan <- doc:
			}
		}
	}()

	return docsChan, errsChan
}

// Watch streams documents created or written after the call.
// Only the top level of the root directory is watched.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.RawWorkflow, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, domain.ErrConnectorClosed
	}
	if c.watcher != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: already watching %s", domain.ErrInvalidInput, c.rootPath)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(c.rootPath); err != nil {
		c.mu.Unlock()
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
	}
	c.watcher = watcher
	c.mu.Unlock()

	docsChan := make(chan domain.RawWorkflow)

	go func() {
		defer close(docsChan)
		defer c.stopWatching(watcher)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				doc := c.handleFsEvent(event)
				if doc == nil {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case docsChan <- *doc:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("filesystem: watch error: %v", err)
			}
		}
	}()

	return docsChan, nil
}

// handleFsEvent converts a create or write event on a visible .json file
// into a document. Other events return nil.
func (c *Connector) handleFsEvent(event fsnotify.Event) *domain.RawWorkflow {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return nil
	}
	if !isWorkflowFile(event.Name) {
		return nil
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return nil
	}

	doc, err := c.readDocument(event.Name)
	if err != nil {
		logger.Warn("filesystem: %v", err)
		return nil
	}
	return &doc
}

// Close stops any active watch and rejects further use.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

func (c *Connector) stopWatching(w *fsnotify.Watcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher == w {
		_ = w.Close()
		c.watcher = nil
	}
}

func (c *Connector) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrConnectorClosed
	}
	return nil
}

// listFiles returns the sorted *.json files under the root, or the root
// itself when it is a file.
func (c *Connector) listFiles() ([]string, error) {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", c.rootPath, err)
	}
	if !info.IsDir() {
		return []string{c.rootPath}, nil
	}

	entries, err := os.ReadDir(c.rootPath)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", c.rootPath, err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isWorkflowFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(c.rootPath, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func (c *Connector) readDocument(path string) (domain.RawWorkflow, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawWorkflow{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return domain.RawWorkflow{
		Content:     content,
		OriginURL:   URIScheme + filepath.Base(path),
		OriginGroup: c.group,
	}, nil
}

// isWorkflowFile reports whether name is a visible file with a .json extension.
func isWorkflowFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".json")
}
