package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driven"
	"github.com/custodia-labs/flowhub/internal/core/ports/driving"
	"github.com/custodia-labs/flowhub/internal/logger"
)

// DefaultChunkSize bounds the documents stored per transaction.
const DefaultChunkSize = 100

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService parses documents and stores them exactly once.
type IngestService struct {
	store      driven.WorkflowStore
	normaliser driven.Normaliser
	factory    driven.ConnectorFactory
	repos      driven.RepoStore
	cache      driven.FacetCache
	chunkSize  int
	counters   ingestCounters
}

// NewIngestService creates a new ingest service.
// factory, repos and cache are optional; without a factory Import is unavailable.
func NewIngestService(
	store driven.WorkflowStore,
	normaliser driven.Normaliser,
	factory driven.ConnectorFactory,
	repos driven.RepoStore,
	cache driven.FacetCache,
	chunkSize int,
) *IngestService {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &IngestService{
		store:      store,
		normaliser: normaliser,
		factory:    factory,
		repos:      repos,
		cache:      cache,
		chunkSize:  chunkSize,
		counters:   newIngestCounters(),
	}
}

// IngestOne parses and stores a single document.
func (s *IngestService) IngestOne(ctx context.Context, raw domain.RawWorkflow) (*domain.IngestResult, error) {
	parsed, err := s.normaliser.Normalise(ctx, raw)
	if err != nil {
		s.counters.errors.Add(ctx, 1)
		return nil, err
	}

	outcomes, err := s.store.InsertChunk(ctx, []domain.ParsedWorkflow{*parsed})
	if err != nil {
		return nil, fmt.Errorf("store workflow: %w", err)
	}

	result := outcomeResult(parsed, outcomes[0])
	s.record(ctx, result.Status, 1)
	if result.Status == domain.IngestStatusOK {
		s.invalidateFacets()
	}
	return &result, nil
}

// IngestBatch parses and stores raws in chunks of one transaction each.
func (s *IngestService) IngestBatch(
	ctx context.Context, raws []domain.RawWorkflow, opts domain.BatchOptions,
) (*domain.BatchResult, error) {
	run := s.startRun(ctx, "ingest.batch", opts)
	defer run.end()

	for start := 0; start < len(raws); start += run.chunkSize {
		end := min(start+run.chunkSize, len(raws))
		if err := run.flush(raws[start:end]); err != nil {
			return run.result, run.fail(err)
		}
	}

	logger.Info("Ingest run %s: %d imported, %d duplicates, %d errors",
		run.result.RunID, run.result.Imported, run.result.Duplicates, run.result.Errors)
	return run.result, nil
}

// Import fetches every document from origin and ingests them in chunks.
// Fetching runs outside any storage transaction. A repository origin is
// recorded as a registration once the import completes. When the origin
// cannot be listed the import fails and no registration is recorded.
//
//nolint:gocognit // Orchestration function coordinating the fetch and store streams
func (s *IngestService) Import(
	ctx context.Context, origin string, opts domain.BatchOptions,
) (*domain.BatchResult, error) {
	if s.factory == nil {
		return nil, fmt.Errorf("import %s: %w", origin, domain.ErrUnsupportedSource)
	}

	// 1. Resolve the connector
	connector, err := s.factory.Create(ctx, origin)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	// 2. Check the origin is reachable before starting a run
	if err := connector.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate %s: %w", origin, err)
	}

	run := s.startRun(ctx, "ingest.import", opts)
	defer run.end()
	run.span.SetAttributes(
		attribute.String("flowhub.origin", origin),
		attribute.String("flowhub.connector", connector.Type()),
	)
	logger.Section("Import " + origin)

	// 3. Stream documents, flushing a chunk whenever the buffer fills
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	docsCh, errsCh := connector.FullSync(fetchCtx)

	buffer := make([]domain.RawWorkflow, 0, run.chunkSize)
	for docsCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			return run.result, run.fail(ctx.Err())
		case doc, ok := <-docsCh:
			if !ok {
				docsCh = nil
				continue
			}
			buffer = append(buffer, doc)
			if len(buffer) < run.chunkSize {
				continue
			}
			if err := run.flush(buffer); err != nil {
				return run.result, run.fail(err)
			}
			buffer = buffer[:0]
		case fetchErr, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if errors.Is(fetchErr, context.Canceled) {
				continue
			}
			if errors.Is(fetchErr, domain.ErrListingFailed) {
				return run.result, run.fail(fmt.Errorf("import %s: %w", origin, fetchErr))
			}
			logger.Warn("fetch failed: %v", fetchErr)
			run.fetchFailed(fetchErr)
		}
	}

	// 4. Flush the remainder
	if len(buffer) > 0 {
		if err := run.flush(buffer); err != nil {
			return run.result, run.fail(err)
		}
	}

	// 5. Record the repository registration
	if group := connector.OriginGroup(); group != "" && s.repos != nil {
		if err := s.repos.RecordSync(ctx, group, run.result.Imported); err != nil {
			return run.result, run.fail(fmt.Errorf("record sync: %w", err))
		}
	}

	logger.Info("Import %s complete: %d imported, %d duplicates, %d errors of %d",
		origin, run.result.Imported, run.result.Duplicates, run.result.Errors, run.result.Total)
	return run.result, nil
}

// Watch ingests every document the origin pushes until ctx ends. Invalid
// documents are reported and skipped; a storage failure stops the watch.
func (s *IngestService) Watch(ctx context.Context, origin string, report func(domain.IngestResult)) error {
	if s.factory == nil {
		return fmt.Errorf("watch %s: %w", origin, domain.ErrUnsupportedSource)
	}

	connector, err := s.factory.Create(ctx, origin)
	if err != nil {
		return fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	watcher, ok := connector.(driven.Watcher)
	if !ok {
		return fmt.Errorf("watch %s: %s origins cannot be watched: %w",
			origin, connector.Type(), domain.ErrUnsupportedSource)
	}

	docs, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch %s: %w", origin, err)
	}
	logger.Info("Watching %s for new workflows", origin)

	for doc := range docs {
		result, err := s.IngestOne(ctx, doc)
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			result = &domain.IngestResult{
				Status: domain.IngestStatusError,
				Name:   doc.OriginURL,
				Error:  err.Error(),
			}
		case err != nil:
			return fmt.Errorf("watch %s: %w", origin, err)
		}
		logger.Debug("Watched %s: %s", doc.OriginURL, result.Status)
		if report != nil {
			report(*result)
		}
	}
	return nil
}

// ingestRun is the state of one ingestion run. It is owned by a single
// call and never shared between runs.
type ingestRun struct {
	svc       *IngestService
	ctx       context.Context
	span      trace.Span
	opts      domain.BatchOptions
	chunkSize int
	result    *domain.BatchResult
}

func (s *IngestService) startRun(ctx context.Context, name string, opts domain.BatchOptions) *ingestRun {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = s.chunkSize
	}
	runID := uuid.NewString()

	ctx, span := tracer().Start(ctx, name, trace.WithAttributes(
		attribute.String("flowhub.run_id", runID),
		attribute.Int("flowhub.chunk_size", chunkSize),
	))
	logger.Debug("Ingest run %s started (chunk size %d)", runID, chunkSize)

	return &ingestRun{
		svc:       s,
		ctx:       ctx,
		span:      span,
		opts:      opts,
		chunkSize: chunkSize,
		result:    &domain.BatchResult{RunID: runID},
	}
}

// flush parses and stores one chunk in a single transaction. Results of
// the chunk are merged only after the transaction commits.
func (r *ingestRun) flush(raws []domain.RawWorkflow) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	ctx, span := tracer().Start(r.ctx, "ingest.chunk", trace.WithAttributes(
		attribute.Int("flowhub.chunk.documents", len(raws)),
	))
	defer span.End()

	items := make([]domain.IngestResult, len(raws))
	parsed := make([]domain.ParsedWorkflow, 0, len(raws))
	positions := make([]int, 0, len(raws))

	for i, raw := range raws {
		p, err := r.svc.normaliser.Normalise(ctx, raw)
		if err != nil {
			items[i] = domain.IngestResult{
				Status: domain.IngestStatusError,
				Name:   raw.OriginURL,
				Error:  err.Error(),
			}
			logger.Debug("Rejected %s: %v", raw.OriginURL, err)
			continue
		}
		parsed = append(parsed, *p)
		positions = append(positions, i)
	}

	if len(parsed) > 0 {
		outcomes, err := r.svc.store.InsertChunk(ctx, parsed)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "chunk rolled back")
			return fmt.Errorf("store chunk: %w", err)
		}
		for j, o := range outcomes {
			items[positions[j]] = outcomeResult(&parsed[j], o)
		}
	}

	var imported int
	for _, item := range items {
		r.result.Add(item)
		r.svc.record(ctx, item.Status, 1)
		if item.Status == domain.IngestStatusOK {
			imported++
		}
	}
	if r.opts.KeepItems {
		r.result.Items = append(r.result.Items, items...)
	}
	if imported > 0 {
		r.svc.invalidateFacets()
	}

	span.SetAttributes(attribute.Int("flowhub.chunk.imported", imported))
	logger.Debug("Chunk committed: %d documents, %d new (run total %d/%d)",
		len(raws), imported, r.result.Imported, r.result.Total)
	r.progress()
	return nil
}

// fetchFailed counts a document the connector could not deliver.
func (r *ingestRun) fetchFailed(err error) {
	item := domain.IngestResult{Status: domain.IngestStatusError, Error: err.Error()}
	r.result.Add(item)
	r.svc.record(r.ctx, item.Status, 1)
	if r.opts.KeepItems {
		r.result.Items = append(r.result.Items, item)
	}
	r.progress()
}

func (r *ingestRun) progress() {
	if r.opts.Progress == nil {
		return
	}
	snapshot := *r.result
	snapshot.Items = nil
	r.opts.Progress(snapshot)
}

func (r *ingestRun) fail(err error) error {
	r.span.RecordError(err)
	r.span.SetStatus(codes.Error, err.Error())
	logger.Error("Ingest run %s aborted: %v", r.result.RunID, err)
	return err
}

func (r *ingestRun) end() {
	r.span.SetAttributes(
		attribute.Int("flowhub.imported", r.result.Imported),
		attribute.Int("flowhub.duplicates", r.result.Duplicates),
		attribute.Int("flowhub.errors", r.result.Errors),
	)
	r.span.End()
}

func (s *IngestService) record(ctx context.Context, status domain.IngestStatus, n int64) {
	switch status {
	case domain.IngestStatusOK:
		s.counters.imported.Add(ctx, n)
	case domain.IngestStatusDuplicate:
		s.counters.duplicates.Add(ctx, n)
	case domain.IngestStatusError:
		s.counters.errors.Add(ctx, n)
	}
}

func (s *IngestService) invalidateFacets() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}

func outcomeResult(p *domain.ParsedWorkflow, o domain.InsertOutcome) domain.IngestResult {
	result := domain.IngestResult{Name: p.Name, Fingerprint: p.Fingerprint}
	if o.Duplicate {
		result.Status = domain.IngestStatusDuplicate
	} else {
		result.Status = domain.IngestStatusOK
		result.ID = o.ID
	}
	return result
}
