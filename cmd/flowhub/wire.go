package main

import (
	"context"
	"fmt"

	"github.com/custodia-labs/flowhub/internal/adapters/driven/cache"
	"github.com/custodia-labs/flowhub/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/flowhub/internal/adapters/driving/cli"
	"github.com/custodia-labs/flowhub/internal/config"
	"github.com/custodia-labs/flowhub/internal/connectors"
	"github.com/custodia-labs/flowhub/internal/connectors/github"
	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/services"
	"github.com/custodia-labs/flowhub/internal/normalisers/n8n"
)

// wire opens the catalogue and assembles the services for cfg.
func wire(_ context.Context, cfg *config.Config) (*cli.Services, error) {
	taxonomy, err := n8n.LoadTaxonomy(cfg.TaxonomyFile)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	facets := cache.NewFacetCache(cache.DefaultExpiration, cache.DefaultCleanupInterval)
	factory := connectors.NewFactory(github.Config{
		Token:           cfg.GitHub.Token,
		RequestsPerHour: cfg.GitHub.RequestsPerHour,
	})

	workflows := store.WorkflowStore()
	repos := store.RepoStore()

	catalog := services.NewCatalogService(workflows, facets, cfg.Search.PageSize)
	ingest := services.NewIngestService(workflows, n8n.New(taxonomy), factory, repos, facets, cfg.Ingest.ChunkSize)
	repoService := services.NewRepoService(repos, ingest, factory, facets)

	return &cli.Services{
		Catalog:    catalog,
		Ingest:     ingest,
		Repos:      repoService,
		Enrichment: services.NewEnrichmentService(workflows),
		Scheduler:  services.NewScheduler(schedulerConfig(cfg), store.SchedulerStore(), repoService, catalog),
		Close:      store.Close,
	}, nil
}

// schedulerConfig applies sync.interval to the repository sync task.
// A zero interval disables periodic sync.
func schedulerConfig(cfg *config.Config) domain.SchedulerConfig {
	sc := domain.DefaultSchedulerConfig()
	task := sc.TaskConfigs[domain.TaskIDRepoSync]
	task.Interval = cfg.Sync.Interval
	task.Enabled = cfg.Sync.Interval > 0
	sc.TaskConfigs[domain.TaskIDRepoSync] = task
	return sc
}
