// Package cli implements the flowhub command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/custodia-labs/flowhub/internal/config"
	"github.com/custodia-labs/flowhub/internal/core/ports/driving"
	"github.com/custodia-labs/flowhub/internal/logger"
	"github.com/custodia-labs/flowhub/internal/telemetry"
)

// annotationNoServices marks commands that run without opening the catalogue.
const annotationNoServices = "flowhub/no-services"

// Services holds the driving ports the commands call.
type Services struct {
	Catalog    driving.CatalogService
	Ingest     driving.IngestService
	Repos      driving.RepoService
	Enrichment driving.EnrichmentService
	Scheduler  driving.Scheduler

	// Close releases the resources behind the services.
	Close func() error
}

// Bootstrap builds the services from the loaded configuration.
type Bootstrap func(ctx context.Context, cfg *config.Config) (*Services, error)

var (
	version = "dev"

	cfgFile   string
	verbose   bool
	traceFlag bool

	v   = viper.New()
	cfg *config.Config

	bootstrap Bootstrap
	services  *Services
	injected  bool
	tracing   *telemetry.Provider

	catalogService    driving.CatalogService
	ingestService     driving.IngestService
	repoService       driving.RepoService
	enrichmentService driving.EnrichmentService
	schedulerService  driving.Scheduler
)

var rootCmd = &cobra.Command{
	Use:   "flowhub",
	Short: "Catalogue and search automation workflows",
	Long: `flowhub imports n8n-style workflow documents from files, directories and
GitHub repositories, deduplicates them by content, and searches them by text,
category, node type and enrichment score.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.flowhub/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "write OpenTelemetry spans to stderr")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the catalogue database")

	_ = v.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

// setup loads configuration and opens the services before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if cmd.Annotations[annotationNoServices] == "true" {
		return nil
	}

	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	if tracing == nil {
		tracing, err = telemetry.NewProvider(traceFlag, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}

	if injected || services != nil {
		return nil
	}
	if bootstrap == nil {
		return errors.New("flowhub is not wired: no bootstrap configured")
	}

	logger.Debug("Opening catalogue in %s", cfg.DataDir)
	svc, err := bootstrap(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("open catalogue: %w", err)
	}
	useServices(svc)
	return nil
}

func useServices(svc *Services) {
	services = svc
	catalogService = svc.Catalog
	ingestService = svc.Ingest
	repoService = svc.Repos
	enrichmentService = svc.Enrichment
	schedulerService = svc.Scheduler
}

// SetBootstrap registers the function that builds services from configuration.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects ready-made services; setup then skips Bootstrap.
func SetServices(svc *Services) {
	useServices(svc)
	injected = true
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(ver string) {
	version = ver
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)

	if services != nil && !injected && services.Close != nil {
		if closeErr := services.Close(); closeErr != nil {
			logger.Warn("closing catalogue: %v", closeErr)
		}
	}
	if tracing != nil {
		if shutdownErr := tracing.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			logger.Warn("flushing traces: %v", shutdownErr)
		}
	}
	return err
}

func requireCatalog() error {
	if catalogService == nil {
		return errors.New("catalog service not configured")
	}
	return nil
}
