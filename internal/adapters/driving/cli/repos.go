package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flowhub/internal/core/domain"
	"github.com/custodia-labs/flowhub/internal/core/ports/driving"
)

var (
	reposJSON    bool
	reposSyncAll bool
	reposAddSync bool
)

// syncPollInterval is how often repos sync refreshes its progress line.
var syncPollInterval = 500 * time.Millisecond

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Manage registered repositories",
	Long: `Repositories are registered when they are first imported. Registered
repositories can be re-synced to pick up new workflows; removing one deletes
every workflow imported from it.`,
}

var reposAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Register a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runReposAdd,
}

var reposListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered repositories",
	Args:  cobra.NoArgs,
	RunE:  runReposList,
}

var reposSyncCmd = &cobra.Command{
	Use:   "sync [repo-id]",
	Short: "Re-import registered repositories",
	Long: `Re-imports a registered repository. Only workflows not already in the
catalogue are added. With --all, every enabled repository is synced and a
failure of one does not stop the others.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReposSync,
}

var reposEnableCmd = &cobra.Command{
	Use:   "enable <repo-id>",
	Short: "Include a repository in sync --all",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setRepoEnabled(cmd, args[0], true) },
}

var reposDisableCmd = &cobra.Command{
	Use:   "disable <repo-id>",
	Short: "Exclude a repository from sync --all",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setRepoEnabled(cmd, args[0], false) },
}

var reposRemoveCmd = &cobra.Command{
	Use:   "remove <repo-id>",
	Short: "Remove a repository and all workflows imported from it",
	Args:  cobra.ExactArgs(1),
	RunE:  runReposRemove,
}

func init() {
	reposListCmd.Flags().BoolVar(&reposJSON, "json", false, "output as JSON")
	reposSyncCmd.Flags().BoolVar(&reposSyncAll, "all", false, "sync every enabled repository")
	reposAddCmd.Flags().BoolVar(&reposAddSync, "sync", false, "import the repository right away")

	reposCmd.AddCommand(reposAddCmd, reposListCmd, reposSyncCmd, reposEnableCmd, reposDisableCmd, reposRemoveCmd)
	rootCmd.AddCommand(reposCmd)
}

func requireRepos() error {
	if repoService == nil {
		return errors.New("repository service not configured")
	}
	return nil
}

func runReposAdd(cmd *cobra.Command, args []string) error {
	if err := requireRepos(); err != nil {
		return err
	}
	repo, err := repoService.Register(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	cmd.Printf("Registered %s as repository %d.\n", repo.URL, repo.ID)

	if !reposAddSync {
		return nil
	}
	return syncOne(cmd, repo.ID)
}

func runReposList(cmd *cobra.Command, _ []string) error {
	if err := requireRepos(); err != nil {
		return err
	}
	repos, err := repoService.List(cmd.Context())
	if err != nil {
		return err
	}

	if reposJSON {
		if repos == nil {
			repos = []domain.RepoRegistration{}
		}
		return printJSON(cmd, repos)
	}
	if len(repos) == 0 {
		cmd.Println("No repositories registered.")
		return nil
	}

	for _, r := range repos {
		state := "enabled"
		if !r.Enabled {
			state = "disabled"
		}
		synced := "never"
		if !r.LastSyncedAt.IsZero() {
			synced = r.LastSyncedAt.Local().Format("2006-01-02 15:04")
		}
		cmd.Printf("  [%d] %s\n", r.ID, r.URL)
		cmd.Printf("      %d workflows, last synced %s, %s\n", r.WorkflowCount, synced, state)
	}
	return nil
}

func runReposSync(cmd *cobra.Command, args []string) error {
	if err := requireRepos(); err != nil {
		return err
	}

	if reposSyncAll || len(args) == 0 {
		return syncAll(cmd)
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return syncOne(cmd, id)
}

func syncOne(cmd *cobra.Command, id int64) error {
	cmd.Printf("Synchronising repository %d...\n", id)
	result, err := syncWithProgress(cmd.Context(), cmd, repoService, id)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	cmd.Printf("Repository %d synchronised: %d new, %d duplicates, %d errors.\n",
		id, result.Imported, result.Duplicates, result.Errors)
	return nil
}

func syncAll(cmd *cobra.Command) error {
	cmd.Println("Synchronising all enabled repositories...")

	results, err := repoService.SyncAll(cmd.Context())

	urls := make([]string, 0, len(results))
	for url := range results {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	for _, url := range urls {
		r := results[url]
		cmd.Printf("  %s: %d new, %d duplicates, %d errors\n", url, r.Imported, r.Duplicates, r.Errors)
	}

	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	cmd.Println("All repositories synchronised successfully.")
	return nil
}

// syncWithProgress runs sync while displaying progress updates.
func syncWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	repos driving.RepoService,
	id int64,
) (*domain.BatchResult, error) {
	type outcome struct {
		result *domain.BatchResult
		err    error
	}

	// Start sync in goroutine
	done := make(chan outcome, 1)
	go func() {
		result, err := repos.Sync(ctx, id)
		done <- outcome{result, err}
	}()

	ticker := time.NewTicker(syncPollInterval)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case o := <-done:
			if lastCount > 0 {
				cmd.Println()
			}
			return o.result, o.err
		case <-ticker.C:
			// Check progress (ignore status error - best effort)
			status, statusErr := repos.Status(ctx, id)
			processed := 0
			if statusErr == nil && status != nil {
				processed = status.Imported + status.Duplicates + status.Errors
			}
			if processed > lastCount {
				cmd.Printf("\rProcessing... %d documents", processed)
				lastCount = processed
			}
		}
	}
}

func setRepoEnabled(cmd *cobra.Command, arg string, enabled bool) error {
	if err := requireRepos(); err != nil {
		return err
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	if err := repoService.SetEnabled(cmd.Context(), id, enabled); err != nil {
		return err
	}
	if enabled {
		cmd.Printf("Repository %d enabled.\n", id)
	} else {
		cmd.Printf("Repository %d disabled.\n", id)
	}
	return nil
}

func runReposRemove(cmd *cobra.Command, args []string) error {
	if err := requireRepos(); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	removed, err := repoService.Delete(cmd.Context(), id)
	if err != nil {
		return err
	}
	cmd.Printf("Removed repository %d and %d workflows.\n", id, removed)
	return nil
}
