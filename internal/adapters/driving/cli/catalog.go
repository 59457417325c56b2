package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	listJSON  bool
	verifyFix bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireCatalog(); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := catalogService.Delete(cmd.Context(), id); err != nil {
			return err
		}
		cmd.Printf("Deleted workflow %d.\n", id)
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a workflow",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireCatalog(); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		name := strings.Join(args[1:], " ")
		if err := catalogService.Rename(cmd.Context(), id, name); err != nil {
			return err
		}
		cmd.Printf("Renamed workflow %d to %q.\n", id, strings.TrimSpace(name))
		return nil
	},
}

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List node types used by stored workflows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireCatalog(); err != nil {
			return err
		}
		nodes, err := catalogService.ListNodeTypes(cmd.Context())
		if err != nil {
			return err
		}
		return outputList(cmd, nodes, "No nodes yet.")
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List workflow categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireCatalog(); err != nil {
			return err
		}
		categories, err := catalogService.ListCategories(cmd.Context())
		if err != nil {
			return err
		}
		return outputList(cmd, categories, "No categories yet.")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the catalogue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireCatalog(); err != nil {
			return err
		}
		stats, err := catalogService.Stats(cmd.Context())
		if err != nil {
			return err
		}
		if listJSON {
			return printJSON(cmd, stats)
		}
		cmd.Printf("Workflows:        %d\n", stats.TotalWorkflows)
		cmd.Printf("Repositories:     %d\n", stats.TotalRepos)
		cmd.Printf("Unique nodes:     %d\n", stats.UniqueNodes)
		cmd.Printf("Enriched:         %d\n", stats.EnrichedCount)
		cmd.Printf("Avg. usefulness:  %.1f\n", stats.AvgUsefulness)
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the search index and lookup tables against stored workflows",
	Long: `Audits the search index and the node and category lookup tables against the
workflow records. With --fix, an inconsistent search index is rebuilt.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the full-text search index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireCatalog(); err != nil {
			return err
		}
		n, err := catalogService.RebuildIndex(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Printf("Reindexed %d workflows.\n", n)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{nodesCmd, categoriesCmd, statsCmd} {
		c.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	}
	verifyCmd.Flags().BoolVar(&verifyFix, "fix", false, "rebuild the search index when it has drifted")

	rootCmd.AddCommand(deleteCmd, renameCmd, nodesCmd, categoriesCmd, statsCmd, verifyCmd, reindexCmd)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	if err := requireCatalog(); err != nil {
		return err
	}
	report, err := catalogService.Verify(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Checked %d workflows.\n", report.Workflows)
	if report.Consistent() {
		cmd.Println("Catalogue is consistent.")
		return nil
	}

	cmd.Printf("  missing from index:   %d %v\n", len(report.MissingIndex), report.MissingIndex)
	cmd.Printf("  orphaned index rows:  %d %v\n", len(report.OrphanIndex), report.OrphanIndex)
	cmd.Printf("  stale lookup rows:    %d %v\n", len(report.StaleMemberships), report.StaleMemberships)

	if !verifyFix {
		return errors.New("catalogue is inconsistent (run with --fix to rebuild the index)")
	}
	n, err := catalogService.RebuildIndex(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Reindexed %d workflows.\n", n)
	if len(report.StaleMemberships) > 0 {
		return fmt.Errorf("lookup rows of workflows %v are stale; delete and re-import them", report.StaleMemberships)
	}
	return nil
}

func outputList(cmd *cobra.Command, values []string, empty string) error {
	if listJSON {
		if values == nil {
			values = []string{}
		}
		return printJSON(cmd, values)
	}
	if len(values) == 0 {
		cmd.Println(empty)
		return nil
	}
	for _, v := range values {
		cmd.Println(v)
	}
	return nil
}
