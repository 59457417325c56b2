package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

var (
	searchCategory string
	searchNode     string
	searchMinScore int
	searchPage     int
	searchPageSize int
	searchSort     string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored workflows",
	Long: `Searches workflows by free text, category, node type and usefulness score.
Text matches names, descriptions, nodes, categories and enrichment fields;
every word is matched as a prefix and any word may match.

Sort modes: recent, usefulness, complexity_asc, complexity_desc, nodes.`,
	Args: cobra.ArbitraryArgs,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "only workflows in this category")
	searchCmd.Flags().StringVar(&searchNode, "node", "", "only workflows using this node type")
	searchCmd.Flags().IntVar(&searchMinScore, "min-score", 0, "minimum usefulness score (0-10)")
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "page number")
	searchCmd.Flags().IntVarP(&searchPageSize, "limit", "n", 0, "results per page (default search.page_size)")
	searchCmd.Flags().StringVar(&searchSort, "sort", string(domain.SortRecent), "sort mode")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireCatalog(); err != nil {
		return err
	}

	query := domain.SearchQuery{
		Text:     strings.Join(args, " "),
		Category: searchCategory,
		NodeType: searchNode,
		MinScore: searchMinScore,
		Page:     searchPage,
		PageSize: searchPageSize,
		Sort:     domain.ParseSortMode(searchSort),
	}

	page, err := catalogService.Search(cmd.Context(), query)
	if err != nil {
		return err
	}

	if searchJSON {
		return printJSON(cmd, page)
	}
	outputSearchTable(cmd, page)
	return nil
}

func outputSearchTable(cmd *cobra.Command, page *domain.SearchPage) {
	if page.Total == 0 {
		cmd.Println("No workflows found.")
		return
	}

	for i := range page.Workflows {
		wf := &page.Workflows[i]
		// Format: [ID] Name (score) - trigger, N nodes
		cmd.Printf("  [%d] %s", wf.ID, wf.Name)
		if !wf.Enrichment.AnalyzedAt.IsZero() {
			cmd.Printf(" (%d/10)", wf.Enrichment.Usefulness)
		}
		cmd.Printf(" - %s, %d nodes\n", wf.TriggerType, wf.NodeCount)
		if len(wf.Categories) > 0 {
			cmd.Printf("      %s\n", strings.Join(wf.Categories, ", "))
		}
		if wf.Description != "" {
			cmd.Printf("      %s\n", truncate(wf.Description, 100))
		}
	}
	cmd.Println()
	cmd.Printf("Page %d of %d (%d workflows)\n", page.Page, page.TotalPages, page.Total)
}
