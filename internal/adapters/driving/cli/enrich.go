package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

var (
	enrichLimit int
	enrichJSON  bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Store enrichment produced by an external analyser",
	Long: `flowhub does not score workflows itself. An external analyser lists the
workflows awaiting enrichment and writes its scores and descriptions back.`,
}

var enrichPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List workflows awaiting enrichment",
	Args:  cobra.NoArgs,
	RunE:  runEnrichPending,
}

var enrichApplyCmd = &cobra.Command{
	Use:   "apply <id> <file|->",
	Short: "Apply an enrichment JSON document to a workflow",
	Long: `Reads an enrichment document and stores it on the workflow. Scores must be
between 0 and 10. A suggested_name replaces generic names such as "Untitled".

Example document:
  {"usefulness": 8, "universality": 6, "complexity": 3, "scalability": 5,
   "summary": "Posts new Stripe payments to Slack", "tags": ["payments"],
   "suggested_name": "Stripe payments to Slack"}`,
	Args: cobra.ExactArgs(2),
	RunE: runEnrichApply,
}

func init() {
	enrichPendingCmd.Flags().IntVarP(&enrichLimit, "limit", "n", domain.DefaultPageSize, "maximum number of workflows")
	enrichPendingCmd.Flags().BoolVar(&enrichJSON, "json", false, "output as JSON")
	enrichCmd.AddCommand(enrichPendingCmd, enrichApplyCmd)
	rootCmd.AddCommand(enrichCmd)
}

func requireEnrichment() error {
	if enrichmentService == nil {
		return errors.New("enrichment service not configured")
	}
	return nil
}

func runEnrichPending(cmd *cobra.Command, _ []string) error {
	if err := requireEnrichment(); err != nil {
		return err
	}
	workflows, err := enrichmentService.ListUnenriched(cmd.Context(), enrichLimit)
	if err != nil {
		return err
	}

	if enrichJSON {
		if workflows == nil {
			workflows = []domain.Workflow{}
		}
		return printJSON(cmd, workflows)
	}
	if len(workflows) == 0 {
		cmd.Println("Every workflow is enriched.")
		return nil
	}
	for i := range workflows {
		cmd.Printf("  [%d] %s (%d nodes)\n", workflows[i].ID, workflows[i].Name, workflows[i].NodeCount)
	}
	return nil
}

func runEnrichApply(cmd *cobra.Command, args []string) error {
	if err := requireEnrichment(); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var r io.Reader
	if args[1] == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("opening enrichment: %w", err)
		}
		defer f.Close()
		r = f
	}

	var enrichment domain.Enrichment
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&enrichment); err != nil {
		return fmt.Errorf("decoding enrichment: %w", err)
	}

	if err := enrichmentService.ApplyEnrichment(cmd.Context(), id, enrichment); err != nil {
		return err
	}
	cmd.Printf("Enriched workflow %d.\n", id)
	return nil
}
