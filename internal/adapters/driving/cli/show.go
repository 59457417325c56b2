package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flowhub/internal/connectors/github"
	"github.com/custodia-labs/flowhub/internal/core/domain"
)

var (
	showFormat string
	showRaw    bool
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a workflow",
	Long: `Shows a workflow's metadata and enrichment. With --raw, prints the stored
document exactly as it was imported, suitable for pasting into n8n.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "text", "output format: text, json or yaml")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "print the stored workflow JSON")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := requireCatalog(); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if showRaw {
		raw, err := catalogService.GetRaw(cmd.Context(), id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, raw)
		if !strings.HasSuffix(raw, "\n") {
			fmt.Fprintln(out)
		}
		return nil
	}

	wf, err := catalogService.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	switch showFormat {
	case "json":
		return printJSON(cmd, wf)
	case "yaml":
		return printYAML(cmd, wf)
	case "text":
		outputWorkflow(cmd, wf)
		return nil
	default:
		return fmt.Errorf("unknown format %q: use text, json or yaml", showFormat)
	}
}

func outputWorkflow(cmd *cobra.Command, wf *domain.Workflow) {
	cmd.Printf("%s (#%d)\n", wf.Name, wf.ID)
	cmd.Println(strings.Repeat("=", len(wf.Name)+len(fmt.Sprint(wf.ID))+4))
	if wf.Description != "" {
		cmd.Println(wf.Description)
		cmd.Println()
	}

	cmd.Printf("Trigger:     %s\n", wf.TriggerType)
	cmd.Printf("Categories:  %s\n", strings.Join(wf.Categories, ", "))
	cmd.Printf("Nodes (%d):   %s\n", wf.NodeCount, strings.Join(wf.Nodes, ", "))
	if wf.OriginURL != "" {
		origin := wf.OriginURL
		if web := github.WebURL(origin); web != "" {
			origin = web
		}
		cmd.Printf("Origin:      %s\n", origin)
	}
	cmd.Printf("Fingerprint: %s\n", wf.Fingerprint)
	cmd.Printf("Imported:    %s\n", wf.CreatedAt.Local().Format("2006-01-02 15:04"))

	e := wf.Enrichment
	if e.AnalyzedAt.IsZero() {
		cmd.Println()
		cmd.Println("Not enriched yet.")
		return
	}
	cmd.Println()
	cmd.Printf("Usefulness %d, universality %d, complexity %d, scalability %d\n",
		e.Usefulness, e.Universality, e.Complexity, e.Scalability)
	if e.Summary != "" {
		cmd.Printf("Summary:     %s\n", e.Summary)
	}
	if len(e.UseCases) > 0 {
		cmd.Printf("Use cases:   %s\n", strings.Join(e.UseCases, "; "))
	}
	if len(e.Tags) > 0 {
		cmd.Printf("Tags:        %s\n", strings.Join(e.Tags, ", "))
	}
	if e.TargetAudience != "" {
		cmd.Printf("Audience:    %s\n", e.TargetAudience)
	}
	if e.DifficultyLevel != "" {
		cmd.Printf("Difficulty:  %s\n", e.DifficultyLevel)
	}
}
