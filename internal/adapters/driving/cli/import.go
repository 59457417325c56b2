package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/flowhub/internal/core/domain"
)

var (
	importChunkSize int
	importWatch     bool
	importJSON      bool
	importOrigin    string
)

var importCmd = &cobra.Command{
	Use:   "import <source>",
	Short: "Import workflows from a file, directory or GitHub URL",
	Long: `Imports workflow documents. The source may be:

  - a local .json file or a directory of .json files
  - a GitHub repository, tree, blob or raw.githubusercontent.com URL
  - "-" to read a single document from stdin

Documents already in the catalogue are skipped. Importing a GitHub
repository registers it for later syncs (see "flowhub repos").

With --watch, a local directory keeps being watched after the import and
new or changed .json files are imported as they appear.

Examples:
  flowhub import ./workflows
  flowhub import https://github.com/acme/n8n-flows/tree/main/flows
  curl -s https://example.com/flow.json | flowhub import -`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().IntVar(&importChunkSize, "chunk-size", 0, "documents per transaction (default ingest.chunk_size)")
	importCmd.Flags().BoolVarP(&importWatch, "watch", "w", false, "keep watching a local directory")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "output the result as JSON")
	importCmd.Flags().StringVar(&importOrigin, "origin", "", "origin URL recorded for a document read from stdin")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	source := args[0]

	if source == "-" {
		return importStdin(cmd)
	}

	progress := cmd.ErrOrStderr()
	result, err := ingestService.Import(cmd.Context(), source, domain.BatchOptions{
		ChunkSize: importChunkSize,
		Progress: func(r domain.BatchResult) {
			if !importJSON {
				fmt.Fprintf(progress, "\rProcessed %d documents...", r.Total)
			}
		},
	})
	if result != nil && result.Total > 0 && !importJSON {
		fmt.Fprintln(progress)
	}
	if err != nil {
		if result != nil && result.Imported > 0 {
			cmd.Printf("Stopped after importing %d workflows.\n", result.Imported)
		}
		return fmt.Errorf("import failed: %w", err)
	}

	if importJSON {
		if err := printJSON(cmd, result); err != nil {
			return err
		}
	} else {
		cmd.Printf("Imported %d new workflows (%d duplicates, %d errors, %d total).\n",
			result.Imported, result.Duplicates, result.Errors, result.Total)
	}

	if importWatch {
		return watchSource(cmd, source)
	}
	return nil
}

func importStdin(cmd *cobra.Command) error {
	if cmd.InOrStdin() == os.Stdin && stdinIsTerminal() {
		return errors.New("no document on stdin: pipe a workflow JSON file into flowhub import -")
	}
	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	result, err := ingestService.IngestOne(cmd.Context(), domain.RawWorkflow{
		Content:   content,
		OriginURL: importOrigin,
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if importJSON {
		return printJSON(cmd, result)
	}
	outputIngestResult(cmd, *result)
	return nil
}

func watchSource(cmd *cobra.Command, source string) error {
	cmd.Printf("Watching %s (Ctrl+C to stop)...\n", source)
	err := ingestService.Watch(cmd.Context(), source, func(r domain.IngestResult) {
		outputIngestResult(cmd, r)
	})
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	cmd.Println("Stopped watching.")
	return nil
}

func outputIngestResult(cmd *cobra.Command, r domain.IngestResult) {
	switch r.Status {
	case domain.IngestStatusOK:
		cmd.Printf("Imported %q as workflow %d.\n", r.Name, r.ID)
	case domain.IngestStatusDuplicate:
		cmd.Printf("Skipped %q: already in the catalogue.\n", r.Name)
	default:
		fmt.Fprintf(cmd.ErrOrStderr(), "Rejected %s: %s\n", orDash(r.Name), r.Error)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// stdinIsTerminal reports whether stdin is an interactive terminal.
func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
