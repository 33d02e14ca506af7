// ABOUTME: CLI commands for exporting and importing the patient document.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/medtrack/internal/storage"
)

var (
	exportOutput string
	importForce  bool
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export the patient document",
	Long: `Export the patient document in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)
  markdown   Markdown tables (for sharing with a clinician)

EXAMPLES:

  medtrack export json                   # Export as JSON
  medtrack export json -o backup.json    # Save to file
  medtrack export markdown -o report.md  # Readable report`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{storage.FormatJSON, storage.FormatYAML, storage.FormatMarkdown},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			data, err := storage.Export(s.client.State(), args[0], time.Now())
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			if exportOutput != "" {
				if err := os.WriteFile(exportOutput, data, 0600); err != nil {
					return fmt.Errorf("failed to write file: %w", err)
				}
				color.Green("✓ Exported to %s", exportOutput)
				return nil
			}
			fmt.Println(string(data))
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import the patient document from JSON",
	Long: `Import the patient document from a JSON export or a bare document file.

The imported document replaces the current one. If the current document
already has data, --force is required.

EXAMPLES:

  medtrack import backup.json
  medtrack import backup.json --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		doc, err := storage.ImportJSON(data)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		remote, _, err := openRemote()
		if err != nil {
			return err
		}
		existing, err := remote.Fetch(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read current document: %w", err)
		}
		if !existing.IsEmpty() && !importForce {
			return fmt.Errorf("the current document has data; use --force to replace it")
		}

		if err := remote.Push(cmd.Context(), doc); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported from %s", filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	importCmd.Flags().BoolVar(&importForce, "force", false, "replace a document that already has data")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
