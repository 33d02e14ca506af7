// ABOUTME: CLI command for moving the legacy on-device document to the server.
// ABOUTME: Reads the Badger or Charm KV copy, pushes it, then deletes it.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/medtrack/internal/models"
	"github.com/harperreed/medtrack/internal/syncclient"
)

var (
	migrateFrom   string
	migrateDryRun bool
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Move the legacy local document to the server",
	Long: `Move the patient document that older versions kept on this device to the
document server (or the local data file with --local).

Every command already does this automatically when the server has no data.
Use migrate to do it explicitly, to preview it, or to overwrite data that is
already on the server.

SOURCES:

  badger   Local Badger directory (legacy_dir, default <data_dir>/legacy)
  charm    Charm KV database "health"

USAGE:

  medtrack migrate --dry-run        # Preview what would be migrated
  medtrack migrate                  # Push it and delete the local copy
  medtrack migrate --from charm     # Read from Charm KV instead
  medtrack migrate --force          # Overwrite existing server data

The legacy copy is only deleted after the push succeeds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom != "" {
			cfg.LegacyBackend = migrateFrom
		}
		if cfg.LegacyBackend == "none" {
			return fmt.Errorf("no legacy source configured (use --from badger or --from charm)")
		}
		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Println()
		}

		legacy, closeLegacy, err := openLegacy()
		if err != nil {
			return err
		}
		if legacy == nil {
			fmt.Println("Nothing to migrate.")
			return nil
		}
		defer func() { _ = closeLegacy() }()

		doc, ok, err := legacy.Load()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Nothing to migrate.")
			return nil
		}
		printSummary(doc)

		remote, _, err := openRemote()
		if err != nil {
			return err
		}
		existing, err := remote.Fetch(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read current document: %w", err)
		}
		if !existing.IsEmpty() && !migrateForce {
			return fmt.Errorf("the destination already has data; use --force to overwrite it")
		}

		if migrateDryRun {
			return nil
		}
		if legacy.ReadOnly() {
			return fmt.Errorf("%w: close other medtrack or charm processes and retry", syncclient.ErrLegacyReadOnly)
		}

		if err := remote.Push(cmd.Context(), doc); err != nil {
			return fmt.Errorf("migration failed, legacy copy kept: %w", err)
		}
		if err := legacy.Remove(); err != nil {
			color.Yellow("⚠ Migrated, but the legacy copy could not be deleted: %v", err)
			return nil
		}

		color.Green("✓ Migrated legacy document")
		return nil
	},
}

func printSummary(doc models.PatientState) {
	fmt.Printf("  Medications:  %d\n", len(doc.Medications))
	fmt.Printf("  Assessments:  %d days\n", len(doc.DailyAssessments))
	fmt.Printf("  Severities:   %d days\n", len(doc.SideEffectSeverities))
	fmt.Printf("  Journal:      %d entries\n", len(doc.Journal))
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "", "legacy source: badger or charm (default legacy_backend)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "overwrite data already at the destination")
	rootCmd.AddCommand(migrateCmd)
}
