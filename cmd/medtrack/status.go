// ABOUTME: CLI command for showing where the document lives and what it holds.
// ABOUTME: Checks the server's health endpoint unless running with --local.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/medtrack/internal/models"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server and document status",
	RunE: func(cmd *cobra.Command, args []string) error {
		if localMode {
			fmt.Println("Mode:   local")
			fmt.Println("File:  ", cfg.DataFile())
		} else {
			fmt.Println("Mode:   server")
			fmt.Println("Server:", cfg.ServerURL)
			if proxy := serverProxy(); proxy != nil {
				health, err := proxy.Health(cmd.Context())
				if err != nil {
					color.Red("✗ Server unreachable: %v", err)
					return nil
				}
				color.Green("✓ Server %s (data file %s)", health.Status, health.DataFile)
			}
		}
		fmt.Println()

		return withSession(cmd.Context(), func(s *session) error {
			doc := s.client.State()
			today := models.Today()
			active := 0
			for _, m := range doc.Medications {
				if m.ActiveOn(today) {
					active++
				}
			}

			fmt.Printf("  Medications:  %d (%d active)\n", len(doc.Medications), active)
			fmt.Printf("  Assessments:  %d days\n", len(doc.DailyAssessments))
			fmt.Printf("  Severities:   %d days\n", len(doc.SideEffectSeverities))
			fmt.Printf("  Journal:      %d entries\n", len(doc.Journal))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
