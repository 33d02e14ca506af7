// ABOUTME: CLI commands for managing medications.
// ABOUTME: Adds with side-effect lookup, ends, removes, and lists medications.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/medtrack/internal/models"
)

var (
	medDosage string
	medStart  string
	medEnd    string
	medAll    bool
)

var medCmd = &cobra.Command{
	Use:     "med",
	Aliases: []string{"m"},
	Short:   "Manage medications",
	Long: `Add, end, remove, and list medications.

Side effects are looked up when a medication is added: the document server
first, then openFDA adverse-event reports, then a built-in table.

EXAMPLES:

  medtrack med add Sertraline --dosage 50mg
  medtrack med add "Bupropion HCl XL" --start 2025-03-01
  medtrack med end abc12345 --date 2025-04-01
  medtrack med list --all`,
}

var medAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Start tracking a medication",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(strings.Join(args, " "))
		start := dateOrToday(medStart)
		if !models.IsValidDate(start) {
			return fmt.Errorf("invalid start date: %s (use YYYY-MM-DD)", start)
		}

		return withSession(cmd.Context(), func(s *session) error {
			res, err := s.resolver()
			if err != nil {
				return err
			}
			result := res.Resolve(cmd.Context(), name)

			med := models.NewMedication(name, start).
				WithDosage(medDosage).
				WithSideEffects(result.Records)
			if _, err := s.client.Apply(models.AddMedication(*med)); err != nil {
				return fmt.Errorf("failed to add medication: %w", err)
			}

			color.Green("✓ Added %s", med.Name)
			fmt.Printf("  %s since %s", color.New(color.Faint).Sprint(med.ID[:8]), med.StartDate)
			if med.Dosage != "" {
				fmt.Printf(" (%s)", med.Dosage)
			}
			fmt.Println()
			printRecords(result.Records)
			return nil
		})
	},
}

var medEndCmd = &cobra.Command{
	Use:   "end <id|name>",
	Short: "Mark a medication as stopped",
	Long: `Mark a medication as stopped. The end date is the last day it was taken
and can only be set once.

The medication can be given by ID, unique ID prefix, or exact name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		end := dateOrToday(medEnd)

		return withSession(cmd.Context(), func(s *session) error {
			id, err := s.client.State().ResolveMedicationID(args[0])
			if err != nil {
				return err
			}
			doc, err := s.client.Apply(models.EndMedication(id, end))
			if err != nil {
				return fmt.Errorf("failed to end medication: %w", err)
			}

			med := doc.Medications[doc.FindMedication(id)]
			color.Yellow("■ Ended %s on %s", med.Name, med.EndDate)
			return nil
		})
	},
}

var medRemoveCmd = &cobra.Command{
	Use:     "rm <id|name>",
	Aliases: []string{"delete", "del"},
	Short:   "Delete a medication",
	Long: `Delete a medication entirely. Use 'med end' to record that you stopped
taking it instead; deleting removes it from past side-effect views too.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			doc := s.client.State()
			id, err := doc.ResolveMedicationID(args[0])
			if err != nil {
				return err
			}
			med := doc.Medications[doc.FindMedication(id)]

			if _, err := s.client.Apply(models.RemoveMedication(id)); err != nil {
				return fmt.Errorf("failed to delete medication: %w", err)
			}

			color.Yellow("✗ Deleted %s", med.Name)
			fmt.Printf("  %s\n", color.New(color.Faint).Sprint(med.ID[:8]))
			return nil
		})
	},
}

var medListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List medications",
	Long: `List medications active today, or all of them with --all.

OUTPUT FORMAT:

  Each line shows: ID  NAME  DOSAGE  START - END  (SIDE EFFECTS)

  The ID is an 8-character prefix you can use with 'med end' and 'med rm'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			today := models.Today()
			var meds []models.Medication
			for _, m := range s.client.State().Medications {
				if medAll || m.ActiveOn(today) {
					meds = append(meds, m)
				}
			}

			if len(meds) == 0 {
				fmt.Println("No medications found.")
				return nil
			}

			faint := color.New(color.Faint)
			for _, m := range meds {
				span := m.StartDate + " -"
				if m.EndDate != "" {
					span += " " + m.EndDate
				}
				fmt.Printf("%s %s %s %s %s\n",
					faint.Sprint(m.ID[:8]),
					padRight(m.Name, 20),
					padRight(m.Dosage, 8),
					faint.Sprint(span),
					faint.Sprintf("(%d side effects)", len(m.SideEffects)))
			}
			return nil
		})
	},
}

func printRecords(records []models.SideEffectRecord) {
	if models.IsNoData(records) {
		color.Yellow("  %s", records[0].Description)
		return
	}
	faint := color.New(color.Faint)
	for _, r := range records {
		if r.Description != "" {
			fmt.Printf("  • %s %s\n", r.Name, faint.Sprint(truncate(r.Description, 60)))
		} else {
			fmt.Printf("  • %s\n", r.Name)
		}
	}
}

func dateOrToday(date string) string {
	if date == "" {
		return models.Today()
	}
	return date
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	medAddCmd.Flags().StringVar(&medDosage, "dosage", "", "dosage, e.g. 50mg")
	medAddCmd.Flags().StringVar(&medStart, "start", "", "start date (YYYY-MM-DD, default today)")
	medEndCmd.Flags().StringVar(&medEnd, "date", "", "last day taken (YYYY-MM-DD, default today)")
	medListCmd.Flags().BoolVarP(&medAll, "all", "a", false, "include ended medications")

	medCmd.AddCommand(medAddCmd)
	medCmd.AddCommand(medEndCmd)
	medCmd.AddCommand(medRemoveCmd)
	medCmd.AddCommand(medListCmd)
	rootCmd.AddCommand(medCmd)
}
