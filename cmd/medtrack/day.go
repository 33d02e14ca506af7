// ABOUTME: CLI commands for daily entries: assessments, side-effect severities, journal, notes.
// ABOUTME: Also renders the day view of active medications and weighted side effects.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/medtrack/internal/aggregate"
	"github.com/harperreed/medtrack/internal/models"
	"github.com/harperreed/medtrack/internal/resolver"
)

var dayDate string

var todayCmd = &cobra.Command{
	Use:     "today",
	Aliases: []string{"t", "day"},
	Short:   "Show a day's assessment, medications, and side effects",
	Long: `Show the assessment, active medications, and aggregated side effects for a
day (today unless --date is given).

Side effects shared by more medications are listed first; each shows the
severity recorded for that day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date := dateOrToday(dayDate)
		if !models.IsValidDate(date) {
			return fmt.Errorf("invalid date: %s (use YYYY-MM-DD)", date)
		}

		return withSession(cmd.Context(), func(s *session) error {
			printDay(s.client.State(), date)
			return nil
		})
	},
}

var assessCmd = &cobra.Command{
	Use:   "assess <metric> <score>",
	Short: "Score a daily assessment metric (1-10)",
	Long: `Score one daily assessment metric from 1 to 10.

METRICS:

  general, energy, concentration, sleep

The first score of a day sets the other metrics to 5.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: models.AllMetrics,
	RunE: func(cmd *cobra.Command, args []string) error {
		metric := strings.ToLower(args[0])
		score, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid score: %s", args[1])
		}
		date := dateOrToday(dayDate)

		return withSession(cmd.Context(), func(s *session) error {
			if _, err := s.client.Apply(models.SetAssessment(date, metric, score)); err != nil {
				return fmt.Errorf("failed to set assessment: %w", err)
			}
			color.Green("✓ %s %d/%d on %s", metric, score, models.MaxScore, date)
			return nil
		})
	},
}

var severityCmd = &cobra.Command{
	Use:     "severity <effect> <0-5>",
	Aliases: []string{"sev"},
	Short:   "Rate a side effect for a day (0 clears)",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		last := args[len(args)-1]
		severity, err := strconv.Atoi(last)
		if err != nil {
			return fmt.Errorf("invalid severity: %s", last)
		}
		effect := models.SeverityKey(strings.Join(args[:len(args)-1], " "))
		date := dateOrToday(dayDate)

		return withSession(cmd.Context(), func(s *session) error {
			if _, err := s.client.Apply(models.SetSeverity(date, effect, severity)); err != nil {
				return fmt.Errorf("failed to set severity: %w", err)
			}
			if severity == 0 {
				color.Yellow("✗ Cleared %s on %s", effect, date)
			} else {
				color.Green("✓ %s %d/%d on %s", effect, severity, models.MaxSeverity, date)
			}
			return nil
		})
	},
}

var journalCmd = &cobra.Command{
	Use:     "journal [text]",
	Aliases: []string{"j"},
	Short:   "Show or replace a day's journal entry",
	Long: `Without text, print the journal entry for the day. With text, replace it.
An empty string ("") removes the entry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date := dateOrToday(dayDate)

		return withSession(cmd.Context(), func(s *session) error {
			if len(args) == 0 {
				entry := s.client.State().Journal[date]
				if entry == "" {
					fmt.Printf("No journal entry for %s.\n", date)
					return nil
				}
				fmt.Println(entry)
				return nil
			}

			if _, err := s.client.Apply(models.SetJournal(date, strings.Join(args, " "))); err != nil {
				return fmt.Errorf("failed to save journal: %w", err)
			}
			color.Green("✓ Journal saved for %s", date)
			return nil
		})
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes [text]",
	Short: "Show or replace the global notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(s *session) error {
			if len(args) == 0 {
				notes := s.client.State().Notes
				if notes == "" {
					fmt.Println("No notes.")
					return nil
				}
				fmt.Println(notes)
				return nil
			}

			if _, err := s.client.Apply(models.SetNotes(strings.Join(args, " "))); err != nil {
				return fmt.Errorf("failed to save notes: %w", err)
			}
			color.Green("✓ Notes saved")
			return nil
		})
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <medication>",
	Short: "Look up common side effects for a medication",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")

		var opts []resolver.Option
		if proxy := serverProxy(); proxy != nil {
			opts = append(opts, resolver.WithProxy(proxy))
		}
		store, err := openCache()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		result := newResolver(store, opts...).Resolve(cmd.Context(), name)
		fmt.Printf("%s %s\n", color.New(color.Bold).Sprint(name), color.New(color.Faint).Sprintf("(%s)", result.Tier))
		printRecords(result.Records)
		return nil
	},
}

func printDay(doc models.PatientState, date string) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Printf("%s\n\n", date)

	if a, ok := doc.DailyAssessments[date]; ok {
		for _, metric := range models.AllMetrics {
			fmt.Printf("  %s %2d/%d\n", padRight(metric, 14), a.Get(metric), models.MaxScore)
		}
	} else {
		faint.Println("  No assessment.")
	}
	fmt.Println()

	bold.Println("Medications")
	active := 0
	for _, m := range doc.Medications {
		if m.ActiveOn(date) {
			active++
			fmt.Printf("  %s %s %s\n", faint.Sprint(m.ID[:8]), padRight(m.Name, 20), m.Dosage)
		}
	}
	if active == 0 {
		faint.Println("  None active.")
	}
	fmt.Println()

	bold.Println("Side effects")
	view := aggregate.ForDate(doc, date)
	if len(view) == 0 {
		faint.Println("  None.")
	}
	for _, se := range view {
		meds := faint.Sprintf("(%s)", strings.Join(se.Medications, ", "))
		fmt.Printf("  %s %s %s\n", padRight(se.Name, 24), severityBar(se.Severity), meds)
	}

	if entry := doc.Journal[date]; entry != "" {
		fmt.Println()
		bold.Println("Journal")
		fmt.Printf("  %s\n", entry)
	}
}

// severityBar renders a 0-5 severity as filled and empty dots.
func severityBar(severity int) string {
	if severity <= 0 {
		return color.New(color.Faint).Sprint(strings.Repeat("○", models.MaxSeverity))
	}
	filled := strings.Repeat("●", severity) + strings.Repeat("○", models.MaxSeverity-severity)
	switch {
	case severity >= 4:
		return color.RedString(filled)
	case severity >= 2:
		return color.YellowString(filled)
	default:
		return color.GreenString(filled)
	}
}

func init() {
	for _, c := range []*cobra.Command{todayCmd, assessCmd, severityCmd, journalCmd} {
		c.Flags().StringVarP(&dayDate, "date", "d", "", "date (YYYY-MM-DD, default today)")
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(lookupCmd)
}
