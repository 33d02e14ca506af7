// ABOUTME: Root Cobra command for medtrack CLI.
// ABOUTME: Loads configuration and the logger in PersistentPreRunE.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/harperreed/medtrack/internal/config"
	"github.com/harperreed/medtrack/internal/logging"
)

var (
	configPath string
	localMode  bool

	cfg    *config.Config
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "medtrack",
	Short: "Medication and side-effect tracker",
	Long: `Medtrack tracks daily wellness scores, medications, and how their side
effects feel day to day.

WHAT IT TRACKS:

  Assessments    general, energy, concentration, sleep (1-10 per day)
  Medications    name, dosage, start and end dates, known side effects
  Side effects   0-5 severity per effect per day
  Journal        one free-text entry per day, plus a global notes field

QUICK START:

  $ medtrack med add Sertraline --dosage 50mg   # Side effects are looked up
  $ medtrack today                              # Active meds and side effects
  $ medtrack severity Nausea 3                  # Rate today's nausea
  $ medtrack assess sleep 7                     # Score today's sleep
  $ medtrack journal "Slept badly, better by noon"

DOCUMENT SERVER:

  Run 'medtrack serve' on the machine that keeps the data file. Other
  commands read and write the document through it using server_url and
  api_key from the config file or MEDTRACK_* environment variables.
  Use --local to edit the data file directly without a server.

MCP INTEGRATION:

  Run 'medtrack mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "medtrack": { "command": "medtrack", "args": ["mcp"] }
    }
  }

CONFIGURATION:

  ~/.config/medtrack/config.json, overridden by MEDTRACK_<KEY> variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		path := configPath
		if path == "" {
			path = config.GetConfigPath()
		}
		loaded, err := config.LoadFrom(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = loaded
		logger = logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/medtrack/config.json)")
	rootCmd.PersistentFlags().BoolVar(&localMode, "local", false, "edit the local data file instead of going through the server")
}
