// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for Claude integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/medtrack/internal/logging"
	"github.com/harperreed/medtrack/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to read and update your medication
tracker through a standardized protocol. The server communicates via
stdin/stdout; logs go to stderr.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "medtrack": {
        "command": "medtrack",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  lookup_side_effects     Look up side effects for a medication name
  aggregate_side_effects  Combined side effects of a day's active medications
  get_state               The whole patient document
  set_severity            Rate a side effect for a day
  add_medication          Start tracking a medication
  end_medication          Mark a medication as stopped

AVAILABLE RESOURCES:

  medtrack://state        The whole patient document
  medtrack://today        Today's assessment, medications, and side effects`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		go func() {
			select {
			case <-sigChan:
				cancel()
			case <-ctx.Done():
			}
		}()

		return withSession(ctx, func(s *session) error {
			res, err := s.resolver()
			if err != nil {
				return err
			}
			server, err := mcp.NewServer(s.client, res, logging.Component(logger, "mcp"))
			if err != nil {
				return err
			}
			return server.Serve(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
