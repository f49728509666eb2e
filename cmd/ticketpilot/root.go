package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "ticketpilot",
	Short: "Helpdesk ticket triage orchestrator",
	Long: `ticketpilot reads a Freshdesk ticket, classifies what the customer wants,
asks the knowledge base, product and price agents for the facts, and drafts
a reply for a human to review.

Run it as an HTTP API (serve), as a Discord bot that talks to that API (bot),
or analyze a single ticket from the terminal (analyze).

Configuration is read from ~/.config/ticketpilot/config.yaml, a project
.ticketpilot.yaml, and environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (overrides the default search)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(versionCmd)
}
