package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "platctl",
	Short: "CareerLoop platform CLI tool",
	Long: `platctl is a command-line interface for the CareerLoop event platform.

Available commands:
  topics       Discover and inspect registered event topics
  deadletter   Inspect dead-lettered events on a platform server
  maintenance  Run maintenance operations against a platform server
  version      Print the CLI version

Use "platctl [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}
