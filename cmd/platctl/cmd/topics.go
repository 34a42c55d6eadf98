package cmd

import (
	"github.com/spf13/cobra"

	// Importing the events package registers every platform topic with the
	// default topic manager.
	_ "github.com/careerloop/platform/internal/events"
)

// topicsCmd represents the topics command
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Discover and inspect platform event topics",
	Long: `The topics command provides tools for discovering and inspecting the
event topics the platform publishes and consumes.

Available subcommands:
  list  List all registered topics
  get   Get detailed information about a specific topic

Examples:
  # List all topics
  platctl topics list

  # Get detailed information about a topic
  platctl topics get resume.updated

Use "platctl topics [command] --help" for more information about a specific command.`,
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}
