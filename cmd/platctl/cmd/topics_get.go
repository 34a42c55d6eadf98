package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/careerloop/platform/internal/topicmgr"
	"github.com/spf13/cobra"
)

var getOutputFormat string

// topicsGetCmd represents the topics get command
var topicsGetCmd = &cobra.Command{
	Use:   "get <topic-name>",
	Short: "Get detailed information about a specific topic",
	Long: `Get detailed information about a specific topic registered with the
platform, including its name, delivery guarantee, description, example,
and payload metadata.

Examples:
  platctl topics get user.created                  # Show details for user.created
  platctl topics get resume.updated --format json  # Show topic details in JSON format

Output formats:
  table - Human-readable detailed format (default)
  json  - Machine-readable JSON format with all metadata`,
	Args: cobra.ExactArgs(1),
	Run:  topicsGetHandler,
}

func topicsGetHandler(cmd *cobra.Command, args []string) {
	topicName := args[0]

	topic, found := topicmgr.Default().Get(topicName)
	if !found {
		fmt.Fprintf(os.Stderr, "Error: Topic '%s' not found\n", topicName)
		fmt.Fprintf(os.Stderr, "\nUse 'platctl topics list' to see all available topics.\n")
		os.Exit(1)
	}

	switch getOutputFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(newTopicDisplay(topic)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to render topic: %v\n", err)
			os.Exit(1)
		}
	case "table":
		fmt.Printf("Name:        %s\n", topic.Name())
		fmt.Printf("Guarantee:   %s\n", topic.Guarantee())
		fmt.Printf("Description: %s\n", topic.Description())
		fmt.Printf("Example:     %s\n", topic.Example())
		if metadata := topic.Metadata(); len(metadata) > 0 {
			fmt.Println("Metadata:")
			for k, v := range metadata {
				fmt.Printf("  %s: %v\n", k, v)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: Invalid format '%s'. Valid formats: table, json\n", getOutputFormat)
		os.Exit(1)
	}
}

func init() {
	topicsCmd.AddCommand(topicsGetCmd)

	topicsGetCmd.Flags().StringVarP(&getOutputFormat, "format", "f", "table", "Output format (table, json)")
}
