package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/careerloop/platform/internal/topicmgr"
	"github.com/spf13/cobra"
)

var listOutputFormat string

// topicDisplay represents a topic for display purposes
type topicDisplay struct {
	Name        string                 `json:"name"`
	Guarantee   string                 `json:"guarantee"`
	Description string                 `json:"description"`
	Example     string                 `json:"example"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// topicsListCmd represents the topics list command
var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered topics",
	Long: `List all topics currently registered with the platform.
This command helps developers discover what topics are available for
event-driven communication.

Examples:
  platctl topics list                 # List all topics in table format
  platctl topics list --format json   # List all topics in JSON format

Output formats:
  table - Human-readable table format (default)
  json  - Machine-readable JSON format with metadata`,
	Run: topicsListHandler,
}

func topicsListHandler(cmd *cobra.Command, args []string) {
	topicList := topicmgr.Default().List()

	switch listOutputFormat {
	case "json":
		if err := displayTopicsJSON(topicList); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to render topics: %v\n", err)
			os.Exit(1)
		}
	case "table":
		displayTopicsTable(topicList)
	default:
		fmt.Fprintf(os.Stderr, "Error: Invalid format '%s'. Valid formats: table, json\n", listOutputFormat)
		os.Exit(1)
	}
}

func displayTopicsTable(topics []topicmgr.Topic) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "NAME\tGUARANTEE\tDESCRIPTION\tEXAMPLE")
	fmt.Fprintln(w, "----\t---------\t-----------\t-------")

	if len(topics) == 0 {
		fmt.Fprintln(w, "No topics found")
		return
	}
	for _, topic := range topics {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			topic.Name(),
			topic.Guarantee(),
			truncateString(topic.Description(), 40),
			truncateString(topic.Example(), 30))
	}
}

func displayTopicsJSON(topics []topicmgr.Topic) error {
	displays := make([]topicDisplay, len(topics))
	for i, topic := range topics {
		displays[i] = newTopicDisplay(topic)
	}

	output := struct {
		Topics []topicDisplay `json:"topics"`
		Count  int            `json:"count"`
	}{
		Topics: displays,
		Count:  len(displays),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func newTopicDisplay(topic topicmgr.Topic) topicDisplay {
	return topicDisplay{
		Name:        topic.Name(),
		Guarantee:   string(topic.Guarantee()),
		Description: topic.Description(),
		Example:     topic.Example(),
		Metadata:    topic.Metadata(),
	}
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func init() {
	topicsCmd.AddCommand(topicsListCmd)

	topicsListCmd.Flags().StringVarP(&listOutputFormat, "format", "f", "table", "Output format (table, json)")
}
