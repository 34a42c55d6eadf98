package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	deadletterServerURL string
	deadletterToken     string
	deadletterFormat    string
)

// deadletterCmd represents the deadletter command
var deadletterCmd = &cobra.Command{
	Use:   "deadletter",
	Short: "Inspect dead-lettered events on a platform server",
	Long: `The deadletter command reads the dead-letter surface of a running
platform server. Events land there after exhausting their retries or
failing permanently, and stay until maintenance clears them.

Available subcommands:
  peek  List the retained dead-lettered events

Examples:
  platctl deadletter peek --server http://localhost:8080 --token $TOKEN`,
}

// deadletterPeekCmd represents the deadletter peek command
var deadletterPeekCmd = &cobra.Command{
	Use:   "peek",
	Short: "List the retained dead-lettered events",
	Long: `List the dead-lettered events the server currently retains, oldest
first, with the consumer and attempt count each failure is attributed to.

A bearer token for the configured frontend authority is required.`,
	RunE: deadletterPeekHandler,
}

type deadLetterView struct {
	Topic      string          `json:"topic"`
	Consumer   string          `json:"consumer"`
	Reason     string          `json:"reason"`
	Attempts   int             `json:"attempts"`
	Payload    json.RawMessage `json:"payload"`
	RecordedAt time.Time       `json:"recorded_at"`
}

func deadletterPeekHandler(cmd *cobra.Command, args []string) error {
	endpoint := strings.TrimSuffix(deadletterServerURL, "/") + "/admin/dead-letters"

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if deadletterToken != "" {
		req.Header.Set("Authorization", "Bearer "+deadletterToken)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintln(os.Stderr, string(body))
		return fmt.Errorf("dead-letter peek failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Count       int              `json:"count"`
		DeadLetters []deadLetterView `json:"dead_letters"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if deadletterFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	if payload.Count == 0 {
		fmt.Println("No dead-lettered events")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "RECORDED\tTOPIC\tCONSUMER\tATTEMPTS\tREASON")
	fmt.Fprintln(w, "--------\t-----\t--------\t--------\t------")
	for _, dl := range payload.DeadLetters {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			dl.RecordedAt.Format(time.RFC3339),
			dl.Topic,
			dl.Consumer,
			dl.Attempts,
			truncateString(dl.Reason, 60),
		)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(deadletterCmd)
	deadletterCmd.AddCommand(deadletterPeekCmd)

	deadletterPeekCmd.Flags().StringVar(&deadletterServerURL, "server", "http://localhost:8080", "Base URL of the platform server")
	deadletterPeekCmd.Flags().StringVar(&deadletterToken, "token", "", "Bearer token for the admin surface")
	deadletterPeekCmd.Flags().StringVarP(&deadletterFormat, "format", "f", "table", "Output format (table, json)")
}
