package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	maintenanceServerURL string
	maintenanceToken     string
)

// maintenanceCmd represents the maintenance command
var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Run maintenance operations against a platform server",
	Long: `The maintenance command drives the administrative maintenance surface of
a running platform server.

Available subcommands:
  clear  Clear stored data across every registered service

Examples:
  platctl maintenance clear --server http://localhost:8080 --token $TOKEN`,
}

// maintenanceClearCmd represents the maintenance clear command
var maintenanceClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear stored data across every registered service",
	Long: `Clear stored data across every registered service, in registration order.
The server stops at the first failing service and reports which services
were affected before the failure, so a partial run is never silent.

A bearer token for the configured frontend authority is required.`,
	RunE: maintenanceClearHandler,
}

func maintenanceClearHandler(cmd *cobra.Command, args []string) error {
	endpoint := strings.TrimSuffix(maintenanceServerURL, "/") + "/admin/maintenance/clear"

	req, err := http.NewRequest(http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if maintenanceToken != "" {
		req.Header.Set("Authorization", "Bearer "+maintenanceToken)
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

	// Pretty-print whatever the server sent; both the success report and
	// the partial-failure body are JSON.
	var pretty map[string]any
	if err := json.Unmarshal(body, &pretty); err == nil {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		_ = encoder.Encode(pretty)
	} else {
		fmt.Println(string(body))
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("maintenance clear failed with status %d", resp.StatusCode)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(maintenanceCmd)
	maintenanceCmd.AddCommand(maintenanceClearCmd)

	maintenanceClearCmd.Flags().StringVar(&maintenanceServerURL, "server", "http://localhost:8080", "Base URL of the platform server")
	maintenanceClearCmd.Flags().StringVar(&maintenanceToken, "token", "", "Bearer token for the admin surface")
}
