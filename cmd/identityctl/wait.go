package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until the server reports a healthy store",
	Long: `Poll /status until the server is up and its store is reachable,
or give up after --timeout.

Example:
  identityctl wait
  identityctl wait --port 3000 --timeout 2m`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetInt("port")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		if err := waitForServer(port, timeout); err != nil {
			fmt.Fprintf(os.Stderr, "Server did not become ready: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Server is ready")
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().IntP("port", "p", defaultPortInt(), "Server port to poll")
	waitCmd.Flags().DurationP("timeout", "t", 90*time.Second, "How long to keep polling")
}

func waitForServer(port int, timeout time.Duration) error {
	url := fmt.Sprintf("http://localhost:%d/status", port)
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	var lastState string
	for time.Now().Before(deadline) {
		if state, ok := probeStatus(client, url); ok {
			return nil
		} else if state != "" {
			lastState = state
		}
		time.Sleep(time.Second)
	}

	if lastState != "" {
		return fmt.Errorf("gave up after %s (last status: %s)", timeout, lastState)
	}
	return fmt.Errorf("gave up after %s (server unreachable)", timeout)
}

// probeStatus returns the reported status string and whether the server
// is fully healthy, store included.
func probeStatus(client *http.Client, url string) (string, bool) {
	resp, err := client.Get(url)
	if err != nil {
		return "", false
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", false
	}
	return body.Status, resp.StatusCode == http.StatusOK && body.Status == "ok"
}
