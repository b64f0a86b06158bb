package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scriptmarket/identity-in-go/pkg/config"
)

var configurationWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the config file and report reloads",
	Long: `Watch the config file and print each attribute set after a reload.

Useful for checking what a running server with --watch-config will pick
up when the file changes. Interrupt to stop.

Example:
  identityctl configuration watch`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Watching %s\n", cfg.FilePath())

		stop := make(chan struct{})
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigs
			close(stop)
		}()

		err = config.Watch(stop, func(reloaded *config.Config) {
			fmt.Println("Configuration reloaded:")
			fmt.Print(reloaded.FormatText())
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationWatchCmd)
}
