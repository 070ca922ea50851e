package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the chat directory and ingest changes",
		Long:  `Watch the chat directory for new or changed session files and ingest them as they land.`,
		RunE:  makeWatchRunner(),
	}

	cmd.Flags().Duration("debounce", 0, "Debounce window for batching changes (defaults to config)")
	return cmd
}

func makeWatchRunner() func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		debounce, _ := cmd.Flags().GetDuration("debounce")

		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}

		if debounce > 0 {
			svc.Config().Watch.Debounce = debounce
		}

		status := svc.Status()
		if err := os.MkdirAll(status.ChatDir, 0755); err != nil {
			return fmt.Errorf("create chat directory: %w", err)
		}

		watcher := svc.Watcher()
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer watcher.Stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes...\n", status.ChatDir)

		<-cmd.Context().Done()
		return nil
	}
}
