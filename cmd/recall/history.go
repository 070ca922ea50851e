package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded cache snapshots",
		Long:  `Show the snapshot history of the cache. Requires history to be enabled in the config.`,
		RunE:  makeHistoryRunner(),
	}

	cmd.Flags().Int("limit", 20, "Maximum number of entries")
	return cmd
}

func makeHistoryRunner() func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}

		entries, err := svc.HistoryLog(limit)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}

		if asJSON {
			return outputJSON(cmd, entries)
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
				e.Hash[:7], e.Timestamp.UTC().Format(time.RFC3339), e.Message)
		}
		return nil
	}
}
