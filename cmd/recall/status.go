package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show engine status",
		Long:  `Show the resolved scope, cache location and per-category session counts.`,
		RunE:  makeStatusRunner(),
	}

	return cmd
}

func makeStatusRunner() func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}

		status := svc.Status()
		stats := svc.CategoryStats()

		if asJSON {
			return outputJSON(cmd, map[string]any{
				"status":     status,
				"categories": stats,
			})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "scope:    %s\n", status.Scope)
		fmt.Fprintf(out, "cache:    %s\n", status.CachePath)
		fmt.Fprintf(out, "chats:    %s\n", status.ChatDir)
		fmt.Fprintf(out, "sessions: %d\n", status.Sessions)
		fmt.Fprintf(out, "history:  %v\n", status.History)

		labels := make([]string, 0, len(stats))
		for label := range stats {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		fmt.Fprintln(out)
		for _, label := range labels {
			info := stats[label]
			if info.Count == 0 {
				continue
			}
			fmt.Fprintf(out, "  %-16s %d\n", label, info.Count)
		}
		return nil
	}
}
