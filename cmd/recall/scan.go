package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan configured sources and ingest new sessions",
		Long:  `Scan the chat directory and, when configured, the editor's workspace storage, building sessions for anything not already cached.`,
		RunE:  makeScanRunner(),
	}

	cmd.Flags().Bool("seed-samples", false, "Also seed the cache with sample sessions")
	return cmd
}

func makeScanRunner() func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		seedSamples, _ := cmd.Flags().GetBool("seed-samples")

		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}

		added, err := svc.Rescan()
		if err != nil {
			return fmt.Errorf("scan sources: %w", err)
		}

		if seedSamples {
			added += svc.SeedSamples()
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added %d session(s), %d cached total\n", added, svc.Status().Sessions)
		return nil
	}
}
