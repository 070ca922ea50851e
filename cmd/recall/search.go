package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search session titles and summaries",
		Long:  `Search cached sessions for any of the given terms, case-insensitive.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  makeSearchRunner(),
	}

	cmd.Flags().Bool("samples", false, "Include sample sessions")
	return cmd
}

func makeSearchRunner() func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		includeSamples, _ := cmd.Flags().GetBool("samples")
		asJSON, _ := cmd.Flags().GetBool("json")

		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}

		sessions := svc.Search(strings.Join(args, " "), includeSamples)

		if asJSON {
			return outputJSON(cmd, sessions)
		}
		for _, s := range sessions {
			printSessionLine(cmd, s)
		}
		return nil
	}
}
