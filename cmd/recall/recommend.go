package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func NewRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend <input>",
		Short: "Rank sessions against free-text input",
		Long:  `Score cached sessions against the given text and print the most relevant ones.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  makeRecommendRunner(),
	}

	cmd.Flags().Int("max", 5, "Maximum number of recommendations")
	return cmd
}

func makeRecommendRunner() func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		max, _ := cmd.Flags().GetInt("max")
		asJSON, _ := cmd.Flags().GetBool("json")

		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}

		sessions := svc.Recommend(strings.Join(args, " "), max)

		if asJSON {
			return outputJSON(cmd, sessions)
		}
		for _, s := range sessions {
			printSessionLine(cmd, s)
		}
		return nil
	}
}
