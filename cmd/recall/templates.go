package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List reference templates",
		Long:  `List the built-in reference templates and how many cached sessions each currently matches.`,
		RunE:  makeTemplatesRunner(),
	}

	return cmd
}

func makeTemplatesRunner() func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}

		templates := svc.Templates()

		if asJSON {
			return outputJSON(cmd, templates)
		}
		for _, t := range templates {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %3d match(es)  %s\n", t.ID, t.MatchCount, t.Description)
		}
		return nil
	}
}
