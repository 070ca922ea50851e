package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewReferenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reference [template]",
		Aliases: []string{"ref"},
		Short:   "Render a token-budgeted reference",
		Long:    `Render a reference from a template (default "recent"), from explicit session ids, or as a compact block for tight contexts.`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    makeReferenceRunner(),
	}

	cmd.Flags().String("input", "", "Free text to match topic templates against")
	cmd.Flags().String("input-file", "", "Read the matching input from a file")
	cmd.Flags().StringSlice("ids", nil, "Compose from these session ids instead of a template")
	cmd.Flags().String("title", "", "Title for an id-based reference")
	cmd.Flags().Int("max-tokens", 0, "Render the compact form under this token budget")
	return cmd
}

func makeReferenceRunner() func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		inputFile, _ := cmd.Flags().GetString("input-file")
		ids, _ := cmd.Flags().GetStringSlice("ids")
		title, _ := cmd.Flags().GetString("title")
		maxTokens, _ := cmd.Flags().GetInt("max-tokens")

		if inputFile != "" {
			data, err := os.ReadFile(inputFile)
			if err != nil {
				return fmt.Errorf("read input file: %w", err)
			}
			input = string(data)
		}

		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}

		if maxTokens > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), svc.LightweightReference(maxTokens))
			return nil
		}

		if len(ids) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), svc.CustomReference(ids, title))
			return nil
		}

		templateID := "recent"
		if len(args) > 0 {
			templateID = args[0]
		}

		reference, err := svc.ReferenceByTemplate(templateID, input)
		if err != nil {
			return fmt.Errorf("compose reference: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), reference)
		return nil
	}
}
