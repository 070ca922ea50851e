package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewDelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "del <id>",
		Aliases: []string{"delete", "rm"},
		Short:   "Delete a session",
		Long:    `Delete a session from the cache by id.`,
		Args:    cobra.ExactArgs(1),
		RunE:    makeDelRunner(),
	}

	return cmd
}

func makeDelRunner() func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}

		if err := svc.DeleteSession(args[0]); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	}
}
