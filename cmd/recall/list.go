package main

import (
	"github.com/4thel00z/recall/internal"
	"github.com/spf13/cobra"
)

func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cached sessions",
		Long:    `List cached sessions ordered by importance, most important first.`,
		RunE:    makeListRunner(),
	}

	cmd.Flags().Bool("samples", false, "Include sample sessions")
	cmd.Flags().String("category", "", "Only sessions in this category")
	cmd.Flags().String("tag", "", "Only sessions carrying this tag")
	return cmd
}

func makeListRunner() func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		includeSamples, _ := cmd.Flags().GetBool("samples")
		category, _ := cmd.Flags().GetString("category")
		tag, _ := cmd.Flags().GetString("tag")
		asJSON, _ := cmd.Flags().GetBool("json")

		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}

		sessions := svc.ListSessions(includeSamples)
		if category != "" {
			sessions = filterSessions(sessions, func(s *internal.Session) bool { return s.Category == category })
		}
		if tag != "" {
			sessions = filterSessions(sessions, func(s *internal.Session) bool { return s.HasTag(tag) })
		}

		if asJSON {
			return outputJSON(cmd, sessions)
		}
		for _, s := range sessions {
			printSessionLine(cmd, s)
		}
		return nil
	}
}

func filterSessions(sessions []*internal.Session, keep func(*internal.Session) bool) []*internal.Session {
	var out []*internal.Session
	for _, s := range sessions {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
