package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/4thel00z/recall/internal"
	"github.com/spf13/cobra"
)

func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one session in full",
		Long:  `Print a cached session with its messages. Compressed sessions can show their retained originals or a compression audit instead.`,
		Args:  cobra.ExactArgs(1),
		RunE:  makeShowRunner(),
	}

	cmd.Flags().Bool("raw", false, "Show the uncompressed originals of a compressed session")
	cmd.Flags().Bool("audit", false, "Show what compression kept and dropped")
	return cmd
}

func makeShowRunner() func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		audit, _ := cmd.Flags().GetBool("audit")
		asJSON, _ := cmd.Flags().GetBool("json")

		svc, err := serviceFor(cmd)
		if err != nil {
			return err
		}

		session, err := svc.GetSession(args[0])
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}

		if audit {
			return showAudit(cmd, session, asJSON)
		}

		if asJSON {
			return outputJSON(cmd, session)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", session.Title)
		fmt.Fprintf(out, "id: %s | category: %s | importance: %.2f\n", session.ID, session.Category, session.Importance)
		if session.Compressed() {
			fmt.Fprintf(out, "compressed: ratio %.2f\n", session.CompressionRatio)
		}
		fmt.Fprintf(out, "summary: %s\n\n", session.Summary)

		messages := session.Messages
		if raw && session.Compressed() {
			messages = session.RawMessages
		}
		for _, m := range messages {
			ts := time.UnixMilli(m.TimestampMillis).UTC().Format(time.RFC3339)
			fmt.Fprintf(out, "[%s] %s\n%s\n\n", m.Role, ts, m.Content)
		}
		return nil
	}
}

func showAudit(cmd *cobra.Command, session *internal.Session, asJSON bool) error {
	report := internal.AuditCompression(session)
	if report == nil {
		return fmt.Errorf("session %s was never compressed", session.ID)
	}

	if asJSON {
		return outputJSON(cmd, report)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ratio: %.2f (%d -> %d tokens)\n", report.Ratio, report.OriginalTokens, report.CompressedTokens)
	fmt.Fprintf(out, "preserved key points: %d\n", len(report.PreservedKeyPoints))
	if len(report.DroppedKeyPoints) > 0 {
		fmt.Fprintf(out, "dropped key points:\n  %s\n", strings.Join(report.DroppedKeyPoints, "\n  "))
	}
	fmt.Fprintf(out, "\n%s\n", report.Diff)
	return nil
}
