package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/4thel00z/recall/internal"
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "recall",
		Short:         "Conversation reference engine for your editor",
		Long:          `Ingests Q/A fragments from editor storage, normalizes them into scored sessions and serves token-budgeted references.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	addSubcommands(rootCmd)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("scope", "", "Target scope (global|project)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
}

func addSubcommands(root *cobra.Command) {
	root.AddCommand(
		NewScanCmd(),
		NewListCmd(),
		NewSearchCmd(),
		NewRecommendCmd(),
		NewReferenceCmd(),
		NewTemplatesCmd(),
		NewShowCmd(),
		NewDelCmd(),
		NewWatchCmd(),
		NewStatusCmd(),
		NewHistoryCmd(),
	)
}

// serviceFor builds the engine for the scope and verbosity the command
// was invoked with.
func serviceFor(cmd *cobra.Command) (*internal.Service, error) {
	scopeHint, _ := cmd.Flags().GetString("scope")
	verbose, _ := cmd.Flags().GetBool("verbose")

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	resolver := internal.NewScopeResolver()
	scope := resolver.Resolve(scopeHint)

	cfg, err := internal.LoadConfig(scope)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	svc, err := internal.NewService(scope, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSessionLine(cmd *cobra.Command, s *internal.Session) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s]  %.2f  %s\n", s.ID, s.Category, s.Importance, s.Title)
}
