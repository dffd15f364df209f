package cli

import (
	"context"
	"fmt"
	"strings"

	"jobfit/internal/ai"
	"jobfit/internal/common"
	"jobfit/internal/pipeline"
	"jobfit/internal/types"

	"github.com/spf13/cobra"
)

var reviseCmd = &cobra.Command{
	Use:   "revise [session-id]",
	Short: "Revise the summary of a completed analysis session",
	Long: `Regenerate the narrative summary for a persisted analysis session using
recruiter feedback. The stored fit analysis record, its scores, and its
evidence are never recomputed: only the summary text changes, and every
revision is appended to the session's audit trail with the next sequence
number.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if strings.TrimSpace(reviseComment) == "" {
			return fmt.Errorf("a revision comment is required (use --comment)")
		}
		// Apply default format if not specified
		if reviseConfig.OutputFormat == "" {
			reviseConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(reviseConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runRevise,
}

var (
	reviseConfig  common.CommandConfig
	reviseComment string
)

func init() {
	reviseCmd.Flags().StringVarP(&reviseComment, "comment", "m", "", "Recruiter feedback guiding the revision (required)")
	reviseCmd.Flags().StringVarP(&reviseConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	reviseCmd.Flags().StringVar(&reviseConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = reviseCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runRevise(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	store := pipeline.NewStore(cfg.App.ReportDir, logger)
	report, err := store.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", args[0], err)
	}

	session, err := pipeline.RestoreSession(report)
	if err != nil {
		return fmt.Errorf("session %s cannot be revised: %w", args[0], err)
	}

	orch, err := newOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("Starting summary revision",
		"session_id", session.ID,
		"comment_chars", len(reviseComment),
		"output_format", reviseConfig.OutputFormat)

	runRevision := func(ctx context.Context) (types.Summary, *ai.TokenUsage, error) {
		summary, tokenUsage, runErr := orch.Revise(ctx, session, types.RevisionRequest{
			Comment: reviseComment,
		})
		if runErr != nil {
			return types.Summary{}, tokenUsage, runErr
		}

		if _, saveErr := store.Save(session.Report()); saveErr != nil {
			logger.LogError(saveErr, "Failed to persist revised report",
				"session_id", session.ID)
		}

		return summary, tokenUsage, nil
	}

	err = common.RunSessionCommand(cmd.Context(), logger, reviseConfig, runRevision)
	if err != nil {
		return fmt.Errorf("failed to revise summary: %w", err)
	}
	logger.Info("Summary revision completed successfully")
	return nil
}
