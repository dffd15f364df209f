package cli

import (
	"context"
	"fmt"
	"time"

	"jobfit/internal/ai"
	"jobfit/internal/common"
	"jobfit/internal/config"
	"jobfit/internal/errors"
	"jobfit/internal/ingest"
	"jobfit/internal/pipeline"
	"jobfit/internal/scoring"
	"jobfit/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-source] [job-source]",
	Short: "Analyze how well a resume fits a job description",
	Long: `Run a full fit analysis session for a resume against a job description.
Sources may be local file paths or http(s) URLs.

The pipeline redacts contact details, extracts structured data from both
documents, matches skills deterministically, scores the fit with verbatim
evidence for every text-based claim, and generates a narrative summary.
The resulting report is printed and persisted for later revision with
'jobfit revise'.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// newOrchestrator assembles the full pipeline for CLI use: one AI service per
// operation, the shared document loader, and a scoring engine built from the
// configured knobs.
func newOrchestrator(cfg *config.Config, logger *errors.Logger) (*pipeline.Orchestrator, error) {
	engineCfg, err := cfg.Scoring.EngineConfig(time.Now())
	if err != nil {
		return nil, fmt.Errorf("invalid scoring configuration: %w", err)
	}
	engine, err := scoring.NewEngine(engineCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create scoring engine: %w", err)
	}

	parseResumeConfig := cfg.GetParseResumeConfig()
	resumeService, err := ai.NewService(&parseResumeConfig, "parseResume", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create resume parsing service: %w", err)
	}

	parseJobConfig := cfg.GetParseJobConfig()
	jobService, err := ai.NewService(&parseJobConfig, "parseJob", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create job parsing service: %w", err)
	}

	summarizeConfig := cfg.GetSummarizeConfig()
	summarizeService, err := ai.NewService(&summarizeConfig, "summarize", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create summarize service: %w", err)
	}

	collab := pipeline.Collaborators{
		Loader:       ingest.NewLoader(cfg.App.MaxFileSize, logger),
		Redactor:     pipeline.NewLocalRedactor(),
		ResumeParser: resumeService.Provider,
		JobParser:    jobService.Provider,
		Summarizer:   summarizeService.Provider,
	}

	return pipeline.NewOrchestrator(collab, engine, pipeline.DefaultRetryPolicy(), logger, nil), nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	orch, err := newOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("Starting fit analysis",
		"resume_source", args[0],
		"job_source", args[1],
		"output_format", analyzeConfig.OutputFormat)

	store := pipeline.NewStore(cfg.App.ReportDir, logger)

	runSession := func(ctx context.Context) (types.AnalysisReport, *ai.TokenUsage, error) {
		session, tokenUsage, runErr := orch.Analyze(ctx, pipeline.AnalyzeInput{
			ResumeSource: args[0],
			JobSource:    args[1],
		})
		if runErr != nil {
			return types.AnalysisReport{}, tokenUsage, runErr
		}

		report := session.Report()
		path, saveErr := store.Save(report)
		if saveErr != nil {
			// The analysis is still valid even if persistence fails
			logger.LogError(saveErr, "Failed to persist analysis report",
				"session_id", session.ID)
		} else {
			logger.Info("Analysis report persisted",
				"session_id", session.ID,
				"path", path)
		}

		return report, tokenUsage, nil
	}

	err = common.RunSessionCommand(cmd.Context(), logger, analyzeConfig, runSession)
	if err != nil {
		return fmt.Errorf("failed to analyze fit: %w", err)
	}
	logger.Info("Fit analysis completed successfully")
	return nil
}
