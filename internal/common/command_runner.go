package common

import (
	"context"
	"fmt"
	"os"

	"jobfit/internal/ai"
	"jobfit/internal/errors"
)

// SessionFunc runs a complete analysis session and returns its result
// together with aggregated token usage.
type SessionFunc[Output any] func(ctx context.Context) (Output, *ai.TokenUsage, error)

// RunSessionCommand encapsulates the common logic for CLI commands that
// drive a session: execute, report token usage, format and write output.
func RunSessionCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	run SessionFunc[Output],
) error {
	outputHandler := NewOutputHandler(logger)

	result, tokenUsage, err := run(ctx)
	if err != nil {
		return err
	}

	ReportTokenUsage(logger, tokenUsage)

	return outputHandler.HandleOutput(result, cmdConfig)
}

// ReportTokenUsage logs aggregated token usage, falling back to stderr
// when no logger is configured.
func ReportTokenUsage(logger *errors.Logger, tokenUsage *ai.TokenUsage) {
	if tokenUsage == nil {
		return
	}
	if logger != nil {
		logger.Info("AI token usage",
			"input_tokens", tokenUsage.InputTokens,
			"output_tokens", tokenUsage.OutputTokens,
			"total_tokens", tokenUsage.TotalTokens)
	} else {
		fmt.Fprintf(os.Stderr, "AI token usage: input=%d, output=%d, total=%d\n",
			tokenUsage.InputTokens, tokenUsage.OutputTokens, tokenUsage.TotalTokens)
	}
}
