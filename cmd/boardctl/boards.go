package main

import (
	"errors"
	"fmt"

	"github.com/ferrylane/river-conditions/internal/adapter/upstream"
	"github.com/ferrylane/river-conditions/internal/config"
	"github.com/ferrylane/river-conditions/internal/domain"
	"github.com/ferrylane/river-conditions/internal/observability"
	"github.com/ferrylane/river-conditions/internal/pipeline"
	"github.com/spf13/cobra"
)

var errNoBoardData = errors.New("no source produced board data")

func newBoardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "Run one board extraction against the live sources",
		Long: `Run one board extraction against the configured sources and print
the result. With --debug every stage is fetched and its candidate lines
and parsed records are printed, whether or not it was acceptable.

Example:
  boardctl boards
  boardctl boards --debug -o json
  boardctl boards --primary-url http://localhost:8000/guidance.html`,
		Args: cobra.NoArgs,
		RunE: runBoards,
	}
	cmd.Flags().Bool("debug", false, "print per-stage diagnostics instead of the result")
	cmd.Flags().String("primary-url", "", "override BOARDS_PRIMARY_URL")
	cmd.Flags().String("fallback-url", "", "override BOARDS_FALLBACK_URL")
	return cmd
}

func runBoards(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if v, _ := cmd.Flags().GetString("primary-url"); v != "" {
		cfg.BoardsPrimaryURL = v
	}
	if v, _ := cmd.Flags().GetString("fallback-url"); v != "" {
		cfg.BoardsFallbackURL = v
	}

	logger := newLogger(cmd)
	metrics := observability.NewMetricsForTesting()
	client := upstream.NewClient(cfg.UpstreamTimeout, cfg.UserAgent, metrics, logger)
	stages := pipeline.DefaultStages(cfg.BoardsPrimaryURL, cfg.BoardsFallbackURL, cfg.BoardsMinRecords, cfg.BoardsMaxLineLength)
	extractor := pipeline.New(client, stages, cfg.BoardsCacheTTL, logger, metrics)

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		return render(cmd, extractor.Diagnose(cmd.Context()))
	}

	res := extractor.GetBoardStatuses(cmd.Context(), true)
	if err := render(cmd, res); err != nil {
		return err
	}
	if domain.IsPlaceholder(res.Records) {
		return errNoBoardData
	}
	return nil
}
