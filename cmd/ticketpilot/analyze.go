package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/ticketpilot/internal/render"
	"github.com/ShayCichocki/ticketpilot/internal/triage"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

var (
	analyzeJSON        bool
	analyzeNoKB        bool
	analyzeNoProduct   bool
	analyzeNoPrice     bool
	analyzeArtwork     bool
	analyzeNoSynthesis bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <ticketId>",
	Short: "Analyze one ticket and print the result",
	Long: `Run the full pipeline for one Freshdesk ticket in-process and print the
result as a card, or as JSON with --json.

Examples:
  ticketpilot analyze 123
  ticketpilot analyze 123 --no-synthesis
  ticketpilot analyze 123 --json > result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the raw analysis result as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeNoKB, "no-kb", false, "Skip the knowledge base agent")
	analyzeCmd.Flags().BoolVar(&analyzeNoProduct, "no-product", false, "Skip the product availability agent")
	analyzeCmd.Flags().BoolVar(&analyzeNoPrice, "no-price", false, "Skip the price agent")
	analyzeCmd.Flags().BoolVar(&analyzeArtwork, "artwork", false, "Include the artwork placeholder for ARTWORK tickets")
	analyzeCmd.Flags().BoolVar(&analyzeNoSynthesis, "no-synthesis", false, "Skip drafting a reply")
}

// parseTicketArg parses a positive ticket number.
func parseTicketArg(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ticket ID %q: must be a positive number", arg)
	}
	return id, nil
}

// buildOptions maps the command flags to pipeline options.
func buildOptions(noKB, noProduct, noPrice, artwork, noSynthesis bool) models.Options {
	return models.Options{
		IncludeKB:        models.Bool(!noKB),
		IncludeProduct:   models.Bool(!noProduct),
		IncludePrice:     models.Bool(!noPrice),
		IncludeArtwork:   models.Bool(artwork),
		IncludeSynthesis: models.Bool(!noSynthesis),
	}
}

// describeError gives an operator-facing explanation of a pipeline failure.
func describeError(err error, ticketID int64) string {
	switch triage.StatusClass(err) {
	case triage.ClassNotFound:
		return fmt.Sprintf("Ticket #%d not found in Freshdesk", ticketID)
	case triage.ClassAuth:
		return "Freshdesk rejected the credentials; check freshdesk.api_key"
	case triage.ClassUnavailable:
		return "Could not reach an external service"
	case triage.ClassTimeout:
		return "The request timed out"
	}
	var clsErr *triage.ClassificationError
	if errors.As(err, &clsErr) {
		return fmt.Sprintf("Could not classify ticket #%d: %v", ticketID, clsErr.Err)
	}
	return err.Error()
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ticketID, err := parseTicketArg(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Keep logs from interleaving with the spinner unless asked for.
	if logLevel == "" {
		cfg.Logging.Level = "error"
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, err := createPipeline(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opts := buildOptions(analyzeNoKB, analyzeNoProduct, analyzeNoPrice, analyzeArtwork, analyzeNoSynthesis)
	label := fmt.Sprintf("Analyzing ticket #%d...", ticketID)
	animate := render.Interactive() && !analyzeJSON

	result, err := render.WithSpinner(ctx, os.Stderr, label, animate, func(ctx context.Context) (*models.AnalysisResult, error) {
		return p.orchestrator.AnalyzeTicket(ctx, ticketID, opts)
	})
	if err != nil {
		if errors.Is(err, render.ErrInterrupted) {
			render.Warn(os.Stderr, "Analysis cancelled")
			return err
		}
		render.Fail(os.Stderr, describeError(err, ticketID))
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintln(out, render.NewCard().Render(result))
	in, outTokens := p.llm.Tracker().Total()
	render.OK(os.Stderr, fmt.Sprintf("%d LLM calls, %d input / %d output tokens, ~$%.4f",
		p.llm.Tracker().Calls(), in, outTokens, p.llm.Tracker().Cost()))
	return nil
}
