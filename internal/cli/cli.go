package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/stackvity/datescan/internal/cli/config"
	"github.com/stackvity/datescan/internal/cli/hooks"
	"github.com/stackvity/datescan/pkg/report"
	"github.com/stackvity/datescan/pkg/scanner"
)

// Streams are the terminal endpoints Run writes to.
type Streams struct {
	Out           io.Writer // Report destination when output is "-"
	Err           io.Writer // Progress spinner
	OutIsTerminal bool
	ErrIsTerminal bool
}

// Run orchestrates the main application logic after configuration loading:
// it scans every input, merges the results and writes the report.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, streams Streams) error {
	var bar hooks.ProgressBar
	if cfg.Progress && !cfg.Verbose && streams.ErrIsTerminal && streams.Err != nil {
		bar = hooks.NewSpinner(streams.Err)
	}
	cliHooks := hooks.NewCLIHooks(logger, cfg.Verbose, bar)
	cfg.Scan.Hooks = cliHooks

	sc, err := scanner.NewScanner(cfg.Scan)
	if err != nil {
		logger.Error("Failed to start scanner", slog.String("error", err.Error()))
		return err
	}
	defer sc.Close()

	logger.Info("Starting scan", slog.Any("inputs", cfg.Inputs), slog.Int("workers", sc.Pool().Workers()))
	agg, err := sc.ScanAll(ctx, cfg.Inputs...)
	cliHooks.Finish()
	if err != nil {
		return err
	}

	rep, err := report.New(agg, report.Meta{Inputs: cfg.Inputs, Concurrency: sc.Pool().Workers()})
	if err != nil {
		logger.Warn("No dates found in any input", slog.Int("dispatched", agg.Stats().Dispatched))
		return fmt.Errorf("build report: %w", err)
	}

	if cfg.ToStdout() {
		styled := cfg.Color && streams.OutIsTerminal && cfg.Format == report.FormatText
		return rep.Write(streams.Out, cfg.Format, report.WithStyle(styled))
	}
	if err := writeFile(cfg.Output, rep, cfg.Format); err != nil {
		logger.Error("Failed to write report", slog.String("path", cfg.Output), slog.String("error", err.Error()))
		return err
	}
	logger.Info("Report written",
		slog.String("path", cfg.Output),
		slog.String("format", string(cfg.Format)),
		slog.Int("files", agg.Count()),
	)
	return nil
}

func writeFile(path string, rep *report.Report, format report.Format) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close report file: %w", closeErr)
		}
	}()
	return rep.Write(f, format)
}
