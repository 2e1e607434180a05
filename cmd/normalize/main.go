// Command normalize turns one raw tick export into the normalized table and
// writes it as CSV or, for a .xlsx output path, as a workbook.
//
//	normalize -in ZN.csv -out ZN_normalized.csv -gapfill
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"bondpulse/internal/config"
	"bondpulse/internal/dataprocessing"
	"bondpulse/internal/exporter"
	"bondpulse/internal/infrastructure"
	"bondpulse/internal/services"
	"bondpulse/internal/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "normalize: %v\n", err)
		}
		os.Exit(1)
	}
}

type options struct {
	in       string
	out      string
	ticker   string
	sheet    string
	gapFill  bool
	fillMode dataprocessing.GapFillMode
	interval time.Duration
	logLevel string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("normalize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.in, "in", "", "raw tick file (.csv or .xlsx)")
	fs.StringVar(&o.out, "out", "", "output file (.csv or .xlsx); stdout when empty")
	fs.StringVar(&o.ticker, "ticker", "", "ticker symbol (defaults to the input file name)")
	fs.StringVar(&o.sheet, "sheet", "", "workbook sheet holding the ticks (auto-detected when empty)")
	fs.BoolVar(&o.gapFill, "gapfill", false, "resample every session onto a fixed grid")
	fs.DurationVar(&o.interval, "interval", dataprocessing.DefaultFillInterval, "gap fill grid interval")
	mode := fs.String("fill-mode", string(dataprocessing.GapFillReindex), "gap fill mode: reindex (on-grid ticks only) or asof")
	fs.StringVar(&o.logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.in == "" {
		fs.Usage()
		return o, errors.New("-in is required")
	}
	if o.gapFill && o.interval <= 0 {
		return o, fmt.Errorf("invalid -interval %s", o.interval)
	}
	fillMode, err := dataprocessing.ParseGapFillMode(*mode)
	if err != nil {
		return o, err
	}
	o.fillMode = fillMode
	if o.ticker == "" {
		o.ticker = strings.TrimSuffix(filepath.Base(o.in), filepath.Ext(o.in))
	}
	o.ticker = config.NormalizeTicker(o.ticker)
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger := infrastructure.NewLoggerWithWriter(config.LoggingConfig{
		Level:  o.logLevel,
		Format: "text",
	}, stderr).With(slog.String("component", "normalize"))

	validator := validation.NewFileValidator(logger)
	if err := validator.ValidateTickFile(o.in); err != nil {
		return err
	}
	if o.out != "" {
		if err := validator.ValidateOutputPath(o.out); err != nil {
			return err
		}
	}

	dataCfg := config.DataConfig{Sheet: o.sheet}
	dataCfg.GapFill.Enabled = o.gapFill
	dataCfg.GapFill.Interval = o.interval
	dataCfg.GapFill.Mode = string(o.fillMode)

	loader := services.NewFileLoader(services.PipelineOptions(dataCfg), o.sheet, logger)
	table, stats, err := loader.Load(ctx, o.ticker, o.in)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "normalized",
		slog.String("ticker", o.ticker),
		slog.Int("input_rows", stats.InputRows),
		slog.Int("output_rows", stats.OutputRows),
		slog.Int("skipped_rows", stats.SkippedRows),
		slog.Int("nan_prices", stats.NaNPrices),
		slog.Int("sessions", stats.Sessions),
		slog.Int("filled_rows", stats.FilledRows),
		slog.Int("dropped_sessions", stats.DroppedDays))

	switch {
	case o.out == "":
		return exporter.NewCSVWriter(logger).Write(ctx, stdout, table)
	case strings.EqualFold(filepath.Ext(o.out), ".xlsx"):
		if err := exporter.WriteXLSX(ctx, o.out, table); err != nil {
			return err
		}
		logger.InfoContext(ctx, "workbook written", slog.String("path", o.out))
		return nil
	default:
		return exporter.NewCSVWriter(logger).WriteFile(ctx, o.out, table)
	}
}
