package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"bondpulse/internal/config"
	"bondpulse/internal/dataprocessing"
	"bondpulse/pkg/contracts/domain"
)

// Loader builds the table of one ticker from its tick file
type Loader interface {
	Load(ctx context.Context, symbol, path string) (*domain.Table, dataprocessing.BuildStats, error)
}

// FileLoader reads CSV or workbook exports and runs the pipeline over them
type FileLoader struct {
	pipeline *dataprocessing.Pipeline
	sheet    string
}

// NewFileLoader creates a loader. sheet selects the workbook sheet; empty auto-detects.
func NewFileLoader(opts dataprocessing.Options, sheet string, logger *slog.Logger) *FileLoader {
	return &FileLoader{
		pipeline: dataprocessing.NewPipeline(opts, logger),
		sheet:    sheet,
	}
}

// Load implements Loader
func (l *FileLoader) Load(ctx context.Context, symbol, path string) (*domain.Table, dataprocessing.BuildStats, error) {
	raw, err := l.read(path)
	if err != nil {
		return nil, dataprocessing.BuildStats{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	info := domain.TableInfo{
		Ticker:  symbol,
		Source:  path,
		BuiltAt: time.Now().UTC(),
	}
	return l.pipeline.Build(ctx, info, raw)
}

func (l *FileLoader) read(path string) ([]domain.RawTick, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if l.sheet != "" && (ext == ".xlsx" || ext == ".xlsm") {
		return dataprocessing.ReadXLSX(path, l.sheet)
	}
	return dataprocessing.ReadFile(path)
}

// PipelineOptions maps the data configuration to pipeline options
func PipelineOptions(cfg config.DataConfig) dataprocessing.Options {
	opts := dataprocessing.DefaultOptions()
	if !cfg.GapFill.Enabled {
		return opts
	}
	g := dataprocessing.NewGapFiller()
	if cfg.GapFill.Interval > 0 {
		g.Interval = cfg.GapFill.Interval
	}
	if cfg.GapFill.SessionOpen > 0 {
		g.SessionOpen = cfg.GapFill.SessionOpen
	}
	if cfg.GapFill.SessionClose > 0 {
		g.SessionClose = cfg.GapFill.SessionClose
	}
	// Config.validate and the normalize flags reject unknown modes
	if mode, err := dataprocessing.ParseGapFillMode(cfg.GapFill.Mode); err == nil {
		g.Mode = mode
	}
	opts.GapFill = g
	return opts
}
