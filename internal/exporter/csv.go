package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"bondpulse/internal/infrastructure"
	"bondpulse/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns is the header of an exported table
var Columns = []string{
	"Date", "Price", "TradingDay", "TimeOfDay", "WeekDay",
	"Relative Price", "DaySD", "DayMean",
}

// FilledColumn is appended to Columns when the table was gap filled
const FilledColumn = "Filled"

// checkEvery controls how often row loops poll for cancellation
const checkEvery = 4096

// CSVWriter exports normalized tables as CSV
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	return &CSVWriter{logger: infrastructure.WithComponent(logger, "exporter")}
}

// WriteFile writes table to path, creating parent directories
func (w *CSVWriter) WriteFile(ctx context.Context, path string, table *domain.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	sw, err := CreateStreamWriter(path, header(table))
	if err != nil {
		return err
	}
	if err := writeRows(ctx, sw.WriteRecord, table); err != nil {
		_ = sw.Close()
		return err
	}
	if err := sw.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	w.logger.InfoContext(ctx, "table exported",
		slog.String("ticker", table.Ticker()),
		slog.String("path", path),
		slog.Int("rows", table.Len()))
	return nil
}

// Write writes table to out with a leading BOM
func (w *CSVWriter) Write(ctx context.Context, out io.Writer, table *domain.Table) error {
	if _, err := out.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}
	cw := csv.NewWriter(out)
	if err := cw.Write(header(table)); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	if err := writeRows(ctx, cw.Write, table); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func header(table *domain.Table) []string {
	cols := append([]string(nil), Columns...)
	if table.GapFilled() {
		cols = append(cols, FilledColumn)
	}
	return cols
}

func writeRows(ctx context.Context, write func([]string) error, table *domain.Table) error {
	filled := table.GapFilled()
	var err error
	i := 0
	table.Each(func(r domain.NormalizedTick) bool {
		if i%checkEvery == 0 {
			if err = ctx.Err(); err != nil {
				return false
			}
		}
		if err = write(Record(r, filled)); err != nil {
			err = fmt.Errorf("failed to write record %d: %w", i, err)
			return false
		}
		i++
		return true
	})
	return err
}

// Record formats one row in Columns order
func Record(r domain.NormalizedTick, withFilled bool) []string {
	rec := []string{
		formatFloat(r.Date),
		formatFloat(r.Price),
		r.DayString(),
		r.TimeOfDay.String(),
		r.WeekDay,
		formatFloat(r.RelativePrice),
		formatFloat(r.DaySD),
		formatFloat(r.DayMean),
	}
	if withFilled {
		rec = append(rec, strconv.FormatBool(r.Filled))
	}
	return rec
}

// formatFloat keeps full precision; NaN and infinities are left blank
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates path, writes the BOM and headers
func CreateStreamWriter(path string, headers []string) (*StreamWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := file.Write(utf8BOM); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{file: file, writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
