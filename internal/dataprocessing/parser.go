package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"bondpulse/pkg/contracts/domain"
)

// Reader errors
var (
	ErrMissingColumn     = errors.New("required column missing")
	ErrUnsupportedFormat = errors.New("unsupported tick file format")
	ErrNoTickSheet       = errors.New("could not find tick data sheet in workbook")
)

const utf8BOM = "\ufeff"

// columnIndex locates the date and price columns in a header row
func columnIndex(header []string) (dateCol, priceCol int, err error) {
	dateCol, priceCol = -1, -1
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))
		switch {
		case strings.EqualFold(name, domain.ColumnDate) && dateCol < 0:
			dateCol = i
		case strings.EqualFold(name, domain.ColumnPrice) && priceCol < 0:
			priceCol = i
		}
	}
	if dateCol < 0 {
		return -1, -1, fmt.Errorf("%w: %q", ErrMissingColumn, domain.ColumnDate)
	}
	if priceCol < 0 {
		return -1, -1, fmt.Errorf("%w: %q", ErrMissingColumn, domain.ColumnPrice)
	}
	return dateCol, priceCol, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// rowsToTicks converts a header plus data rows into raw ticks.
// Row numbers are 1-based and count the header line.
func rowsToTicks(rows [][]string) ([]domain.RawTick, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	dateCol, priceCol, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}

	ticks := make([]domain.RawTick, 0, len(rows)-1)
	for i, row := range rows[1:] {
		date, price := cell(row, dateCol), cell(row, priceCol)
		if strings.TrimSpace(date) == "" && strings.TrimSpace(price) == "" {
			continue
		}
		ticks = append(ticks, domain.RawTick{
			Row:   i + 2,
			Date:  date,
			Price: price,
		})
	}
	return ticks, nil
}

// ReadCSV reads a tick export with at least the Date and price columns
func ReadCSV(r io.Reader) ([]domain.RawTick, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rowsToTicks(rows)
}

// ReadXLSX reads a tick export workbook. Cells are read raw so that date
// cells arrive as spreadsheet serial numbers. An empty sheet name selects the
// first sheet carrying the expected headers.
func ReadXLSX(path, sheet string) ([]domain.RawTick, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	raw := excelize.Options{RawCellValue: true}
	if sheet != "" {
		rows, err := f.GetRows(sheet, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		return rowsToTicks(rows)
	}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, raw)
		if err != nil || len(rows) == 0 {
			continue
		}
		if _, _, err := columnIndex(rows[0]); err == nil {
			return rowsToTicks(rows)
		}
	}
	return nil, ErrNoTickSheet
}

// ReadFile dispatches on the file extension
func ReadFile(path string) ([]domain.RawTick, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, "")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
