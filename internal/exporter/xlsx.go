package exporter

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"bondpulse/pkg/contracts/domain"
)

// SheetName is the worksheet written by WriteXLSX
const SheetName = "Sheet1"

// WriteXLSX writes table to a workbook at path with the CSV column layout.
// Numeric columns stay numeric; NaN cells are left empty.
func WriteXLSX(ctx context.Context, path string, table *domain.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to open sheet writer: %w", err)
	}

	cols := header(table)
	headerRow := make([]interface{}, len(cols))
	for i, c := range cols {
		headerRow[i] = c
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	filled := table.GapFilled()
	row := 2
	table.Each(func(r domain.NormalizedTick) bool {
		if (row-2)%checkEvery == 0 {
			if err = ctx.Err(); err != nil {
				return false
			}
		}
		var cell string
		cell, err = excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return false
		}
		values := []interface{}{
			cellNumber(r.Date),
			cellNumber(r.Price),
			r.DayString(),
			r.TimeOfDay.String(),
			r.WeekDay,
			cellNumber(r.RelativePrice),
			cellNumber(r.DaySD),
			cellNumber(r.DayMean),
		}
		if filled {
			values = append(values, r.Filled)
		}
		if err = sw.SetRow(cell, values); err != nil {
			err = fmt.Errorf("failed to write row %d: %w", row, err)
			return false
		}
		row++
		return true
	})
	if err != nil {
		return err
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func cellNumber(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
