// Package exporter writes normalized ticker tables to files.
//
// CSVWriter produces the column layout of the normalized table (Date, Price,
// TradingDay, TimeOfDay, WeekDay, Relative Price, DaySD, DayMean) with a UTF-8
// BOM so spreadsheet tools detect the encoding. WriteXLSX writes the same
// layout to a workbook. NaN values are left blank in both formats.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	if err := w.WriteFile(ctx, "out/ZN.csv", table); err != nil {
//		return err
//	}
package exporter
