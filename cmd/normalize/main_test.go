package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bondpulse/internal/dataprocessing"
	"bondpulse/internal/exporter"
	"bondpulse/internal/shared/testutil"
)

func readRecords(t *testing.T, data []byte) [][]string {
	t.Helper()
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRunToStdout(t *testing.T) {
	dir := testutil.TickDir(t, "zn")
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-in", filepath.Join(dir, "zn.csv")}, &stdout, &stderr)
	require.NoError(t, err)

	records := readRecords(t, stdout.Bytes())
	require.Len(t, records, 6)
	assert.Equal(t, exporter.Columns, records[0])
	assert.Contains(t, stderr.String(), "ticker=ZN")
	assert.Contains(t, stderr.String(), "skipped_rows=1")
}

func TestRunToFileWithGapFill(t *testing.T) {
	dir := testutil.TickDir(t, "ZN")
	out := filepath.Join(t.TempDir(), "ZN_normalized.csv")
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{
		"-in", filepath.Join(dir, "ZN.csv"),
		"-out", out,
		"-gapfill",
		"-interval", "1h",
	}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	records := readRecords(t, data)
	assert.Equal(t, exporter.FilledColumn, records[0][len(records[0])-1])
	// two sessions of 18:00..17:00 on an hourly grid
	assert.Len(t, records, 1+2*24)
}

func TestRunGapFillDropsOffGridSessions(t *testing.T) {
	// the 2025-10-02 session only has ticks at :07 past the hour
	csv := "Date,Lst Trd/Lst Prxx\n" +
		"2025-10-01 18:00:00,110-00\n" +
		"2025-10-02 18:07:00,111-00\n" +
		"2025-10-03 09:07:00,111-08\n"
	in := testutil.WriteTickFile(t, t.TempDir(), "ZN.csv", csv)

	rowsFor := func(mode string) [][]string {
		var stdout bytes.Buffer
		err := run(context.Background(), []string{"-in", in, "-gapfill", "-interval", "1h", "-fill-mode", mode},
			&stdout, &bytes.Buffer{})
		require.NoError(t, err)
		return readRecords(t, stdout.Bytes())
	}

	assert.Len(t, rowsFor("reindex"), 1+24)
	assert.Len(t, rowsFor("asof"), 1+2*24)
}

func TestRunToWorkbook(t *testing.T) {
	dir := testutil.TickDir(t, "ZN")
	out := filepath.Join(t.TempDir(), "ZN.xlsx")

	err := run(context.Background(), []string{"-in", filepath.Join(dir, "ZN.csv"), "-out", out}, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(exporter.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestParseFlags(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		var stderr bytes.Buffer
		_, err := parseFlags(nil, &stderr)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "-in is required")
	})

	t.Run("ticker from file name", func(t *testing.T) {
		o, err := parseFlags([]string{"-in", "/data/zb.xlsx"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, "ZB", o.ticker)
		assert.False(t, o.gapFill)
		assert.Equal(t, dataprocessing.GapFillReindex, o.fillMode)
	})

	t.Run("fill mode", func(t *testing.T) {
		o, err := parseFlags([]string{"-in", "x.csv", "-gapfill", "-fill-mode", "asof"}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, dataprocessing.GapFillAsOf, o.fillMode)

		_, err = parseFlags([]string{"-in", "x.csv", "-fill-mode", "linear"}, &bytes.Buffer{})
		assert.ErrorContains(t, err, "unknown gap fill mode")
	})

	t.Run("bad interval", func(t *testing.T) {
		_, err := parseFlags([]string{"-in", "x.csv", "-gapfill", "-interval", "0s"}, &bytes.Buffer{})
		require.Error(t, err)
	})
}

func TestRunUnsupportedInput(t *testing.T) {
	path := testutil.WriteTickFile(t, t.TempDir(), "ZN.json", "{}")
	err := run(context.Background(), []string{"-in", path}, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported"))
}
