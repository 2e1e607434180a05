package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bondpulse/internal/dataprocessing"
	"bondpulse/internal/shared/testutil"
	"bondpulse/pkg/contracts/domain"
)

func buildTable(t *testing.T, opts dataprocessing.Options) *domain.Table {
	t.Helper()
	table, _, err := dataprocessing.NewPipeline(opts, nil).
		Build(context.Background(), domain.TableInfo{Ticker: "ZN"}, testutil.TwoSessionTicks())
	require.NoError(t, err)
	return table
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(data, utf8BOM), "missing BOM")
	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriterWrite(t *testing.T) {
	table := buildTable(t, dataprocessing.DefaultOptions())
	logger, _ := testutil.NewTestLogger(t)
	w := NewCSVWriter(logger)

	var buf bytes.Buffer
	require.NoError(t, w.Write(context.Background(), &buf, table))

	records := readCSV(t, buf.Bytes())
	require.Len(t, records, table.Len()+1)
	assert.Equal(t, Columns, records[0])

	first := records[1]
	assert.Equal(t, "110", first[1])
	assert.Equal(t, "2025-10-01", first[2])
	assert.Equal(t, "18:00:00", first[3])
	assert.Equal(t, "Wednesday", first[4])
	assert.Equal(t, "0", first[5])

	// the third row is the 09:00 tick that still belongs to Wednesday's session
	assert.Equal(t, "2025-10-01", records[3][2])
	assert.Equal(t, "09:00:00", records[3][3])
	assert.Equal(t, "-0.5", records[3][5])
}

func TestCSVWriterWriteFile(t *testing.T) {
	table := buildTable(t, dataprocessing.DefaultOptions())
	logger, handler := testutil.NewTestLogger(t)
	w := NewCSVWriter(logger)

	path := filepath.Join(t.TempDir(), "nested", "ZN.csv")
	require.NoError(t, w.WriteFile(context.Background(), path, table))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records := readCSV(t, data)
	assert.Len(t, records, table.Len()+1)
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "table exported")
}

func TestCSVWriterGapFilledColumn(t *testing.T) {
	opts := dataprocessing.DefaultOptions()
	opts.GapFill = dataprocessing.NewGapFiller()
	table := buildTable(t, opts)

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(nil).Write(context.Background(), &buf, table))

	records := readCSV(t, buf.Bytes())
	assert.Equal(t, FilledColumn, records[0][len(records[0])-1])
	assert.Len(t, records[1], len(Columns)+1)
	assert.Contains(t, []string{"true", "false"}, records[1][len(Columns)])
}

func TestCSVWriterCancelled(t *testing.T) {
	table := buildTable(t, dataprocessing.DefaultOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := NewCSVWriter(nil).Write(ctx, &buf, table)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordBlanksNaN(t *testing.T) {
	nan := dataprocessing.ParsePrice("")
	rec := Record(domain.NormalizedTick{
		Date:          45931.75,
		Price:         nan,
		RelativePrice: nan,
		DaySD:         nan,
		DayMean:       nan,
		TimeOfDay:     domain.NewClock(18, 0),
		WeekDay:       "Wednesday",
	}, false)

	assert.Equal(t, "45931.75", rec[0])
	assert.Equal(t, "", rec[1])
	assert.Equal(t, "", rec[5])
	assert.Equal(t, "", rec[6])
	assert.Equal(t, "", rec[7])
}

func TestStreamWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.csv")
	sw, err := CreateStreamWriter(path, []string{"a", "b"})
	require.NoError(t, err)
	require.NoError(t, sw.WriteRecord([]string{"1", "2"}))
	require.NoError(t, sw.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", strings.TrimPrefix(string(data), string(utf8BOM)))
}

func TestWriteXLSX(t *testing.T) {
	table := buildTable(t, dataprocessing.DefaultOptions())
	path := filepath.Join(t.TempDir(), "ZN.xlsx")
	require.NoError(t, WriteXLSX(context.Background(), path, table))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, table.Len()+1)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "2025-10-01", rows[1][2])
	assert.Equal(t, "Wednesday", rows[1][4])
}
