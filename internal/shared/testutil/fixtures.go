package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bondpulse/pkg/contracts/domain"
)

// TwoSessionCSV is a small tick export covering the Wednesday 2025-10-01 and
// Thursday 2025-10-02 sessions, with one unparseable date.
const TwoSessionCSV = "Date,Lst Trd/Lst Prxx\n" +
	"2025-10-01 18:00:00,110-00\n" +
	"2025-10-01 19:00:00,110-16\n" +
	"2025-10-02 09:00:00,109-16\n" +
	"not a date,110-00\n" +
	"2025-10-02 18:00:00,111-00\n" +
	"2025-10-03 10:00:00,111-08\n"

// TwoSessionTicks returns the rows of TwoSessionCSV as raw ticks
func TwoSessionTicks() []domain.RawTick {
	lines := strings.Split(strings.TrimSpace(TwoSessionCSV), "\n")[1:]
	ticks := make([]domain.RawTick, 0, len(lines))
	for i, line := range lines {
		date, price, _ := strings.Cut(line, ",")
		ticks = append(ticks, domain.RawTick{Row: i + 2, Date: date, Price: price})
	}
	return ticks
}

// WriteTickFile writes content to dir/name and returns the path
func WriteTickFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write tick file %s: %v", path, err)
	}
	return path
}

// TickDir creates a temporary data directory holding one CSV per symbol
func TickDir(t *testing.T, symbols ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, s := range symbols {
		WriteTickFile(t, dir, s+".csv", TwoSessionCSV)
	}
	return dir
}
