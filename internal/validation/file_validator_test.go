package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bondpulse/internal/shared/testutil"
)

func TestValidateTickFile(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr error
	}{
		{
			name: "valid csv",
			setup: func(t *testing.T) string {
				return testutil.WriteTickFile(t, t.TempDir(), "ZN.csv", testutil.TwoSessionCSV)
			},
		},
		{
			name: "missing file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "ZN.csv")
			},
			wantErr: ErrNotExist,
		},
		{
			name: "directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr: ErrIsDirectory,
		},
		{
			name: "unsupported extension",
			setup: func(t *testing.T) string {
				return testutil.WriteTickFile(t, t.TempDir(), "ZN.json", "{}")
			},
			wantErr: ErrUnsupportedFile,
		},
		{
			name: "temporary workbook",
			setup: func(t *testing.T) string {
				return testutil.WriteTickFile(t, t.TempDir(), "~$ZN.xlsx", "lock")
			},
			wantErr: ErrTemporaryWorkbook,
		},
		{
			name: "empty file",
			setup: func(t *testing.T) string {
				return testutil.WriteTickFile(t, t.TempDir(), "ZN.csv", "")
			},
			wantErr: ErrEmptyFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewFileValidator(nil)
			err := v.ValidateTickFile(tt.setup(t))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateDataDir(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)

	assert.NoError(t, v.ValidateDataDir(testutil.TickDir(t, "ZN")))

	empty := t.TempDir()
	assert.NoError(t, v.ValidateDataDir(empty))
	assert.True(t, handler.ContainsMessage("No tick files found"))

	assert.ErrorIs(t, v.ValidateDataDir(filepath.Join(empty, "missing")), ErrNotExist)

	file := testutil.WriteTickFile(t, empty, "ZN.csv", testutil.TwoSessionCSV)
	assert.ErrorIs(t, v.ValidateDataDir(file), ErrNotDirectory)
}

func TestCountTickFiles(t *testing.T) {
	dir := testutil.TickDir(t, "ZN", "ZB")
	testutil.WriteTickFile(t, dir, "notes.md", "x")
	testutil.WriteTickFile(t, dir, "~$UB.xlsx", "lock")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.csv"), 0o755))

	count, err := NewFileValidator(nil).CountTickFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestValidateOutputPath(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "deeper", "ZN.csv")

	require.NoError(t, NewFileValidator(nil).ValidateOutputPath(out))

	info, err := os.Stat(filepath.Dir(out))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(filepath.Dir(out))
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be removed")
}
