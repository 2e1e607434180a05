// Package validation checks tick files and output locations before any work
// starts, so that a bad path fails fast with a clear message.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"bondpulse/internal/config"
	"bondpulse/internal/infrastructure"
)

// Validation errors
var (
	ErrNotExist          = errors.New("path does not exist")
	ErrNotDirectory      = errors.New("not a directory")
	ErrIsDirectory       = errors.New("is a directory, not a file")
	ErrUnsupportedFile   = errors.New("unsupported tick file type")
	ErrTemporaryWorkbook = errors.New("temporary workbook file")
	ErrEmptyFile         = errors.New("file is empty")
)

// ReadableExtensions lists the input formats the tick readers understand
var ReadableExtensions = []string{".csv", ".txt", ".xlsx", ".xlsm"}

// FileValidator validates tick inputs and export destinations
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	return &FileValidator{logger: infrastructure.WithComponent(logger, "file_validator")}
}

// ValidateDataDir checks that dir exists and is a directory. It does not
// require any tick file to be present.
func (v *FileValidator) ValidateDataDir(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		v.logger.Error("Data directory does not exist", slog.String("directory", dir))
		return fmt.Errorf("data directory %s: %w", dir, ErrNotExist)
	}
	if err != nil {
		return fmt.Errorf("failed to stat data directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Data path is not a directory", slog.String("path", dir))
		return fmt.Errorf("data directory %s: %w", dir, ErrNotDirectory)
	}

	count, err := v.CountTickFiles(dir)
	if err != nil {
		return err
	}
	if count == 0 {
		v.logger.Warn("No tick files found", slog.String("directory", dir))
	}
	return nil
}

// ValidateTickFile checks that path is a readable, non-empty tick file of a
// supported type
func (v *FileValidator) ValidateTickFile(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("tick file %s: %w", path, ErrNotExist)
	}
	if err != nil {
		return fmt.Errorf("failed to stat tick file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("tick file %s: %w", path, ErrIsDirectory)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(ReadableExtensions, ext) {
		return fmt.Errorf("tick file %s (%s): %w", path, ext, ErrUnsupportedFile)
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("tick file %s: %w", path, ErrTemporaryWorkbook)
	}
	if info.Size() == 0 {
		return fmt.Errorf("tick file %s: %w", path, ErrEmptyFile)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("tick file %s is not readable: %w", path, err)
	}
	f.Close()

	v.logger.Debug("Tick file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputPath ensures the parent directory of path exists and is writable
func (v *FileValidator) ValidateOutputPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)
	return nil
}

// CountTickFiles counts the files directly inside dir that ticker discovery
// would pick up
func (v *FileValidator) CountTickFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	count := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		if slices.Contains(config.TickFileExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			count++
		}
	}
	v.logger.Debug("Tick files counted",
		slog.String("directory", dir),
		slog.Int("count", count))
	return count, nil
}
