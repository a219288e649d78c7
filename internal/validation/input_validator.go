// Package validation checks input files and output directories before a
// pipeline run starts, so path problems surface as clear errors instead of
// mid-run failures.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// InputValidator validates files handed to the cleaning pipeline.
type InputValidator struct {
	logger *slog.Logger
}

// NewInputValidator creates a validator. A nil logger falls back to
// slog.Default.
func NewInputValidator(logger *slog.Logger) *InputValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &InputValidator{logger: logger}
}

// ValidateInputFile checks that path exists, is a regular readable file,
// is not empty, and carries a supported extension (.csv or .xlsx).
func (v *InputValidator) ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("input file does not exist",
			slog.String("file", path))
		return fmt.Errorf("input file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat input file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("input path is a directory",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() == 0 {
		v.logger.Error("input file is empty",
			slog.String("file", path))
		return fmt.Errorf("input file %s is empty", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".xlsx" {
		v.logger.Error("unsupported input format",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("unsupported input format %q (want .csv or .xlsx)", ext)
	}

	// Excel leaves ~$-prefixed lock files next to open workbooks.
	if ext == ".xlsx" && strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("file %s is a temporary Excel lock file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("input file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("input file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures the output directory exists, creating it
// if needed, and confirms it is writable.
func (v *InputValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write_test")
	file, err := os.Create(probe)
	if err != nil {
		v.logger.Error("output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(probe)

	v.logger.Debug("output directory validated",
		slog.String("directory", dir))
	return nil
}
