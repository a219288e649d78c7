package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator() *InputValidator {
	return NewInputValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateInputFile(t *testing.T) {
	v := newValidator()

	t.Run("valid csv", func(t *testing.T) {
		path := writeTemp(t, "data.csv", "id,name\n1,a\n")
		assert.NoError(t, v.ValidateInputFile(path))
	})

	t.Run("missing file", func(t *testing.T) {
		err := v.ValidateInputFile(filepath.Join(t.TempDir(), "absent.csv"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("directory", func(t *testing.T) {
		err := v.ValidateInputFile(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "directory")
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeTemp(t, "empty.csv", "")
		err := v.ValidateInputFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeTemp(t, "data.parquet", "not really")
		err := v.ValidateInputFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported input format")
	})

	t.Run("excel lock file", func(t *testing.T) {
		path := writeTemp(t, "~$report.xlsx", "lock")
		err := v.ValidateInputFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lock file")
	})
}

func TestValidateOutputDirectory(t *testing.T) {
	v := newValidator()

	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out", "nested")
		require.NoError(t, v.ValidateOutputDirectory(dir))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("existing directory", func(t *testing.T) {
		assert.NoError(t, v.ValidateOutputDirectory(t.TempDir()))
	})

	t.Run("removes write probe", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, v.ValidateOutputDirectory(dir))

		_, err := os.Stat(filepath.Join(dir, ".write_test"))
		assert.True(t, os.IsNotExist(err))
	})
}
