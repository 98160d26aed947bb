package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixedOutputPath_KeepsDirectoryAndExtension(t *testing.T) {
	require.Equal(t,
		filepath.Join("reports", "Covid Dashboard_fixed.twbx"),
		FixedOutputPath(filepath.Join("reports", "Covid Dashboard.twbx")),
	)
}

func TestFixedOutputPath_BareFileName(t *testing.T) {
	require.Equal(t, "wb_fixed.twbx", FixedOutputPath("wb.twbx"))
}

func TestScratchDirName_DropsDirectoryAndExtension(t *testing.T) {
	require.Equal(t, "Covid Dashboard_temp", ScratchDirName(filepath.Join("reports", "Covid Dashboard.twbx")))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.False(t, FileExists(path))

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.True(t, FileExists(path))
}

func TestGetFileSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	size, err := GetFileSize(path)
	require.NoError(t, err)
	require.Equal(t, int64(5), size)

	_, err = GetFileSize(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
