package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

func writeTestZip(t *testing.T, dir, name string) string {
	t.Helper()

	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)
	w, err := zw.Create("hello.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644)) //nolint:gosec

	return path
}

// Expectation: run returns exit code 1 when no archives are given.
func Test_run_NoArguments_Failure(t *testing.T) {
	require.Equal(t, 1, run(nil))
}

// Expectation: run returns 0 for a valid archive.
func Test_run_Success(t *testing.T) {
	dir := t.TempDir()
	archive := writeTestZip(t, dir, "a.zip")

	require.Equal(t, 0, run([]string{archive, "--no-color"}))
}

// Expectation: run returns 1 when an archive path doesn't exist.
func Test_run_MissingArchive_Failure(t *testing.T) {
	dir := t.TempDir()

	require.Equal(t, 1, run([]string{filepath.Join(dir, "missing.zip")}))
}
