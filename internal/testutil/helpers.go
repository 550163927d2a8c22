// Package testutil provides footprints, steps and file helpers shared by
// traccia tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteTempFile writes content to name inside a fresh temp directory and
// returns the full path.
func WriteTempFile(t testing.TB, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "failed to write temp file: %s", name)
	return path
}
