// Package testutils holds helpers shared by tests across packages.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteManifest writes content to a contract.yaml inside a fresh temp
// directory and returns the file's path. The file is cleaned up with the
// test.
func WriteManifest(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "contract.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
