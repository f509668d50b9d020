package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smiths = `
people:
  - handle: I1
    primary_name: {first: John, surname: Smith}
  - handle: I2
    primary_name: {first: Johnny, surname: Smith}
`

func run(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())

	return out.String()
}

func TestCommands_MergeAndResolve(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("TREE", "smiths")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_LEVEL", "error")

	file := filepath.Join(dir, "smiths.yaml")
	require.NoError(t, os.WriteFile(file, []byte(smiths), 0o644))

	run(t, "load", "-f", file)
	run(t, "merge", "person", "I1", "I2")
	assert.Equal(t, "I1", strings.TrimSpace(run(t, "resolve", "person", "I2")))

	exported := run(t, "export")
	assert.Contains(t, exported, "Johnny")
	assert.NotContains(t, exported, "handle: I2")

	run(t, "undo")
	assert.Equal(t, "I2", strings.TrimSpace(run(t, "resolve", "person", "I2")))
	assert.FileExists(t, filepath.Join(dir, "smiths.db"))
}
