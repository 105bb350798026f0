package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with a config rooted in a temp dir.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	body := fmt.Sprintf(`{
		"files": {"main": %q, "test": %q},
		"store": {"dir": %q},
		"log": {"level": "error", "outputs": ["stderr"]}
	}`, filepath.Join(dir, "main.bin"), filepath.Join(dir, "test.bin"), filepath.Join(dir, "store"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--config", cfgPath))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRegistrationsCommand(t *testing.T) {
	out, err := runCLI(t, "registrations", "--user")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7, out) // header plus six user types
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[1], "sample.Person")
	assert.Contains(t, lines[6], "*timestamppb.Timestamp")
}

func TestRunThenDump(t *testing.T) {
	out, err := runCLI(t, "run")
	require.NoError(t, err)
	assert.Equal(t, 7, strings.Count(out, " match\n"), out)

	out, err = runCLI(t, "dump", cfg.Files.Test)
	require.NoError(t, err)
	assert.Equal(t, 9, strings.Count(out, "\n"), out)
}

func TestRunWithMetrics(t *testing.T) {
	t.Cleanup(func() { runMetrics = false })
	out, err := runCLI(t, "run", "--metrics")
	require.NoError(t, err)

	assert.Equal(t, 7, strings.Count(out, " match\n"), out)
	assert.Contains(t, out, "objcodec_objects_written_total")
	assert.Contains(t, out, "objcodec_objects_read_total")
	assert.NotContains(t, out, "objcodec_failures_total", "no scenario fails")
}
