package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand is a helper function to execute cobra command and capture output
func executeCommand(root *cobra.Command, args ...string) (stdout string, stderr string, err error) {
	stdoutBuf := new(bytes.Buffer)
	stderrBuf := new(bytes.Buffer)
	root.SetOut(stdoutBuf)
	root.SetErr(stderrBuf)
	root.SetArgs(args)

	err = root.Execute()

	return stdoutBuf.String(), stderrBuf.String(), err
}

// TestRootCmdHelp tests the basic --help flag output structure
func TestRootCmdHelp(t *testing.T) {
	cmd := newRootCmd()
	stdout, stderr, err := executeCommand(cmd, "--help")

	require.NoError(t, err, "Executing --help should not produce an error")
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "datescan -f <path>[,<path>...]")

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		assert.Contains(t, stdout, "--"+f.Name, "Help output should contain flag --%s", f.Name)
		if f.Shorthand != "" {
			assert.Contains(t, stdout, "-"+f.Shorthand+",", "Help output should contain shorthand -%s", f.Shorthand)
		}
	})
}

// TestRootCmdVersion tests the --version flag output format
func TestRootCmdVersion(t *testing.T) {
	originalVersion, originalCommit, originalDate := version, commit, date
	version, commit, date = "test-1.2.3", "testcommit123", "2024-01-01T10:00:00Z"
	defer func() {
		version, commit, date = originalVersion, originalCommit, originalDate
	}()

	stdout, stderr, err := executeCommand(newRootCmd(), "--version")
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Equal(t, fmt.Sprintf("datescan version %s (commit: %s, built: %s)\n", version, commit, date), stdout)
}

// TestRootCmdFlagParsingErrors tests flag and argument errors handled by Cobra
func TestRootCmdFlagParsingErrors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing required file", []string{}, `required flag(s) "file" not set`},
		{"unknown flag", []string{"-f", ".", "--bogus"}, "unknown flag: --bogus"},
		{"positional argument", []string{"-f", ".", "extra"}, `unknown command "extra"`},
		{"bad int", []string{"-f", ".", "--concurrency", "many"}, `invalid argument "many"`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, stderr, err := executeCommand(newRootCmd(), tc.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.Contains(t, stderr, "Error:")
		})
	}
}

func TestRootCmdRun(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("Signed June 15, 1215"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("Landed July 20, 1969"), 0644))

	t.Run("report to stdout", func(t *testing.T) {
		stdout, _, err := executeCommand(newRootCmd(), "-f", root, "-o", "-", "--format", "json", "--concurrency", "2")
		require.NoError(t, err)

		var out struct {
			Summary struct {
				FileCount int `json:"fileCount"`
			} `json:"summary"`
			Oldest struct {
				Path  string   `json:"path"`
				Dates []string `json:"dates"`
			} `json:"oldest"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))
		assert.Equal(t, 2, out.Summary.FileCount)
		assert.Equal(t, filepath.Join(root, "a.txt"), out.Oldest.Path)
		assert.Equal(t, []string{"1215-06-15"}, out.Oldest.Dates)
	})

	t.Run("report to file", func(t *testing.T) {
		outFile := filepath.Join(t.TempDir(), "dates.txt")
		stdout, _, err := executeCommand(newRootCmd(), "--file", root, "--output", outFile, "--no-progress")
		require.NoError(t, err)
		assert.Empty(t, stdout)

		content, err := os.ReadFile(outFile)
		require.NoError(t, err)
		assert.Contains(t, string(content), "Newest file:\n   "+filepath.Join(root, "b.txt"))
	})

	t.Run("config validation error", func(t *testing.T) {
		_, _, err := executeCommand(newRootCmd(), "-f", root, "--format", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outputFormat")
	})
}
