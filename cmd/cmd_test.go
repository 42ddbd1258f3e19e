package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/sesh/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sesh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRun(t *testing.T) {
	path := writeScript(t, "echo hello $1\n")

	out, err := execute(t, "run", path, "world")

	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)
}

func TestRun_quietExit(t *testing.T) {
	path := writeScript(t, "quiet-exit 3\necho unreachable\n")

	out, err := execute(t, "run", path)

	var exitErr *exitCodeError
	require.True(t, errors.As(err, &exitErr), "got %v", err)
	assert.Equal(t, 3, exitErr.code)
	assert.Empty(t, out)
}

func TestRun_record(t *testing.T) {
	t.Cleanup(func() {
		runFlags.record = ""
	})
	path := writeScript(t, "echo recorded\n")
	cast := filepath.Join(t.TempDir(), "out.cast")

	_, err := execute(t, "run", "--record", cast, path)
	require.NoError(t, err)

	out, err := execute(t, "logs", "show", cast)
	require.NoError(t, err)
	assert.Equal(t, "recorded\r\n", out)
}

func TestApplyRunFlags(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, runCmd.ParseFlags([]string{"-x", "--no-errexit", "--quiet"}))
	t.Cleanup(func() {
		runCmd.Flags().Set("echo-commands", "false")
		runCmd.Flags().Set("no-errexit", "false")
		runCmd.Flags().Set("quiet", "false")
	})

	applyRunFlags(runCmd, cfg)

	assert.True(t, cfg.EchoCommands)
	assert.False(t, cfg.FailOnNonzeroExit)
	assert.False(t, cfg.EchoStdout)
	assert.True(t, cfg.EscapeArgs, "unchanged flags keep the configured value")
}

func TestBuiltins(t *testing.T) {
	out, err := execute(t, "builtins")

	require.NoError(t, err)
	assert.Contains(t, out, "cd [DIR]\n")
	assert.Contains(t, out, "set [-e|+e]")
}
