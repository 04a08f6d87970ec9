package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/stop/internal/config"
)

// execute runs the root command with args and returns the config it resolved.
func execute(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	var got *config.Config
	cmd := newRootCmd("test", func(_ context.Context, cfg *config.Config) error {
		got = cfg
		return nil
	})
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return got, err
}

// isolate keeps config lookup away from the developer's own files.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestRootCmdDefaults(t *testing.T) {
	isolate(t)

	cfg, err := execute(t)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 30, cfg.Delay)
	assert.Equal(t, 30*time.Second, cfg.Interval())
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Server)
	assert.Equal(t, ":8000", cfg.Addr)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Equal(t, "squeue", cfg.Commands.Squeue)
}

func TestRootCmdFlags(t *testing.T) {
	isolate(t)

	cfg, err := execute(t,
		"--delay", "5",
		"--timeout", "3s",
		"--log-level", "debug",
		"--log-file", "-",
		"--server",
		"--addr", "127.0.0.1:9000",
		"--metrics-addr", ":9100",
	)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Delay)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "-", cfg.LogFile)
	assert.True(t, cfg.Server)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
}

func TestRootCmdEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("STOP_DELAY", "7")

	cfg, err := execute(t)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Delay)

	// Flags win over the environment.
	cfg, err = execute(t, "--delay", "9")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Delay)
}

func TestRootCmdConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`delay: 12
timeout: 4s
commands:
  squeue: /opt/slurm/bin/squeue
`), 0o644))

	cfg, err := execute(t, "--config", path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Delay)
	assert.Equal(t, 4*time.Second, cfg.Timeout)
	assert.Equal(t, "/opt/slurm/bin/squeue", cfg.Commands.Squeue)
	assert.Equal(t, "sinfo", cfg.Commands.Sinfo)
}

func TestRootCmdLocalConfigFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("delay: 15\n"), 0o644))

	cfg, err := execute(t)
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Delay)
}

func TestRootCmdErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "zero delay", args: []string{"--delay", "0"}},
		{name: "negative delay", args: []string{"--delay", "-1"}},
		{name: "non-numeric delay", args: []string{"--delay", "soon"}},
		{name: "zero timeout", args: []string{"--timeout", "0s"}},
		{name: "positional argument", args: []string{"extra"}},
		{name: "missing config file", args: []string{"--config", "does-not-exist.yaml"}},
		{name: "unknown flag", args: []string{"--verbose"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			cfg, err := execute(t, tt.args...)
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestRootCmdVersion(t *testing.T) {
	cmd := newRootCmd("1.2.3", func(context.Context, *config.Config) error { return nil })
	assert.Equal(t, "1.2.3", cmd.Version)
}
