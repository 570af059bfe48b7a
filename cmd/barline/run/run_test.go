// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/matt-FFFFFF/barline/internal/config"
	"github.com/matt-FFFFFF/barline/internal/line"
	"github.com/matt-FFFFFF/barline/internal/shell"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

// newTestCmd returns a root command with fresh flags. Exit codes are returned
// as errors instead of terminating the test binary.
func newTestCmd(out io.Writer, action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:           "barline",
		Flags:          Flags(),
		Before:         SetupLogging,
		Action:         action,
		Writer:         out,
		ErrWriter:      io.Discard,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func stubFs(t *testing.T, files map[string]string) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	stubs := gostub.Stub(&config.FsFactory, func() afero.Fs {
		return fs
	})
	stubs.Stub(&shell.LookPath, func(file string) (string, error) {
		return file, nil
	})
	t.Cleanup(stubs.Reset)
	t.Setenv("SHELL", "/bin/sh")
}

func TestNonNegative(t *testing.T) {
	require.NoError(t, nonNegative(0))
	require.NoError(t, nonNegative(time.Second))
	require.ErrorIs(t, nonNegative(-time.Millisecond), ErrNegativeDuration)
}

func TestFlags_Defaults(t *testing.T) {
	var settle, restart time.Duration

	cmd := newTestCmd(io.Discard, func(_ context.Context, cmd *cli.Command) error {
		settle = cmd.Duration(SettleFlag)
		restart = cmd.Duration(RestartDelayFlag)

		return nil
	})

	require.NoError(t, cmd.Run(context.Background(), []string{"barline"}))
	assert.Equal(t, line.DefaultSettleDelay, settle)
	assert.Equal(t, defaultRestartDelay, restart)
}

func TestFlags_NegativeDurationRejected(t *testing.T) {
	cmd := newTestCmd(io.Discard, func(context.Context, *cli.Command) error {
		t.Fatal("action must not run")
		return nil
	})

	err := cmd.Run(context.Background(), []string{"barline", "--settle", "-1s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrNegativeDuration.Error())
}

func TestSetupLogging_UnknownFormat(t *testing.T) {
	cmd := newTestCmd(io.Discard, func(context.Context, *cli.Command) error {
		t.Fatal("action must not run")
		return nil
	})

	err := cmd.Run(context.Background(), []string{"barline", "--log-format", "xml"})
	require.Error(t, err)

	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
}

func TestLoadConfig(t *testing.T) {
	stubFs(t, map[string]string{
		"/cfg/config.toml": "order = [\"clock\"]\n[clock]\npath = \"date\"\nreload = 5\n",
	})

	var cfg *config.Config

	cmd := newTestCmd(io.Discard, func(ctx context.Context, cmd *cli.Command) error {
		var err error
		cfg, err = LoadConfig(ctx, cmd)

		return err
	})

	require.NoError(t, cmd.Run(context.Background(), []string{"barline", "-c", "/cfg/config.toml"}))
	require.NotNil(t, cfg)
	require.Len(t, cfg.Items, 1)
	assert.Equal(t, "clock", cfg.Items[0].Name)
	assert.Len(t, BarOptions(cmd, cfg), 3)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	stubFs(t, map[string]string{
		"/env/config.yaml": "order: [clock]\nclock:\n  path: date\n  static: true\n",
	})
	t.Setenv(config.EnvVar, "/env/config.yaml")

	var cfg *config.Config

	cmd := newTestCmd(io.Discard, func(ctx context.Context, cmd *cli.Command) error {
		var err error
		cfg, err = LoadConfig(ctx, cmd)

		return err
	})

	require.NoError(t, cmd.Run(context.Background(), []string{"barline"}))
	assert.Equal(t, "/env/config.yaml", filepath.ToSlash(cfg.File))
}

func TestLoadConfig_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		args    []string
		wantErr error
	}{
		{
			name:    "missing file",
			args:    []string{"barline", "-c", "/nope/config.toml"},
			wantErr: config.ErrNotFound,
		},
		{
			name:    "invalid item",
			files:   map[string]string{"/cfg/config.toml": "order = [\"clock\"]\n[clock]\nstatic = true\n"},
			args:    []string{"barline", "-c", "/cfg/config.toml"},
			wantErr: config.ErrMissingPath,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stubFs(t, tc.files)

			var loadErr error

			cmd := newTestCmd(io.Discard, func(ctx context.Context, cmd *cli.Command) error {
				_, loadErr = LoadConfig(ctx, cmd)
				return nil
			})

			require.NoError(t, cmd.Run(context.Background(), tc.args))
			require.ErrorIs(t, loadErr, ErrLoadConfig)
			require.ErrorIs(t, loadErr, tc.wantErr)
		})
	}
}

func TestAction_NoItems(t *testing.T) {
	stubFs(t, map[string]string{
		"/cfg/config.toml": "order = [\"ghost\"]\n",
	})

	out := new(bytes.Buffer)
	cmd := newTestCmd(out, Action)

	require.NoError(t, cmd.Run(context.Background(), []string{"barline", "-c", "/cfg/config.toml"}))
	assert.Empty(t, out.String())
}

func TestAction_PrintsStaticLine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	t.Setenv("SHELL", "/bin/sh")

	dir := t.TempDir()
	file := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(file, []byte("order = [\"greeting\"]\n[greeting]\npath = \"printf hello\"\nstatic = true\n"), 0o644))

	out := new(bytes.Buffer)
	cmd := newTestCmd(out, Action)

	require.NoError(t, cmd.Run(context.Background(), []string{"barline", "-c", file, "--settle", "1ms"}))
	assert.Equal(t, "hello\n", out.String())
}
