// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/barline/internal/ctxlog"
	"github.com/matt-FFFFFF/barline/internal/item"
	"github.com/spf13/afero"
)

const (
	// EnvVar names the environment variable that points at a configuration file.
	EnvVar = "BARLINE_CONFIG"

	appDir       = "barline"
	baseName     = "config"
	xdgConfigEnv = "XDG_CONFIG_HOME"
)

var (
	// ErrNotFound is returned when no configuration file can be located.
	ErrNotFound = errors.New("configuration file not found")
	// ErrRead is returned when a configuration file exists but cannot be read.
	ErrRead = errors.New("failed to read configuration file")
	// ErrNotAFile is returned when the configuration path names a directory.
	ErrNotAFile = errors.New("configuration path is not a file")
)

// Config is a loaded and validated configuration.
type Config struct {
	File    string      // Absolute path of the configuration file.
	Dir     string      // Directory holding File. Commands run with this as their working directory.
	Items   []item.Spec // Runnable items in display order.
	Skipped []string    // Names in the order list that have no section.
}

// Load reads, decodes and validates the configuration file at path.
func Load(ctx context.Context, path string) (*Config, error) {
	fs := FsFactory()

	info, err := fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return nil, errors.Join(ErrRead, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotAFile, path)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}

	doc, err := Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}

	items, skipped, err := Build(ctx, doc, filepath.Dir(abs))
	if err != nil {
		return nil, err
	}

	ctxlog.Debug(ctx, "configuration loaded", "file", abs, "items", len(items), "skipped", len(skipped))

	return &Config{
		File:    abs,
		Dir:     filepath.Dir(abs),
		Items:   items,
		Skipped: skipped,
	}, nil
}

// Locate returns the path of the configuration file to load. An explicit
// location, which may be a remote go-getter source, wins. Otherwise the first
// existing file among Candidates is used.
func Locate(ctx context.Context, explicit string) (string, error) {
	if explicit != "" {
		return Fetch(ctx, explicit)
	}

	fs := FsFactory()
	candidates := Candidates()

	for _, c := range candidates {
		if ok, _ := afero.Exists(fs, c); ok {
			ctxlog.Debug(ctx, "configuration file discovered", "file", c)
			return c, nil
		}
	}

	return "", fmt.Errorf("%w: looked for %s", ErrNotFound, strings.Join(candidates, ", "))
}

// Candidates lists the default configuration locations in search order:
// $XDG_CONFIG_HOME/barline/config.* then ~/.config/barline/config.*.
func Candidates() []string {
	var dirs []string

	if xdg := os.Getenv(xdgConfigEnv); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, appDir))
	}

	if home, err := HomeDir(); err == nil && home != "" {
		d := filepath.Join(home, ".config", appDir)
		if len(dirs) == 0 || dirs[0] != d {
			dirs = append(dirs, d)
		}
	}

	out := make([]string, 0, len(dirs)*len(Extensions))

	for _, d := range dirs {
		for _, ext := range Extensions {
			out = append(out, filepath.Join(d, baseName+ext))
		}
	}

	return out
}
