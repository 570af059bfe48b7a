// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
)

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// HomeDir returns the user's home directory.
var HomeDir = homedir.Dir

// CacheDir returns the directory remote configurations are fetched into.
var CacheDir = os.UserCacheDir
