// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/barline/internal/ctxlog"
	"github.com/spf13/afero"
)

const (
	goGetterForceSeparator = "::"
	goGetterSchemeMarker   = "://"
	goGetterPathSeparator  = "//"
	goGetterRefSeparator   = "?"
	minimumGetterParts     = 3 // Minimum parts in a go-getter URL: scheme, host, and path
	remoteDir              = "remote"
	remoteDigestLen        = 16
)

// ErrGetConfigFile is returned when a remote configuration cannot be fetched.
var ErrGetConfigFile = errors.New("failed to get config file")

// Fetch returns a local path for src. Existing local files are returned as they
// are. Anything else that looks like a go-getter source (`git::`, `https://`,
// `s3::` and so on) is downloaded into the user cache directory, and the path of
// the downloaded file is returned. Relative paths inside the configuration then
// resolve against the downloaded tree.
func Fetch(ctx context.Context, src string) (string, error) {
	if src == "" {
		return "", ErrGetConfigFile
	}

	if ok, _ := afero.Exists(FsFactory(), src); ok {
		return src, nil
	}

	if !isRemote(src) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, src)
	}

	cache, err := CacheDir()
	if err != nil {
		return "", errors.Join(ErrGetConfigFile, err)
	}

	sum := sha256.Sum256([]byte(src))
	dst := filepath.Join(cache, appDir, remoteDir, hex.EncodeToString(sum[:])[:remoteDigestLen])

	// A previous fetch of the same source is replaced, not merged.
	if err := os.RemoveAll(dst); err != nil {
		return "", errors.Join(ErrGetConfigFile, err)
	}

	ctxlog.Info(ctx, "fetching remote configuration", "src", src, "dst", dst)

	return getFile(ctx, src, dst)
}

func isRemote(src string) bool {
	return strings.Contains(src, goGetterForceSeparator) || strings.Contains(src, goGetterSchemeMarker)
}

// getFile downloads the directory holding the file named by url into dst and
// returns the path of the file inside it.
func getFile(ctx context.Context, url, dst string) (string, error) {
	if url == "" {
		return "", ErrGetConfigFile
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Join(ErrGetConfigFile, err)
	}

	cli := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     url,
		Dst:     dst,
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	var fileName string
	// If it's not a local file URL, we need to download the directory and read the file from there
	// https://github.com/hashicorp/go-getter/issues/98
	if ok, err := getter.Detect(req, &getter.FileGetter{}); !ok || err != nil {
		if err != nil {
			return "", errors.Join(ErrGetConfigFile, err)
		}

		var newURL string

		newURL, fileName = splitFileNameFromGetterURL(url)
		if newURL == "" || fileName == "" {
			return "", fmt.Errorf("%w: invalid URL format: %s", ErrGetConfigFile, url)
		}

		req.Src = newURL
	}

	if fileName == "" {
		req.Src = filepath.Dir(url)
		fileName = filepath.Base(url)
	}

	res, err := cli.Get(ctx, req)
	if err != nil {
		return "", errors.Join(ErrGetConfigFile, err)
	}

	path := filepath.Join(res.Dst, fileName)
	if _, err := os.Stat(path); err != nil {
		return "", errors.Join(ErrGetConfigFile, err)
	}

	return path, nil
}

// splitFileNameFromGetterURL splits the URL into the directory and file name.
// It returns the new getter URL without the file name and the file name itself.
// It will append any ref query parameter to the new URL if it exists.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]

	if before, after, found := strings.Cut(last, goGetterRefSeparator); found {
		ref = after
		last = before
	}

	if filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := filepath.Base(last)
	parts[len(parts)-1] = filepath.Dir(last)

	if parts[len(parts)-1] == "." {
		parts = parts[:len(parts)-1]
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
