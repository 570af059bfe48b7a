// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/barline/internal/ctxlog"
	"github.com/matt-FFFFFF/barline/internal/item"
	"github.com/matt-FFFFFF/barline/internal/shell"
)

const (
	keyPath   = "path"
	keyStatic = "static"
	keyReload = "reload"
	keyShell  = "shell"
)

var (
	// ErrBuild wraps every error found while turning a document into item specifications.
	ErrBuild = errors.New("invalid configuration")
	// ErrMissingPath is returned when an item has no `path`.
	ErrMissingPath = errors.New("no `path` found")
	// ErrDeprecatedPath is returned when `path` is written as an array.
	ErrDeprecatedPath = errors.New("invalid `path`: arrays are deprecated, use a string instead")
	// ErrInvalidPath is returned when `path` is not a string.
	ErrInvalidPath = errors.New("invalid `path`")
	// ErrInvalidStatic is returned when `static` is not a boolean.
	ErrInvalidStatic = errors.New("invalid `static`: must be true or false")
	// ErrInvalidReload is returned when `reload` is not a number of seconds.
	ErrInvalidReload = errors.New("invalid `reload`: must be a number of seconds")
	// ErrAmbiguousPolicy is returned when an item sets both `static = true` and `reload`.
	ErrAmbiguousPolicy = errors.New("`static` and `reload` cannot be used together")
	// ErrInvalidShell is returned when `shell` is not a string or cannot be resolved.
	ErrInvalidShell = errors.New("invalid `shell`")
	// ErrInvalidSection is returned when an item name refers to a value that is not a table.
	ErrInvalidSection = errors.New("invalid item section: must be a table")
	// ErrDuplicateItem is returned when a name appears more than once in the order list.
	ErrDuplicateItem = errors.New("item listed more than once in `order`")
)

// Build validates doc and returns the item specifications in display order.
// Names in the order list without a section are skipped with a warning and
// returned in skipped; they take no position. Relative shell paths resolve
// against dir. All problems found are reported together.
func Build(ctx context.Context, doc *Document, dir string) (specs []item.Spec, skipped []string, err error) {
	seen := make(map[string]struct{}, len(doc.Order))

	for _, name := range doc.Order {
		if _, dup := seen[name]; dup {
			err = multierror.Append(err, fmt.Errorf("item %q: %w", name, ErrDuplicateItem))
			continue
		}

		seen[name] = struct{}{}

		section, ok := doc.Sections[name]
		if v, isValue := doc.Values[name]; !ok && isValue {
			err = multierror.Append(err, fmt.Errorf("item %q: %w: got %T", name, ErrInvalidSection, v))
			continue
		}

		if !ok {
			ctxlog.Warn(ctx, "no configuration found for item, skipping", "item", name)

			skipped = append(skipped, name)

			continue
		}

		spec, specErr := buildSpec(ctx, name, len(specs), section, dir)
		if specErr != nil {
			err = multierror.Append(err, specErr)
			continue
		}

		specs = append(specs, spec)
	}

	for _, name := range unlisted(doc) {
		ctxlog.Info(ctx, "item is not listed in order and will not be shown", "item", name)
	}

	if err != nil {
		return nil, skipped, errors.Join(ErrBuild, err)
	}

	return specs, skipped, nil
}

// buildSpec validates a single item section. Every field error is collected so
// a user can fix a section in one pass.
func buildSpec(ctx context.Context, name string, position int, section map[string]any, dir string) (item.Spec, error) {
	var result error

	fail := func(e error) {
		result = multierror.Append(result, fmt.Errorf("item %q: %w", name, e))
	}

	spec := item.Spec{
		Name:     name,
		Position: position,
		Policy:   item.StreamingPolicy(),
	}

	switch v := section[keyPath].(type) {
	case nil:
		fail(ErrMissingPath)
	case string:
		spec.Command = v
	case []any:
		fail(ErrDeprecatedPath)
	default:
		fail(fmt.Errorf("%w: got %T", ErrInvalidPath, v))
	}

	isStatic := false

	switch v := section[keyStatic].(type) {
	case nil:
	case bool:
		isStatic = v
	default:
		fail(fmt.Errorf("%w: got %T", ErrInvalidStatic, v))
	}

	if raw, ok := section[keyReload]; ok {
		seconds, numErr := toSeconds(raw)

		switch {
		case numErr != nil:
			fail(numErr)
		case isStatic:
			fail(ErrAmbiguousPolicy)
		default:
			p, pErr := item.PeriodicSeconds(seconds)
			if pErr != nil {
				fail(errors.Join(ErrInvalidReload, pErr))
			} else {
				spec.Policy = p
			}
		}
	}

	if isStatic {
		spec.Policy = item.StaticPolicy()
	}

	override := ""

	switch v := section[keyShell].(type) {
	case nil:
	case string:
		override = v
	default:
		fail(fmt.Errorf("%w: got %T", ErrInvalidShell, v))
	}

	sh, shErr := shell.ResolveIn(ctx, dir, override)
	if shErr != nil {
		fail(errors.Join(ErrInvalidShell, shErr))
	}

	spec.Shell = sh

	for key := range section {
		switch key {
		case keyPath, keyStatic, keyReload, keyShell:
		default:
			ctxlog.Warn(ctx, "unknown configuration key ignored", "item", name, "key", key)
		}
	}

	if result != nil {
		return item.Spec{}, result
	}

	ctxlog.Debug(ctx, "item configured", "item", name, "position", position, "policy", spec.Policy.String(), "shell", sh)

	return spec, nil
}

func toSeconds(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("%w: got %T", ErrInvalidReload, v)
	}
}

// unlisted returns the section names that the order list does not mention, sorted.
func unlisted(doc *Document) []string {
	listed := make(map[string]struct{}, len(doc.Order))
	for _, n := range doc.Order {
		listed[n] = struct{}{}
	}

	var out []string

	for n := range doc.Sections {
		if _, ok := listed[n]; !ok {
			out = append(out, n)
		}
	}

	sort.Strings(out)

	return out
}
