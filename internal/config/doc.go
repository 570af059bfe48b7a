// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config locates, fetches, and decodes barline configuration files
// and turns them into ordered item specifications.
//
// A configuration is a table keyed by item name plus an `order` list that
// declares which items are shown and in what order. TOML, YAML and HCL are
// supported, chosen by file extension.
package config
