// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

const (
	// OrderKey is the top-level key listing item names in display order.
	OrderKey = "order"

	extTOML = ".toml"
	extYAML = ".yaml"
	extYML  = ".yml"
	extHCL  = ".hcl"
)

// Extensions lists the supported configuration file extensions in discovery order.
var Extensions = []string{extTOML, extYAML, extYML, extHCL}

var (
	// ErrUnsupportedFormat is returned for a file extension no decoder handles.
	ErrUnsupportedFormat = errors.New("unsupported configuration format")
	// ErrParse is returned when a configuration file is not valid for its format.
	ErrParse = errors.New("failed to parse configuration")
	// ErrInvalidOrder is returned when the order list is missing or is not a list of names.
	ErrInvalidOrder = errors.New("`order` must be a list of item names")
)

// Document is a decoded configuration before validation: the declared order
// and the raw key/value section for every item name. Values holds the other
// top-level values, those that are not tables.
type Document struct {
	Order    []string
	Sections map[string]map[string]any
	Values   map[string]any
}

// Decode parses data according to the extension of filename. A file with no
// extension is read as TOML.
func Decode(filename string, data []byte) (*Document, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case extTOML, "":
		return decodeTOML(data)
	case extYAML, extYML:
		return decodeYAML(data)
	case extHCL:
		return decodeHCL(filename, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func decodeTOML(data []byte) (*Document, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrParse, err)
	}

	return newDocument(raw)
}

func decodeYAML(data []byte) (*Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrParse, err)
	}

	return newDocument(raw)
}

// newDocument splits a decoded top-level table into the order list and the
// item sections. Top-level values that are not tables are kept apart in Values.
func newDocument(raw map[string]any) (*Document, error) {
	order, err := toNames(raw[OrderKey])
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Order:    order,
		Sections: make(map[string]map[string]any, len(raw)),
		Values:   make(map[string]any),
	}

	for k, v := range raw {
		if k == OrderKey {
			continue
		}

		if section, ok := v.(map[string]any); ok {
			doc.Sections[k] = section
			continue
		}

		doc.Values[k] = v
	}

	return doc, nil
}

func toNames(v any) ([]string, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: `%s` is missing", ErrInvalidOrder, OrderKey)
	}

	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrInvalidOrder, v)
	}

	names := make([]string, len(list))

	for i, e := range list {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T", ErrInvalidOrder, i, e)
		}

		names[i] = s
	}

	return names, nil
}
