// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

const (
	itemBlockType = "item"
	envVariable   = "env"
)

// ErrUnsupportedValue is returned when an HCL expression evaluates to a type
// that has no meaning in an item section, such as an object.
var ErrUnsupportedValue = errors.New("unsupported HCL value")

var hclSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: OrderKey, Required: true},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: itemBlockType, LabelNames: []string{"name"}},
	},
}

// decodeHCL reads the HCL form:
//
//	order = ["clock"]
//
//	item "clock" {
//	  path   = "date +%H:%M"
//	  reload = 1
//	  shell  = env.SHELL
//	}
func decodeHCL(filename string, data []byte) (*Document, error) {
	file, diags := hclsyntax.ParseConfig(data, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, errors.Join(ErrParse, diags)
	}

	content, diags := file.Body.Content(hclSchema)
	if diags.HasErrors() {
		return nil, errors.Join(ErrParse, diags)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			envVariable: environment(),
		},
	}

	orderVal, diags := content.Attributes[OrderKey].Expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, errors.Join(ErrParse, diags)
	}

	rawOrder, err := ctyToGo(orderVal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}

	order, err := toNames(rawOrder)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Order:    order,
		Sections: make(map[string]map[string]any, len(content.Blocks)),
	}

	for _, block := range content.Blocks {
		name := block.Labels[0]

		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, errors.Join(ErrParse, diags)
		}

		section := make(map[string]any, len(attrs))

		for key, attr := range attrs {
			v, diags := attr.Expr.Value(evalCtx)
			if diags.HasErrors() {
				return nil, errors.Join(ErrParse, diags)
			}

			gv, err := ctyToGo(v)
			if err != nil {
				return nil, fmt.Errorf("%w: item %q attribute %q: %w", ErrParse, name, key, err)
			}

			if gv != nil {
				section[key] = gv
			}
		}

		doc.Sections[name] = section
	}

	return doc, nil
}

// environment exposes the process environment as the `env` object.
func environment() cty.Value {
	vars := make(map[string]cty.Value)

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}

		vars[k] = cty.StringVal(v)
	}

	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}

	return cty.ObjectVal(vars)
}

// ctyToGo converts v to the same plain Go values the TOML and YAML decoders produce.
func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}

	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("%w: value is not known", ErrUnsupportedValue)
	}

	t := v.Type()

	switch {
	case t == cty.String:
		return v.AsString(), nil
	case t == cty.Bool:
		return v.True(), nil
	case t == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i, nil
		}

		f, _ := bf.Float64()

		return f, nil
	case t.IsListType() || t.IsTupleType() || t.IsSetType():
		out := make([]any, 0, v.LengthInt())

		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()

			gv, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}

			out = append(out, gv)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedValue, t.FriendlyName())
	}
}
