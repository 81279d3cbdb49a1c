/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package schema derives JSON Schemas from Go types so exported documents
// can be validated by downstream viewers.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Generator wraps jsonschema.Reflector with project defaults.
type Generator struct {
	reflector jsonschema.Reflector
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*jsonschema.Reflector)

// Strict rejects properties the Go type does not declare.
func Strict() GeneratorOption {
	return func(r *jsonschema.Reflector) {
		r.AllowAdditionalProperties = false
	}
}

// NewGenerator constructs a generator with inlined definitions and
// required-ness taken from jsonschema tags.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		reflector: jsonschema.Reflector{
			RequiredFromJSONSchemaTags: true,
			ExpandedStruct:             true,
			AllowAdditionalProperties:  true,
			DoNotReference:             true,
		},
	}
	for _, opt := range opts {
		opt(&g.reflector)
	}
	return g
}

// Reflect returns the JSON schema for the provided value.
func (g *Generator) Reflect(v any) *jsonschema.Schema {
	return g.reflector.Reflect(v)
}

// MarshalIndent reflects v and renders the schema as indented JSON with
// the given title.
func (g *Generator) MarshalIndent(v any, title string) ([]byte, error) {
	s := g.Reflect(v)
	s.Title = title
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling schema %q: %w", title, err)
	}
	return b, nil
}
