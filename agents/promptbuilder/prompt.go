/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"fmt"
	"maps"
	"strings"
)

// stringLiteral only accepts untyped string constants, so templates built with
// NewPrompt come from the developer.
type stringLiteral string

// Prompt is a parsed template with bindable placeholders.
type Prompt struct {
	segments []segment
	values   map[string]*string
}

// NewPrompt creates a new prompt from a template literal.
func NewPrompt(template stringLiteral) (*Prompt, error) {
	return Parse(string(template))
}

// Parse creates a new prompt from a template loaded at runtime, such as a
// template override read from disk.
func Parse(template string) (*Prompt, error) {
	segments, err := parseTemplate(template)
	if err != nil {
		return nil, err
	}

	values := make(map[string]*string)
	for _, s := range segments {
		if s.isPlaceholder() {
			values[s.name] = nil
		}
	}

	return &Prompt{
		segments: segments,
		values:   values,
	}, nil
}

// GetBindings returns the names of all placeholders found in the template.
func (p *Prompt) GetBindings() map[string]struct{} {
	names := make(map[string]struct{}, len(p.values))
	for name := range p.values {
		names[name] = struct{}{}
	}
	return names
}

// Has reports whether the template contains the named placeholder.
func (p *Prompt) Has(name string) bool {
	_, ok := p.values[name]
	return ok
}

// BindText binds a plain text value to a placeholder. The value is inserted
// verbatim. Returns a new Prompt with the binding applied.
func (p *Prompt) BindText(name, value string) (*Prompt, error) {
	bound, exists := p.values[name]
	if !exists {
		return nil, fmt.Errorf("binding %q not found in template", name)
	}
	if bound != nil {
		return nil, fmt.Errorf("binding %q already bound", name)
	}

	np := &Prompt{
		segments: p.segments,
		values:   maps.Clone(p.values),
	}
	np.values[name] = &value
	return np, nil
}

// BindStringLiteral binds a developer-provided literal to a placeholder.
func (p *Prompt) BindStringLiteral(name string, value stringLiteral) (*Prompt, error) {
	return p.BindText(name, string(value))
}

// Build renders the prompt, returning an error if any placeholder is unbound.
func (p *Prompt) Build() (string, error) {
	var sb strings.Builder
	for _, s := range p.segments {
		if !s.isPlaceholder() {
			sb.WriteString(s.text)
			continue
		}
		v := p.values[s.name]
		if v == nil {
			return "", fmt.Errorf("unbound placeholder: %s", s.name)
		}
		sb.WriteString(*v)
	}
	return sb.String(), nil
}

// Render binds every placeholder from fields and builds the prompt.
// Keys not used by the template are ignored; a placeholder without a key is an error.
func (p *Prompt) Render(fields map[string]string) (string, error) {
	bound := p
	for name, v := range p.values {
		if v != nil {
			continue
		}
		value, ok := fields[name]
		if !ok {
			continue
		}
		var err error
		if bound, err = bound.BindText(name, value); err != nil {
			return "", err
		}
	}
	return bound.Build()
}
