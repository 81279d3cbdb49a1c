/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// segment is either literal template text or a placeholder reference.
type segment struct {
	text string
	name string
}

func (s segment) isPlaceholder() bool {
	return s.name != ""
}

// parseTemplate splits a template into literal text and placeholder segments.
func parseTemplate(template string) ([]segment, error) {
	var segments []segment

	for len(template) > 0 {
		start := strings.Index(template, "{{")
		if start == -1 {
			segments = append(segments, segment{text: template})
			break
		}
		if start > 0 {
			segments = append(segments, segment{text: template[:start]})
		}

		end := strings.Index(template[start:], "}}")
		if end == -1 {
			return nil, errors.New("unclosed binding: missing '}}'")
		}
		end += start + 2

		name := strings.TrimSpace(template[start+2 : end-2])
		if !isValidIdentifier(name) {
			return nil, fmt.Errorf("invalid binding identifier %q", name)
		}
		segments = append(segments, segment{name: name})

		template = template[end:]
	}

	return segments, nil
}

// isValidIdentifier reports whether s may be used as a placeholder name.
// Valid identifiers start with a letter and contain only letters, digits, and underscores.
func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '_'):
		default:
			return false
		}
	}
	return true
}
