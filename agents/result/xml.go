/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNoResultBlock is returned when the text has no <result> block.
	ErrNoResultBlock = errors.New("no <result> block found")
	// ErrMissingExplanation is returned when no block has a non-empty <explanation>.
	ErrMissingExplanation = errors.New("<result> block has no explanation")
	// ErrMissingVerdict is returned when no block has a non-empty <verdict>.
	ErrMissingVerdict = errors.New("<result> block has no verdict")
)

var (
	resultTag      = tagPattern("result")
	explanationTag = tagPattern("explanation")
	verdictTag     = tagPattern("verdict")
)

// tagPattern matches <name>...</name>, case-insensitive, across newlines.
func tagPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)<\s*` + name + `\s*>(.*?)<\s*/\s*` + name + `\s*>`)
}

// Result is the parsed content of a <result> block.
type Result struct {
	Explanation string `json:"explanation"`
	Verdict     string `json:"verdict"`
}

// Labels splits a comma-separated verdict into its trimmed, non-empty labels.
func (r *Result) Labels() []string {
	parts := strings.Split(r.Verdict, ",")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if l := cleanVerdict(p); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

// Parse extracts the first complete <result> block from text.
func Parse(text string) (*Result, error) {
	blocks := resultTag.FindAllStringSubmatch(text, -1)
	if len(blocks) == 0 {
		return nil, ErrNoResultBlock
	}

	// Report the failure of the first block if none is complete.
	var firstErr error
	for _, block := range blocks {
		r, err := parseBlock(block[1])
		if err == nil {
			return r, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

func parseBlock(body string) (*Result, error) {
	explanation, ok := ExtractTag(body, explanationTag)
	if !ok {
		return nil, ErrMissingExplanation
	}
	verdict, ok := ExtractTag(body, verdictTag)
	if !ok {
		return nil, ErrMissingVerdict
	}
	verdict = cleanVerdict(verdict)
	if verdict == "" {
		return nil, ErrMissingVerdict
	}
	return &Result{
		Explanation: explanation,
		Verdict:     verdict,
	}, nil
}

// ExtractTag returns the trimmed body of the first match of tag in text.
// It reports false when the tag is absent or its body is blank.
func ExtractTag(text string, tag *regexp.Regexp) (string, bool) {
	m := tag.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	body := strings.TrimSpace(m[1])
	return body, body != ""
}

// Valid reports whether text contains a complete <result> block.
func Valid(text string) bool {
	_, err := Parse(text)
	return err == nil
}

// HasVerdict reports whether text parses and its verdict equals label.
func HasVerdict(text, label string) bool {
	r, err := Parse(text)
	if err != nil {
		return false
	}
	return strings.EqualFold(r.Verdict, label)
}

// Format renders a fenced <result> block holding explanation and verdict.
func Format(explanation, verdict string) string {
	return fmt.Sprintf("```xml\n<result>\n  <explanation>%s</explanation>\n  <verdict>%s</verdict>\n</result>\n```", explanation, verdict)
}

// cleanVerdict trims whitespace and markdown emphasis models put around labels.
func cleanVerdict(s string) string {
	return strings.Trim(s, " \t\r\n`*\"'")
}
