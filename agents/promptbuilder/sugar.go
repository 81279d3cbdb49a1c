/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

// Must panics if err is non-nil and otherwise returns p. Judge templates are
// package-level variables, so a malformed one fails at init.
func Must(p *Prompt, err error) *Prompt {
	if err != nil {
		panic(err)
	}
	return p
}

// MustNewPrompt is Must(NewPrompt(template)).
func MustNewPrompt(template stringLiteral) *Prompt {
	return Must(NewPrompt(template))
}

// MustParse is Must(Parse(template)), for templates assembled at runtime
// from trusted parts.
func MustParse(template string) *Prompt {
	return Must(Parse(template))
}
