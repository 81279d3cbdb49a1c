/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package promptbuilder renders judge prompts from fixed templates with named
placeholders.

Templates use `{{name}}` placeholders. A template is parsed once, usually into a
package-level variable, and every render produces a fresh string:

	var greeting = promptbuilder.MustNewPrompt(`Question: {{prompt}}
Answer: {{response_a}}`)

	text, err := greeting.Render(map[string]string{
		"prompt":     "Che lavoro faceva il richiedente?",
		"response_a": "Cuoco",
	})

# Binding

Prompts are immutable. BindText and BindStringLiteral return a new Prompt with
one placeholder bound, and Build fails while any placeholder is still unbound.
Render binds every placeholder from a field map in one step; keys that the
template does not use are ignored, so the same field map can be shared between
templates.

Bound values are inserted verbatim. Field text is trusted plain text: nothing
is escaped, and placeholders appearing inside a bound value are not expanded
again because substitution is a single pass over the parsed template.

# Identifiers

Placeholder names must start with a letter and contain only letters, digits and
underscores. Whitespace inside the braces is ignored, so `{{ prompt }}` and
`{{prompt}}` are the same placeholder. Any other `{{...}}` sequence is a parse
error.
*/
package promptbuilder
