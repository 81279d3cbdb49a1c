/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package result extracts structured verdicts from free-form judge model output.

Judge prompts ask the model to finish its answer with an XML-like block:

	```xml
	<result>
	  <explanation>A and GTA have the same meaning.</explanation>
	  <verdict>Correct</verdict>
	</result>
	```

Models rarely return only that block. They prepend step-by-step analysis,
wrap the block in markdown fences, indent it, or break field text over several
lines. Parse locates every `<result>` block by tag search, regardless of the
surrounding text, and returns the first block carrying both a non-empty
`<explanation>` and a non-empty `<verdict>`. Tag names match case-insensitively
and tolerate whitespace inside the angle brackets.

# Absence

A missing block, a missing field, or an empty field is reported through a
sentinel error (ErrNoResultBlock, ErrMissingExplanation, ErrMissingVerdict).
The parser never panics; callers decide whether to retry or fall back.

	r, err := result.Parse(output)
	if err != nil {
		// retry or substitute a sentinel verdict
	}
	for _, label := range r.Labels() {
		// "Correct, Wrong" yields "Correct" and "Wrong"
	}

Valid and HasVerdict are the lighter checks used by validation loops, and
Format renders a synthesized block that parses the same way as model output.
*/
package result
