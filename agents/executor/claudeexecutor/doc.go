/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package claudeexecutor implements executor.Generator on Anthropic Claude,
// reached either directly with an API key or through Vertex AI.
//
// # Basic Usage
//
//	gen, err := claudeexecutor.NewVertex(ctx, projectID, "us-east5",
//	    claudeexecutor.WithModel("claude-sonnet-4@20250514"),
//	    claudeexecutor.WithTemperature(0),
//	)
//	if err != nil {
//	    return err
//	}
//	out, err := gen.Generate(ctx, prompt)
//
// A client built elsewhere (for example with option.WithAPIKey) can be passed
// to New instead.
//
// # Options
//
//   - WithModel: Override the default model (defaults to claude-sonnet-4@20250514)
//   - WithMaxTokens: Set maximum response tokens (defaults to 8192, max 32000)
//   - WithTemperature: Set response temperature (defaults to 0.1)
//   - WithSystemInstructions: Provide system-level instructions
//   - WithThinking: Enable extended thinking with a token budget
//   - WithRetryConfig: Tune backoff for 408, 429, 502-504 and 529 responses and network timeouts
//   - WithAttributeEnricher, WithResourceLabels: Add metric attributes
//
// When thinking is enabled, temperature is forced to 1.0 as required by the
// Claude API, and only the final text blocks are returned by Generate.
package claudeexecutor
