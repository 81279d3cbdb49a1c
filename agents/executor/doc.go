/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package executor defines the text generation capability the judge pipeline
// is written against, independent of any model provider.
//
// A Generator maps a rendered prompt to the raw model output. Provider
// specific implementations live in the claudeexecutor, googleexecutor and
// openaiexecutor subpackages; each handles transient provider errors with
// exponential backoff (see package retry) and records token usage through
// package metrics. Anything that satisfies the interface, including a
// GeneratorFunc in tests, can drive a judge.
//
//	gen, err := googleexecutor.NewVertex(ctx, projectID, region,
//	    googleexecutor.WithModel("gemini-2.5-flash"))
//	if err != nil {
//	    return err
//	}
//	out, err := executor.WithTimeout(gen, 2*time.Minute).Generate(ctx, prompt)
//
// Embedder is the optional companion capability used to cluster rationales.
package executor
