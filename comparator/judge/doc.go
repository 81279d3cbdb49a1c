/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package judge scores candidate answers against reference answers with an
// LLM judge.
//
// Every input is replicated into several samples. Each sample goes through a
// small state machine:
//
//   - candidates equal to the N/A or skipped sentinel get a fixed verdict
//     without calling the model;
//   - a coherence gate asks whether the candidate addresses the question at
//     all, and a non-coherent verdict is final;
//   - a detailed judge assigns one or more verdicts (Correct, Wrong,
//     Incomplete, Inference, Hallucination) against the reference.
//
// Both gates retry invalid model output a bounded number of times and then
// fall back to a synthesized verdict, so a misbehaving model never fails a
// run. Aggregate maps verdicts to scores and averages them per input.
//
// Typical usage:
//
//	runner, err := judge.NewRunner(gen, judge.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	results, err := runner.Run(ctx, inputs)
package judge
