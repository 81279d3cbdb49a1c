/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace records transcripts of LLM interactions.

# Overview

  - RunContext: run-level metadata (run ID, backend, model) carried on the
    context and used to enrich metrics
  - Trace[T]: one unit of work, such as a judged item, from start to result
  - Call: one generation call within a trace, with its prompt and output
  - Tracer[T]: creates traces and records them once they complete

Tracers are stored on the context per result type, so a process can record
traces of several result types at once.

# Usage

	f, _ := os.Create("transcripts.jsonl")
	ctx = agenttrace.WithTracer[judge.Output](ctx, agenttrace.NewJSONL[judge.Output](f))

	trace := agenttrace.StartTrace[judge.Output](ctx, "example 3 repeat 0")
	call := trace.StartCall("detailed", prompt)
	call.Complete(text, true, nil)
	trace.Complete(out, nil)

Without a tracer on the context, StartTrace uses a tracer that logs each
completed trace at debug level.
*/
package agenttrace
