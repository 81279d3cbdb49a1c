/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// RunContext identifies the run a trace or measurement belongs to.
type RunContext struct {
	RunID   string `json:"run_id,omitempty"`  // unique per process invocation
	Backend string `json:"backend,omitempty"` // gemini, claude or openai
	Model   string `json:"model,omitempty"`
}

// EnrichAttributes appends the bounded run attributes to baseAttrs.
//
// RunID is left out: every run would create new time series. It stays on
// traces and logs.
func (r RunContext) EnrichAttributes(baseAttrs []attribute.KeyValue) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, len(baseAttrs), len(baseAttrs)+1)
	copy(attrs, baseAttrs)
	if r.Backend != "" {
		attrs = append(attrs, attribute.String("backend", r.Backend))
	}
	return attrs
}

type contextKey string

const runContextKey contextKey = "run_context"

// WithRunContext adds run metadata to ctx.
func WithRunContext(ctx context.Context, rc RunContext) context.Context {
	return context.WithValue(ctx, runContextKey, rc)
}

// GetRunContext returns the run metadata on ctx, or the zero value.
func GetRunContext(ctx context.Context) RunContext {
	if rc, ok := ctx.Value(runContextKey).(RunContext); ok {
		return rc
	}
	return RunContext{}
}
