/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

// Tracer creates traces and records them when they complete.
type Tracer[T any] interface {
	// NewTrace creates a trace for subject.
	NewTrace(ctx context.Context, subject string) *Trace[T]
	// RecordTrace records a completed trace.
	RecordTrace(trace *Trace[T])
}

type tracerKey[T any] struct{}

// WithTracer returns a context carrying tracer for results of type T.
func WithTracer[T any](ctx context.Context, tracer Tracer[T]) context.Context {
	return context.WithValue(ctx, tracerKey[T]{}, tracer)
}

// TracerFromContext returns the tracer for T, or a debug-logging tracer.
func TracerFromContext[T any](ctx context.Context) Tracer[T] {
	if tracer, ok := ctx.Value(tracerKey[T]{}).(Tracer[T]); ok {
		return tracer
	}
	return NewDefaultTracer[T](ctx)
}

// StartTrace starts a trace with the tracer from the context.
func StartTrace[T any](ctx context.Context, subject string) *Trace[T] {
	return TracerFromContext[T](ctx).NewTrace(ctx, subject)
}

// TraceCallback receives completed traces.
type TraceCallback[T any] func(*Trace[T])

type byCodeTracer[T any] struct {
	callbacks []TraceCallback[T]
}

// ByCode returns a tracer that hands each completed trace to callbacks.
func ByCode[T any](callbacks ...TraceCallback[T]) Tracer[T] {
	return &byCodeTracer[T]{callbacks: callbacks}
}

func (t *byCodeTracer[T]) NewTrace(ctx context.Context, subject string) *Trace[T] {
	return NewTrace[T](ctx, t, subject)
}

// RecordTrace runs the callbacks in parallel and waits for them.
func (t *byCodeTracer[T]) RecordTrace(trace *Trace[T]) {
	g := new(errgroup.Group)
	for _, callback := range t.callbacks {
		if callback != nil {
			g.Go(func() error {
				callback(trace)
				return nil
			})
		}
	}
	_ = g.Wait()
}

// NewDefaultTracer returns a tracer that logs completed traces at debug level.
func NewDefaultTracer[T any](ctx context.Context) Tracer[T] {
	logger := clog.FromContext(ctx)
	return ByCode[T](func(trace *Trace[T]) {
		logger.With(
			"trace_id", trace.ID,
			"duration_ms", trace.Duration().Milliseconds(),
			"calls", len(trace.Calls),
		).Debug("Trace completed", "trace", trace.String())
	})
}

// NewJSONL returns a tracer that writes each completed trace to w as one
// line of JSON. Writes are serialized; the first write error is kept and
// returned by Err.
func NewJSONL[T any](w io.Writer) *JSONLTracer[T] {
	return &JSONLTracer[T]{enc: json.NewEncoder(w)}
}

// JSONLTracer writes traces as JSON Lines.
type JSONLTracer[T any] struct {
	mu  sync.Mutex
	enc *json.Encoder
	n   int
	err error
}

var _ Tracer[string] = (*JSONLTracer[string])(nil)

func (t *JSONLTracer[T]) NewTrace(ctx context.Context, subject string) *Trace[T] {
	return NewTrace[T](ctx, t, subject)
}

func (t *JSONLTracer[T]) RecordTrace(trace *Trace[T]) {
	trace.state.mu.Lock()
	defer trace.state.mu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	if err := t.enc.Encode(trace); err != nil {
		t.err = err
		return
	}
	t.n++
}

// Count returns the number of traces written.
func (t *JSONLTracer[T]) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}

// Err returns the first write error.
func (t *JSONLTracer[T]) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
