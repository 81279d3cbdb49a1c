/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package agenttrace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Call is a single generation call within a trace.
type Call struct {
	ID        string    `json:"id"`
	Stage     string    `json:"stage"`
	Prompt    string    `json:"prompt"`
	Output    string    `json:"output"`
	Valid     bool      `json:"valid"`
	Error     string    `json:"error,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	trace *traceState
	mu    sync.Mutex
}

// Trace is one unit of work from start to result.
type Trace[T any] struct {
	ID         string         `json:"id"`
	Subject    string         `json:"subject"`
	RunContext RunContext     `json:"run_context,omitzero"`
	Calls      []*Call        `json:"calls"`
	Result     T              `json:"result"`
	Error      string         `json:"error,omitempty"`
	StartTime  time.Time      `json:"start_time"`
	EndTime    time.Time      `json:"end_time"`
	Metadata   map[string]any `json:"metadata,omitempty"`

	tracer Tracer[T]
	state  traceState
}

// traceState guards the mutable parts of a trace shared with its calls.
type traceState struct {
	mu    sync.Mutex
	calls *[]*Call
}

// NewTrace creates a trace that tracer records on completion. Tracer
// implementations call it from their NewTrace method.
func NewTrace[T any](ctx context.Context, tracer Tracer[T], subject string) *Trace[T] {
	t := &Trace[T]{
		ID:         generateTraceID(),
		Subject:    subject,
		RunContext: GetRunContext(ctx),
		Calls:      []*Call{},
		StartTime:  time.Now(),
		Metadata:   make(map[string]any),
		tracer:     tracer,
	}
	t.state.calls = &t.Calls
	return t
}

// SetMetadata attaches a key-value pair to the trace.
func (t *Trace[T]) SetMetadata(key string, value any) {
	t.state.mu.Lock()
	defer t.state.mu.Unlock()
	t.Metadata[key] = value
}

// StartCall starts a generation call for stage. The call joins the trace
// when it completes.
func (t *Trace[T]) StartCall(stage, prompt string) *Call {
	t.state.mu.Lock()
	id := fmt.Sprintf("%s-%d", stage, len(t.Calls)+1)
	t.state.mu.Unlock()

	return &Call{
		ID:        id,
		Stage:     stage,
		Prompt:    prompt,
		StartTime: time.Now(),
		trace:     &t.state,
	}
}

// Complete records the output of the call and adds it to its trace.
func (c *Call) Complete(output string, valid bool, err error) {
	c.mu.Lock()
	c.Output = output
	c.Valid = valid
	if err != nil {
		c.Error = err.Error()
	}
	c.EndTime = time.Now()
	state := c.trace
	c.mu.Unlock()

	state.mu.Lock()
	defer state.mu.Unlock()
	*state.calls = append(*state.calls, c)
}

// Duration returns how long the call took, or has been running.
func (c *Call) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.EndTime.IsZero() {
		return time.Since(c.StartTime)
	}
	return c.EndTime.Sub(c.StartTime)
}

// Complete marks the trace as done and hands it to its tracer.
func (t *Trace[T]) Complete(result T, err error) {
	t.state.mu.Lock()
	t.Result = result
	if err != nil {
		t.Error = err.Error()
	}
	t.EndTime = time.Now()
	tracer := t.tracer
	t.state.mu.Unlock()

	if tracer != nil {
		tracer.RecordTrace(t)
	}
}

// Duration returns how long the trace took, or has been running.
func (t *Trace[T]) Duration() time.Duration {
	t.state.mu.Lock()
	defer t.state.mu.Unlock()
	if t.EndTime.IsZero() {
		return time.Since(t.StartTime)
	}
	return t.EndTime.Sub(t.StartTime)
}

// String returns a readable summary of the trace.
func (t *Trace[T]) String() string {
	t.state.mu.Lock()
	defer t.state.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Trace %s ===\n", t.ID)
	fmt.Fprintf(&sb, "Subject: %s\n", t.Subject)
	if !t.EndTime.IsZero() {
		fmt.Fprintf(&sb, "Duration: %v\n", t.EndTime.Sub(t.StartTime))
	}

	if len(t.Calls) == 0 {
		sb.WriteString("\nNo calls\n")
	} else {
		fmt.Fprintf(&sb, "\nCalls (%d):\n", len(t.Calls))
		for i, c := range t.Calls {
			status := "valid"
			switch {
			case c.Error != "":
				status = "error: " + c.Error
			case !c.Valid:
				status = "invalid"
			}
			fmt.Fprintf(&sb, "  [%d] %s (%s, %v)\n", i+1, c.Stage, status, c.EndTime.Sub(c.StartTime))
			fmt.Fprintf(&sb, "      Output: %s\n", truncate(c.Output, 200))
		}
	}

	sb.WriteString("\nCompletion:\n")
	if t.Error != "" {
		fmt.Fprintf(&sb, "  Error: %s\n", t.Error)
	} else {
		fmt.Fprintf(&sb, "  Result: %s\n", truncate(fmt.Sprintf("%+v", t.Result), 500))
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// generateTraceID returns YYYYMMDD-HHMMSS-RRRRRRRR with a random suffix.
func generateTraceID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102-150405.000000")
	}
	return fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), hex.EncodeToString(b))
}
