/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"strings"
	"sync"

	"chainguard.dev/llmcomparator/agents/result"
)

// fakeModel answers coherence and detailed prompts from fixed scripts and
// counts the calls made for each.
type fakeModel struct {
	mu        sync.Mutex
	coherence []string
	detailed  []string
	err       error

	coherenceCalls int
	detailedCalls  int
	prompts        []string
}

func (m *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if strings.Contains(prompt, "coherence check") {
		m.coherenceCalls++
		return next(m.coherence, m.coherenceCalls), nil
	}
	m.detailedCalls++
	return next(m.detailed, m.detailedCalls), nil
}

func (m *fakeModel) calls() (coherence, detailed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.coherenceCalls, m.detailedCalls
}

// next returns the n-th (1-based) scripted answer, repeating the last one.
func next(script []string, n int) string {
	if len(script) == 0 {
		return ""
	}
	if n > len(script) {
		return script[len(script)-1]
	}
	return script[n-1]
}

func block(verdict string) string {
	return result.Format("test explanation", verdict)
}

func coherentModel(detailed ...string) *fakeModel {
	return &fakeModel{
		coherence: []string{block(LabelCoherent)},
		detailed:  detailed,
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Repeats = 1
	return cfg
}

func ptr[T any](v T) *T {
	return &v
}
