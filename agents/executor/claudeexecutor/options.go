/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeexecutor

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"chainguard.dev/llmcomparator/agents/executor/retry"
	"chainguard.dev/llmcomparator/agents/metrics"
)

// Option is a functional option for configuring the executor
type Option func(*Executor) error

// WithMaxTokens sets the maximum tokens for responses
func WithMaxTokens(tokens int64) Option {
	return func(e *Executor) error {
		if tokens <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", tokens)
		}
		if tokens > 32000 { // Maximum for Opus
			return fmt.Errorf("max tokens %d exceeds maximum of 32000", tokens)
		}
		e.maxTokens = tokens
		return nil
	}
}

// WithTemperature sets the temperature for responses.
// Claude models accept values from 0.0 to 1.0; judges usually run at 0.
func WithTemperature(temp float64) Option {
	return func(e *Executor) error {
		if temp < 0.0 || temp > 1.0 {
			return fmt.Errorf("temperature must be between 0.0 and 1.0, got %f", temp)
		}
		e.temperature = temp
		return nil
	}
}

// WithSystemInstructions sets system-level instructions sent with every call.
func WithSystemInstructions(instructions string) Option {
	return func(e *Executor) error {
		if strings.TrimSpace(instructions) == "" {
			return errors.New("system instructions cannot be empty")
		}
		e.systemInstructions = instructions
		return nil
	}
}

// WithModel allows overriding the model name
func WithModel(model string) Option {
	return func(e *Executor) error {
		if !strings.HasPrefix(model, "claude-") {
			return fmt.Errorf("model %q does not appear to be a Claude model (expected claude-* format)", model)
		}
		e.modelName = model
		return nil
	}
}

// WithThinking enables extended thinking mode with the specified token budget.
// The budget must be at least 1024 and less than the max tokens, so apply
// WithMaxTokens first when raising both.
func WithThinking(budgetTokens int64) Option {
	return func(e *Executor) error {
		if budgetTokens < 1024 {
			return fmt.Errorf("thinking budget_tokens must be at least 1024, got %d", budgetTokens)
		}
		if budgetTokens >= e.maxTokens {
			return fmt.Errorf("thinking budget_tokens (%d) must be less than max_tokens (%d)", budgetTokens, e.maxTokens)
		}
		e.thinkingBudgetTokens = &budgetTokens
		return nil
	}
}

// WithAttributeEnricher sets a custom attribute enricher for metrics.
func WithAttributeEnricher(enricher metrics.AttributeEnricher) Option {
	return func(e *Executor) error {
		e.genaiMetrics.SetAttributeEnricher(enricher)
		return nil
	}
}

// WithRetryConfig sets the backoff used for 429 rate limit and 529 overloaded errors.
func WithRetryConfig(cfg retry.RetryConfig) Option {
	return func(e *Executor) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		e.retryConfig = cfg
		return nil
	}
}

// WithResourceLabels adds static attributes to every metric this executor records.
func WithResourceLabels(labels map[string]string) Option {
	return func(e *Executor) error {
		e.resourceLabels = maps.Clone(labels)
		return nil
	}
}

// withMetrics replaces the metrics instance; used by tests.
func withMetrics(m *metrics.GenAI) Option {
	return func(e *Executor) error {
		e.genaiMetrics = m
		return nil
	}
}
