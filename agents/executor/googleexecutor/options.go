/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleexecutor

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"

	"chainguard.dev/llmcomparator/agents/executor/retry"
	"chainguard.dev/llmcomparator/agents/metrics"
)

// Option is a functional option for configuring an executor
type Option func(*Executor) error

// WithModel sets the model to use for generation
func WithModel(model string) Option {
	return func(e *Executor) error {
		if !strings.HasPrefix(model, "gemini-") {
			return fmt.Errorf("model %q does not appear to be a Gemini model (expected gemini-* format)", model)
		}
		e.model = model
		return nil
	}
}

// WithEmbeddingModel sets the model used by Embed.
func WithEmbeddingModel(model string) Option {
	return func(e *Executor) error {
		if model == "" {
			return errors.New("embedding model cannot be empty")
		}
		e.embeddingModel = model
		return nil
	}
}

// WithTemperature sets the temperature for generation.
// Gemini models support values from 0.0 to 2.0.
func WithTemperature(temperature float32) Option {
	return func(e *Executor) error {
		if temperature < 0.0 || temperature > 2.0 {
			return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", temperature)
		}
		e.temperature = temperature
		return nil
	}
}

// WithMaxOutputTokens sets the maximum output tokens for generation
func WithMaxOutputTokens(tokens int32) Option {
	return func(e *Executor) error {
		if tokens <= 0 {
			return fmt.Errorf("max output tokens must be positive, got %d", tokens)
		}
		if tokens > 32768 {
			return fmt.Errorf("max output tokens %d exceeds maximum of 32768", tokens)
		}
		e.maxOutputTokens = tokens
		return nil
	}
}

// WithSystemInstructions sets the system instructions for the model
func WithSystemInstructions(instructions string) Option {
	return func(e *Executor) error {
		if strings.TrimSpace(instructions) == "" {
			return errors.New("system instructions cannot be empty")
		}
		e.systemInstructions = instructions
		return nil
	}
}

// WithThinking enables thinking mode with the specified token budget.
// -1 enables dynamic thinking. See https://ai.google.dev/gemini-api/docs/thinking
func WithThinking(budgetTokens int32) Option {
	return func(e *Executor) error {
		if budgetTokens == -1 {
			e.thinkingBudget = &budgetTokens
			return nil
		}
		if budgetTokens <= 0 {
			return fmt.Errorf("thinking budget must be positive (or -1 for dynamic), got %d", budgetTokens)
		}
		// Thought and output tokens count together against the limit.
		if budgetTokens >= e.maxOutputTokens {
			return fmt.Errorf("thinking budget (%d) must be less than max_output_tokens (%d)", budgetTokens, e.maxOutputTokens)
		}
		e.thinkingBudget = &budgetTokens
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

// WithRetryConfig sets the retry configuration for 429 RESOURCE_EXHAUSTED and
// other transient Vertex AI errors.
func WithRetryConfig(cfg retry.RetryConfig) Option {
	return func(e *Executor) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		e.retryConfig = cfg
		return nil
	}
}

// WithResourceLabels sets labels that are sent with each Vertex AI request
// for billing attribution. Defaults are read from the environment:
//   - service_name: from K_SERVICE (defaults to "unknown")
//   - product: from CHAINGUARD_PRODUCT (defaults to "unknown")
//   - team: from CHAINGUARD_TEAM (defaults to "unknown")
//
// Custom labels override defaults with the same key.
func WithResourceLabels(labels map[string]string) Option {
	return func(e *Executor) error {
		e.resourceLabels = map[string]string{
			"service_name": envOr("K_SERVICE", "unknown"),
			"product":      envOr("CHAINGUARD_PRODUCT", "unknown"),
			"team":         envOr("CHAINGUARD_TEAM", "unknown"),
		}
		maps.Copy(e.resourceLabels, labels)
		return nil
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// withMetrics replaces the metrics instance; used by tests.
func withMetrics(m *metrics.GenAI) Option {
	return func(e *Executor) error {
		e.genaiMetrics = m
		return nil
	}
}
