/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaiexecutor

import (
	"errors"
	"fmt"
	"net/url"

	"chainguard.dev/llmcomparator/agents/executor/retry"
	"chainguard.dev/llmcomparator/agents/metrics"
)

// Option is a functional option for configuring the executor
type Option func(*Executor) error

// WithAPIKey sets the bearer token sent to the endpoint.
func WithAPIKey(key string) Option {
	return func(e *Executor) error {
		if key == "" {
			return errors.New("API key cannot be empty")
		}
		e.apiKey = key
		return nil
	}
}

// WithBaseURL overrides the endpoint (defaults to DefaultBaseURL).
func WithBaseURL(base string) Option {
	return func(e *Executor) error {
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("parsing base URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base URL %q must be http or https", base)
		}
		e.baseURL = base
		return nil
	}
}

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(e *Executor) error {
		if model == "" {
			return errors.New("model cannot be empty")
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

// WithTemperature sets the sampling temperature, from 0.0 to 2.0.
func WithTemperature(temp float64) Option {
	return func(e *Executor) error {
		if temp < 0.0 || temp > 2.0 {
			return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", temp)
		}
		e.temperature = temp
		return nil
	}
}

// WithMaxTokens sets the completion token limit.
func WithMaxTokens(tokens int64) Option {
	return func(e *Executor) error {
		if tokens <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", tokens)
		}
		e.maxTokens = tokens
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

// WithRetryConfig sets the backoff used for rate limits and transient server errors.
func WithRetryConfig(cfg retry.RetryConfig) Option {
	return func(e *Executor) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		e.retryConfig = cfg
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
