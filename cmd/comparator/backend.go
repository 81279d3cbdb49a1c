/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/llmcomparator/agents/agenttrace"
	"chainguard.dev/llmcomparator/agents/executor"
	"chainguard.dev/llmcomparator/agents/executor/claudeexecutor"
	"chainguard.dev/llmcomparator/agents/executor/googleexecutor"
	"chainguard.dev/llmcomparator/agents/executor/openaiexecutor"
	"chainguard.dev/llmcomparator/agents/metrics"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel/attribute"
)

// newGenerator creates the backend named by cfg.Backend, bounded by
// cfg.CallTimeout per call.
func newGenerator(ctx context.Context, cfg config) (executor.Generator, error) {
	enricher := metrics.AttributeEnricher(func(ctx context.Context, attrs []attribute.KeyValue) []attribute.KeyValue {
		return agenttrace.GetRunContext(ctx).EnrichAttributes(attrs)
	})

	backend := strings.ToLower(cfg.Backend)
	if backend == "vertex" {
		// Vertex serves both families; the model name picks the SDK.
		switch model := strings.ToLower(cfg.Model); {
		case strings.HasPrefix(model, "claude-"):
			backend = "claude"
		case strings.HasPrefix(model, "gemini-"):
			backend = "gemini"
		default:
			return nil, fmt.Errorf("unsupported model: %s (expected claude-* or gemini-*)", cfg.Model)
		}
	}

	var (
		gen executor.Generator
		err error
	)
	switch backend {
	case "gemini":
		gen, err = newGemini(ctx, cfg, enricher)
	case "claude":
		gen, err = newClaude(ctx, cfg, enricher)
	case "openai", "together":
		gen, err = newOpenAI(cfg, enricher)
	default:
		return nil, fmt.Errorf("unknown backend %q (expected gemini, claude, vertex or openai)", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return executor.WithTimeout(gen, cfg.CallTimeout), nil
}

func newGemini(ctx context.Context, cfg config, enricher metrics.AttributeEnricher) (executor.Generator, error) {
	opts := []googleexecutor.Option{
		googleexecutor.WithTemperature(float32(cfg.Temperature)),
		googleexecutor.WithMaxOutputTokens(int32(cfg.MaxTokens)),
		googleexecutor.WithAttributeEnricher(enricher),
	}
	if cfg.Model != "" {
		opts = append(opts, googleexecutor.WithModel(cfg.Model))
	}
	return googleexecutor.NewVertex(ctx, cfg.ProjectID, cfg.Region, opts...)
}

func newClaude(ctx context.Context, cfg config, enricher metrics.AttributeEnricher) (executor.Generator, error) {
	opts := []claudeexecutor.Option{
		claudeexecutor.WithTemperature(cfg.Temperature),
		claudeexecutor.WithMaxTokens(cfg.MaxTokens),
		claudeexecutor.WithAttributeEnricher(enricher),
	}
	if cfg.Model != "" {
		opts = append(opts, claudeexecutor.WithModel(cfg.Model))
	}
	if cfg.AnthropicAPIKey != "" {
		return claudeexecutor.New(anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey)), opts...)
	}
	return claudeexecutor.NewVertex(ctx, cfg.ProjectID, cfg.Region, opts...)
}

func newOpenAI(cfg config, enricher metrics.AttributeEnricher) (executor.Generator, error) {
	opts := []openaiexecutor.Option{
		openaiexecutor.WithAPIKey(cfg.OpenAIAPIKey),
		openaiexecutor.WithTemperature(cfg.Temperature),
		openaiexecutor.WithMaxTokens(cfg.MaxTokens),
		openaiexecutor.WithAttributeEnricher(enricher),
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, openaiexecutor.WithBaseURL(cfg.OpenAIBaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, openaiexecutor.WithModel(cfg.Model))
	}
	return openaiexecutor.New(opts...)
}
