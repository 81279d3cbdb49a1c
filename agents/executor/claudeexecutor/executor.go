/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeexecutor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/llmcomparator/agents/executor"
	"chainguard.dev/llmcomparator/agents/executor/retry"
	"chainguard.dev/llmcomparator/agents/metrics"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/vertex"
	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel/attribute"
)

// Executor generates text with a Claude model.
type Executor struct {
	client               anthropic.Client
	modelName            string
	systemInstructions   string
	maxTokens            int64
	temperature          float64
	thinkingBudgetTokens *int64            // nil = disabled
	genaiMetrics         *metrics.GenAI    // token usage and call outcomes
	retryConfig          retry.RetryConfig // transient Claude API errors
	resourceLabels       map[string]string // extra metric attributes
}

var _ executor.Generator = (*Executor)(nil)

// New creates an Executor on an existing client.
func New(client anthropic.Client, opts ...Option) (*Executor, error) {
	e := &Executor{
		client:       client,
		modelName:    "claude-sonnet-4@20250514",
		maxTokens:    8192,
		temperature:  0.1,
		genaiMetrics: metrics.NewGenAI(metrics.MeterName),
		retryConfig:  retry.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return e, nil
}

// NewVertex creates an Executor that reaches Claude through Vertex AI using
// application default credentials.
func NewVertex(ctx context.Context, projectID, region string, opts ...Option) (*Executor, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project ID is required for Vertex AI")
	}
	if region == "" {
		return nil, fmt.Errorf("region is required for Vertex AI")
	}
	client := anthropic.NewClient(vertex.WithGoogleAuth(ctx, region, projectID))
	return New(client, opts...)
}

// Model returns the configured model name.
func (e *Executor) Model() string {
	return e.modelName
}

// Generate sends prompt as a single user turn and returns the concatenated
// text blocks of the reply.
func (e *Executor) Generate(ctx context.Context, prompt string) (text string, err error) {
	log := clog.FromContext(ctx).With("model", e.modelName)
	start := time.Now()
	defer func() {
		e.genaiMetrics.RecordGeneration(ctx, e.modelName, start, err, e.resourceLabelsToAttributes()...)
	}()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(e.modelName),
		MaxTokens: e.maxTokens,
		Messages: []anthropic.MessageParam{{
			Role: anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(prompt),
			},
		}},
	}

	params.Temperature = anthropic.Float(e.temperature)
	// See: https://docs.claude.com/en/docs/build-with-claude/extended-thinking#important-considerations-when-using-extended-thinking
	if e.thinkingBudgetTokens != nil {
		params.Temperature = anthropic.Float(1.0)
		params.Thinking = anthropic.ThinkingConfigParamUnion{
			OfEnabled: &anthropic.ThinkingConfigEnabledParam{
				BudgetTokens: *e.thinkingBudgetTokens,
			},
		}
	}

	if e.systemInstructions != "" {
		params.System = []anthropic.TextBlockParam{{Text: e.systemInstructions}}
	}

	message, err := retry.RetryWithBackoff(ctx, e.retryConfig, "claude_generate", isRetryableClaudeError, func() (*anthropic.Message, error) {
		return e.client.Messages.New(ctx, params)
	})
	if err != nil {
		return "", fmt.Errorf("generating Claude response: %w", err)
	}

	if message.Usage.InputTokens > 0 || message.Usage.OutputTokens > 0 {
		e.genaiMetrics.RecordTokens(ctx, e.modelName, message.Usage.InputTokens, message.Usage.OutputTokens, e.resourceLabelsToAttributes()...)
	}

	var b strings.Builder
	for _, content := range message.Content {
		if content.Type == "text" {
			b.WriteString(content.Text)
		}
	}
	if b.Len() == 0 {
		log.With("stop_reason", string(message.StopReason)).Warn("Claude returned no text content")
	}
	return b.String(), nil
}

// resourceLabelsToAttributes converts resourceLabels to OpenTelemetry attributes.
func (e *Executor) resourceLabelsToAttributes() []attribute.KeyValue {
	if len(e.resourceLabels) == 0 {
		return nil
	}
	attrs := make([]attribute.KeyValue, 0, len(e.resourceLabels))
	for k, v := range e.resourceLabels {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}
