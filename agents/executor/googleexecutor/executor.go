/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleexecutor

import (
	"context"
	"fmt"
	"time"

	"chainguard.dev/llmcomparator/agents/executor"
	"chainguard.dev/llmcomparator/agents/executor/retry"
	"chainguard.dev/llmcomparator/agents/metrics"
	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"
)

// Executor generates text and embeddings with Gemini models.
type Executor struct {
	client             *genai.Client
	model              string
	embeddingModel     string
	temperature        float32
	maxOutputTokens    int32
	systemInstructions string
	thinkingBudget     *int32            // nil = disabled
	genaiMetrics       *metrics.GenAI    // token usage and call outcomes
	retryConfig        retry.RetryConfig // transient Vertex AI errors
	resourceLabels     map[string]string // sent with each Vertex AI request
}

var (
	_ executor.Generator = (*Executor)(nil)
	_ executor.Embedder  = (*Executor)(nil)
)

// New creates an Executor on an existing client.
func New(client *genai.Client, options ...Option) (*Executor, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	exec := &Executor{
		client:          client,
		model:           "gemini-2.5-flash",
		embeddingModel:  "text-embedding-005",
		temperature:     0.1,
		maxOutputTokens: 8192,
		genaiMetrics:    metrics.NewGenAI(metrics.MeterName),
		retryConfig:     retry.DefaultRetryConfig(),
	}
	for _, opt := range options {
		if err := opt(exec); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return exec, nil
}

// NewVertex creates an Executor backed by Vertex AI in projectID and region.
func NewVertex(ctx context.Context, projectID, region string, options ...Option) (*Executor, error) {
	if projectID == "" {
		return nil, fmt.Errorf("project ID is required for Vertex AI")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: region,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return New(client, options...)
}

// Model returns the configured generation model name.
func (e *Executor) Model() string {
	return e.model
}

// Generate sends prompt as a single user turn and returns the text of the
// first candidate.
func (e *Executor) Generate(ctx context.Context, prompt string) (text string, err error) {
	log := clog.FromContext(ctx).With("model", e.model)
	start := time.Now()
	defer func() {
		e.genaiMetrics.RecordGeneration(ctx, e.model, start, err)
	}()

	config := &genai.GenerateContentConfig{
		Temperature:     ptr(e.temperature),
		MaxOutputTokens: e.maxOutputTokens,
		Labels:          e.resourceLabels,
	}
	if e.systemInstructions != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: e.systemInstructions}},
		}
	}
	if e.thinkingBudget != nil {
		config.ThinkingConfig = &genai.ThinkingConfig{
			ThinkingBudget: e.thinkingBudget,
		}
	}

	response, err := retry.RetryWithBackoff(ctx, e.retryConfig, "gemini_generate", isRetryableVertexError, func() (*genai.GenerateContentResponse, error) {
		return e.client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), config)
	})
	if err != nil {
		return "", fmt.Errorf("generating Gemini response: %w", err)
	}
	if response.UsageMetadata != nil {
		e.genaiMetrics.RecordTokens(ctx, e.model,
			int64(response.UsageMetadata.PromptTokenCount),
			int64(response.UsageMetadata.CandidatesTokenCount))
	}
	// Blocked prompts come back without candidates; the caller treats the
	// empty text as an invalid answer.
	if len(response.Candidates) == 0 {
		l := log
		if fb := response.PromptFeedback; fb != nil {
			l = l.With("block_reason", string(fb.BlockReason)).With("block_message", fb.BlockReasonMessage)
		}
		l.Warn("Gemini returned no candidates")
		return "", nil
	}

	text = response.Text()
	if text == "" {
		log.With("finish_reason", string(response.Candidates[0].FinishReason)).Warn("Gemini returned no text content")
	}
	return text, nil
}

// Embed returns one embedding per text, in input order.
func (e *Executor) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}

	response, err := retry.RetryWithBackoff(ctx, e.retryConfig, "gemini_embed", isRetryableVertexError, func() (*genai.EmbedContentResponse, error) {
		return e.client.Models.EmbedContent(ctx, e.embeddingModel, contents, &genai.EmbedContentConfig{
			TaskType: "CLUSTERING",
		})
	})
	if err != nil {
		return nil, fmt.Errorf("embedding %d texts: %w", len(texts), err)
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(response.Embeddings), len(texts))
	}

	out := make([][]float32, len(response.Embeddings))
	for i, emb := range response.Embeddings {
		out[i] = emb.Values
	}
	return out, nil
}

// ptr is a helper function to create a pointer to a value
func ptr[T any](v T) *T {
	return &v
}
