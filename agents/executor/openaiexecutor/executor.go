/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package openaiexecutor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chainguard.dev/llmcomparator/agents/executor"
	"chainguard.dev/llmcomparator/agents/executor/retry"
	"chainguard.dev/llmcomparator/agents/metrics"
	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultBaseURL is Together's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.together.xyz/v1/"

// Executor generates text and embeddings through an OpenAI-compatible API.
type Executor struct {
	client         openai.Client
	apiKey         string
	baseURL        string
	model          string
	embeddingModel string
	temperature    float64
	maxTokens      int64
	genaiMetrics   *metrics.GenAI
	retryConfig    retry.RetryConfig
}

var (
	_ executor.Generator = (*Executor)(nil)
	_ executor.Embedder  = (*Executor)(nil)
)

// New creates an Executor. WithAPIKey is required.
func New(opts ...Option) (*Executor, error) {
	e := &Executor{
		baseURL:        DefaultBaseURL,
		model:          "meta-llama/Llama-3.3-70B-Instruct-Turbo",
		embeddingModel: "BAAI/bge-large-en-v1.5",
		temperature:    0.1,
		maxTokens:      8192,
		genaiMetrics:   metrics.NewGenAI(metrics.MeterName),
		retryConfig:    retry.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	if e.apiKey == "" {
		return nil, errors.New("API key is required")
	}

	e.client = openai.NewClient(
		option.WithAPIKey(e.apiKey),
		option.WithBaseURL(e.baseURL),
		// Backoff is handled by retry.RetryWithBackoff.
		option.WithMaxRetries(0),
	)
	return e, nil
}

// Model returns the configured chat model name.
func (e *Executor) Model() string {
	return e.model
}

// Generate sends prompt as a single user message and returns the content of
// the first choice.
func (e *Executor) Generate(ctx context.Context, prompt string) (text string, err error) {
	start := time.Now()
	defer func() {
		e.genaiMetrics.RecordGeneration(ctx, e.model, start, err)
	}()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(e.temperature),
		MaxTokens:   openai.Int(e.maxTokens),
	}

	completion, err := retry.RetryWithBackoff(ctx, e.retryConfig, "chat_completion", isRetryableOpenAIError, func() (*openai.ChatCompletion, error) {
		return e.client.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		return "", fmt.Errorf("generating chat completion: %w", err)
	}

	e.genaiMetrics.RecordTokens(ctx, e.model, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	// No output is an invalid answer for the caller to retry, not an error.
	if len(completion.Choices) == 0 {
		clog.FromContext(ctx).With("model", e.model).Warn("Chat completion returned no choices")
		return "", nil
	}
	choice := completion.Choices[0]
	if choice.Message.Content == "" {
		clog.FromContext(ctx).With("model", e.model).
			With("finish_reason", choice.FinishReason).
			Warn("Chat completion returned no content")
	}
	return choice.Message.Content, nil
}

// Embed returns one embedding per text, in input order.
func (e *Executor) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := retry.RetryWithBackoff(ctx, e.retryConfig, "embeddings", isRetryableOpenAIError, func() (*openai.CreateEmbeddingResponse, error) {
		return e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
			Model: openai.EmbeddingModel(e.embeddingModel),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	results := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || int(data.Index) >= len(texts) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		vec := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vec[i] = float32(v)
		}
		results[data.Index] = vec
	}
	return results, nil
}
