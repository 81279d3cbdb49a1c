/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package openaiexecutor implements executor.Generator and executor.Embedder
// on OpenAI-compatible chat completion endpoints. The default base URL is
// Together's, which serves open-weight models such as Llama behind the
// OpenAI wire format; WithBaseURL points it anywhere else.
//
//	gen, err := openaiexecutor.New(
//	    openaiexecutor.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    openaiexecutor.WithModel("meta-llama/Llama-3.3-70B-Instruct-Turbo"),
//	)
package openaiexecutor
