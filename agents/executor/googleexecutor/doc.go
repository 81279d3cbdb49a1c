/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package googleexecutor implements executor.Generator and executor.Embedder
on Google Gemini models, through Vertex AI or the Gemini API.

	gen, err := googleexecutor.NewVertex(ctx, projectID, "us-central1",
	    googleexecutor.WithModel("gemini-2.5-flash"),
	    googleexecutor.WithTemperature(0),
	)
	if err != nil {
	    return err
	}
	out, err := gen.Generate(ctx, prompt)

Embed uses a separate embedding model (default text-embedding-005) with the
CLUSTERING task type, suited to grouping judge rationales.

# Retries

Calls are wrapped in retry.RetryWithBackoff. API errors with status 429,
500, 503 or 504 are retried, as are transport errors that mention
RESOURCE_EXHAUSTED or UNAVAILABLE; everything else is returned to the
caller immediately.

# Thinking

WithThinking enables a reasoning budget (or -1 for dynamic thinking). Thought
parts are excluded from the text returned by Generate.
*/
package googleexecutor
