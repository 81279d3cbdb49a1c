/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleexecutor

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// transientMarkers match Vertex errors that do not carry a status code,
// such as those surfaced through gRPC or the streaming transport.
var transientMarkers = []string{
	"RESOURCE_EXHAUSTED",
	"Resource exhausted",
	"quota exceeded",
	"rate limit",
	"Overloaded",
	"UNAVAILABLE",
	"DEADLINE_EXCEEDED",
}

// isRetryableVertexError reports whether a judge call that failed with err
// should be sent again.
func isRetryableVertexError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	msg := err.Error()
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
