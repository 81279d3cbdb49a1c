/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeexecutor

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
)

// transientStatus lists the Anthropic status codes worth another try.
// 529 is Anthropic's overloaded status.
var transientStatus = map[int]bool{
	http.StatusRequestTimeout:     true,
	http.StatusTooManyRequests:    true,
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
	529:                           true,
}

// isRetryableClaudeError reports whether a judge call that failed with err
// should be sent again. Cancellation of the caller's context never is.
func isRetryableClaudeError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if apiErr := (*anthropic.Error)(nil); errors.As(err, &apiErr) {
		return transientStatus[apiErr.StatusCode]
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
