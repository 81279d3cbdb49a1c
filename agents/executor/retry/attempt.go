/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retry

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
)

// ErrExhausted is returned by Attempt when every attempt produced a value
// that failed validation.
var ErrExhausted = errors.New("validation attempts exhausted")

// Attempt calls generate up to maxAttempts times and returns the first value
// accepted by valid, together with the number of calls made.
//
// A generation error aborts the loop and is returned as is; it is not counted
// against validation. When all attempts fail validation, the last value is
// returned with an error wrapping ErrExhausted, so callers may substitute a
// fallback.
func Attempt[T any](ctx context.Context, operation string, maxAttempts int, generate func(ctx context.Context) (T, error), valid func(T) bool) (T, int, error) {
	var last T
	if maxAttempts < 1 {
		return last, 0, fmt.Errorf("%s: max attempts must be at least 1, got %d", operation, maxAttempts)
	}

	log := clog.FromContext(ctx).With("operation", operation)
	for n := 1; n <= maxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			return last, n - 1, err
		}
		v, err := generate(ctx)
		if err != nil {
			return v, n, err
		}
		if valid(v) {
			return v, n, nil
		}
		last = v
		log.With("attempt", n).With("max_attempts", maxAttempts).Debug("Output failed validation")
	}
	return last, maxAttempts, fmt.Errorf("%s: %w after %d attempts", operation, ErrExhausted, maxAttempts)
}
