/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import "fmt"

// Replicate expands inputs into repeats copies each, grouped by input.
//
// With flip set, the first ceil(repeats/2) copies keep their order and the
// remaining floor(repeats/2) swap ResponseA and ResponseB and are marked
// IsFlipped. Without flip every copy keeps its order.
func Replicate(inputs []Input, repeats int, flip bool) ([]ReplicatedInput, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	if repeats < 1 {
		return nil, fmt.Errorf("repeats must be at least 1, got %d", repeats)
	}

	straight := repeats
	if flip {
		straight = (repeats + 1) / 2
	}

	out := make([]ReplicatedInput, 0, len(inputs)*repeats)
	for idx, in := range inputs {
		for r := range repeats {
			item := ReplicatedInput{
				Input:        in,
				ExampleIndex: idx,
				Repeat:       r,
			}
			if r >= straight {
				item.ResponseA, item.ResponseB = in.ResponseB, in.ResponseA
				item.IsFlipped = true
			}
			out = append(out, item)
		}
	}
	return out, nil
}
