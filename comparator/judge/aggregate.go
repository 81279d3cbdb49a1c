/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"fmt"

	"chainguard.dev/llmcomparator/agents/result"
	"github.com/chainguard-dev/clog"
)

// Aggregate scores every output and averages the ratings of each input.
//
// items and outputs are parallel slices, as returned by Replicate and
// Runner.Query. The result holds numExamples entries in input order; an
// entry with no valid rating has a nil Score.
func Aggregate(ctx context.Context, cfg Config, items []ReplicatedInput, outputs []Output, numExamples int) ([]ExampleResult, error) {
	if len(items) != len(outputs) {
		return nil, fmt.Errorf("got %d outputs for %d items", len(outputs), len(items))
	}
	if numExamples < 0 {
		return nil, fmt.Errorf("number of examples cannot be negative, got %d", numExamples)
	}

	results := make([]ExampleResult, numExamples)
	for i := range results {
		results[i] = ExampleResult{
			IndividualRaterScores: []Rating{},
			RatingLabels:          []string{},
		}
	}

	for i, item := range items {
		if item.ExampleIndex < 0 || item.ExampleIndex >= numExamples {
			return nil, fmt.Errorf("item %d references example %d, out of range [0, %d)", i, item.ExampleIndex, numExamples)
		}
		log := clog.FromContext(ctx).With("example_index", item.ExampleIndex).With("repeat", item.Repeat)

		parsed, err := result.Parse(outputs[i].Text)
		if err != nil {
			log.With("error", err).Error("Failed to parse judge output, dropping sample")
			droppedCounter.WithLabelValues(dropUnparseable).Inc()
			continue
		}

		score, unknown := cfg.score(parsed)
		if len(unknown) > 0 && cfg.UnknownLabels != NeutralScore {
			log.With("verdict", parsed.Verdict).With("unknown", unknown).Error("Unknown rating label, dropping sample")
			droppedCounter.WithLabelValues(dropUnknownLabel).Inc()
			continue
		}
		if len(unknown) > 0 {
			log.With("verdict", parsed.Verdict).With("unknown", unknown).Error("Unknown rating label, scoring as neutral")
		}
		// Deterministic verdicts are decided in input order and never flipped.
		flipped := item.IsFlipped && outputs[i].Stage != StageDeterministic
		if flipped {
			score = -score
		}

		r := &results[item.ExampleIndex]
		r.IndividualRaterScores = append(r.IndividualRaterScores, Rating{
			IsFlipped:   flipped,
			Score:       score,
			RatingLabel: parsed.Verdict,
			Rationale:   parsed.Explanation,
		})
		r.RatingLabels = append(r.RatingLabels, parsed.Verdict)
	}

	for idx := range results {
		r := &results[idx]
		if len(r.IndividualRaterScores) == 0 {
			clog.FromContext(ctx).With("example_index", idx).Warn("No valid ratings, score is undetermined")
			undeterminedCounter.Inc()
			continue
		}
		var sum float64
		for _, rating := range r.IndividualRaterScores {
			sum += rating.Score
		}
		mean := sum / float64(len(r.IndividualRaterScores))
		r.Score = &mean
	}
	return results, nil
}

// score returns the score of a parsed verdict and the labels missing from
// the rating map. Unknown labels contribute NeutralScore to the returned
// score; callers drop the sample under DropSample.
func (c Config) score(r *result.Result) (float64, []string) {
	if s, ok := c.RatingToScore[r.Verdict]; ok {
		return s, nil
	}
	if !c.MultiLabel {
		return c.NeutralScore, []string{r.Verdict}
	}

	labels := r.Labels()
	if len(labels) == 0 {
		return c.NeutralScore, []string{r.Verdict}
	}
	var (
		total   float64
		unknown []string
	)
	for _, label := range labels {
		s, ok := c.RatingToScore[label]
		if !ok {
			unknown = append(unknown, label)
			s = c.NeutralScore
		}
		total += s
	}
	return total, unknown
}
