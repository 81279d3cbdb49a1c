/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"chainguard.dev/llmcomparator/agents/promptbuilder"
)

// Verdict labels produced by the judge.
const (
	LabelCorrect         = "Correct"
	LabelIncomplete      = "Incomplete"
	LabelInference       = "Inference"
	LabelWrong           = "Wrong"
	LabelHallucination   = "Hallucination"
	LabelSkippedQuestion = "Skipped Question"
	LabelMissingAnswer   = "Missing Answer"
	LabelTrueNegative    = "True Negative"
	LabelJudgeFailure    = "Judge Failure"
	LabelCoherent        = "Coherent"
)

// DefaultRatingToScore returns a fresh copy of the default label scores.
func DefaultRatingToScore() map[string]float64 {
	return map[string]float64{
		LabelCorrect:         1.0,
		LabelIncomplete:      0.5,
		LabelInference:       0.5,
		LabelWrong:           -1.0,
		LabelSkippedQuestion: -0.5,
		LabelHallucination:   -1.5,
		LabelMissingAnswer:   0,
		LabelTrueNegative:    1.0,
		LabelJudgeFailure:    0,
	}
}

// UnknownLabelPolicy decides what happens to a sample whose verdict holds a
// label missing from the rating map.
type UnknownLabelPolicy string

const (
	// DropSample removes the whole sample from aggregation.
	DropSample UnknownLabelPolicy = "drop"
	// NeutralScore scores each unknown label as Config.NeutralScore.
	NeutralScore UnknownLabelPolicy = "neutral"
)

// ParseUnknownLabelPolicy parses "drop" or "neutral".
func ParseUnknownLabelPolicy(s string) (UnknownLabelPolicy, error) {
	switch p := UnknownLabelPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case DropSample, NeutralScore:
		return p, nil
	default:
		return "", fmt.Errorf("unknown label policy %q (expected %q or %q)", s, DropSample, NeutralScore)
	}
}

// Templates overrides the built-in judge prompts. Nil fields keep the default.
type Templates struct {
	Coherence *promptbuilder.Prompt
	Recursive *promptbuilder.Prompt
}

// Config holds every tunable of a judge run.
type Config struct {
	// RatingToScore maps verdict labels to scores.
	RatingToScore map[string]float64 `json:"rating_to_score" yaml:"rating_to_score"`

	// MaxAttempts bounds generation calls per gate when outputs fail validation.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// Repeats is the number of samples taken per input.
	Repeats int `json:"repeats" yaml:"repeats"`

	// Concurrency is the number of items judged in parallel.
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Flip swaps candidate and reference on half of the repeats.
	Flip bool `json:"flip" yaml:"flip"`

	// MultiLabel accepts comma-separated verdicts and sums their scores.
	MultiLabel bool `json:"multi_label" yaml:"multi_label"`

	// UnknownLabels is applied to labels missing from RatingToScore.
	UnknownLabels UnknownLabelPolicy `json:"unknown_labels" yaml:"unknown_labels"`

	// NeutralScore is the score of an unknown label under NeutralScore.
	NeutralScore float64 `json:"neutral_score" yaml:"neutral_score"`

	// NASentinel marks an absent answer.
	NASentinel string `json:"na_sentinel" yaml:"na_sentinel"`

	// SkippedSentinel marks a question the candidate skipped.
	SkippedSentinel string `json:"skipped_sentinel" yaml:"skipped_sentinel"`

	// CoherentLabel is the coherence gate verdict that lets an item through.
	CoherentLabel string `json:"coherent_label" yaml:"coherent_label"`

	// Templates optionally replaces the built-in prompts.
	Templates Templates `json:"-" yaml:"-"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		RatingToScore:   DefaultRatingToScore(),
		MaxAttempts:     5,
		Repeats:         6,
		Concurrency:     1,
		MultiLabel:      true,
		UnknownLabels:   DropSample,
		NeutralScore:    1,
		NASentinel:      "N/A",
		SkippedSentinel: "skipped",
		CoherentLabel:   LabelCoherent,
	}
}

// Validate checks the configuration for values the judge cannot run with.
func (c Config) Validate() error {
	var errs []error
	if len(c.RatingToScore) == 0 {
		errs = append(errs, errors.New("rating map cannot be empty"))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts))
	}
	if c.Repeats < 1 {
		errs = append(errs, fmt.Errorf("repeats must be at least 1, got %d", c.Repeats))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if _, err := ParseUnknownLabelPolicy(string(c.UnknownLabels)); err != nil {
		errs = append(errs, err)
	}
	if c.NASentinel == "" || c.SkippedSentinel == "" {
		errs = append(errs, errors.New("sentinels cannot be empty"))
	}
	if c.NASentinel == c.SkippedSentinel {
		errs = append(errs, fmt.Errorf("N/A and skipped sentinels must differ, both are %q", c.NASentinel))
	}
	if strings.TrimSpace(c.CoherentLabel) == "" {
		errs = append(errs, errors.New("coherent label cannot be empty"))
	}
	for _, label := range []string{LabelTrueNegative, LabelMissingAnswer, LabelSkippedQuestion, LabelJudgeFailure} {
		if _, ok := c.RatingToScore[label]; !ok {
			errs = append(errs, fmt.Errorf("rating map is missing synthesized label %q", label))
		}
	}
	return errors.Join(errs...)
}

// WithRatingOverrides returns a copy of c whose rating map is the current map
// updated with overrides.
func (c Config) WithRatingOverrides(overrides map[string]float64) Config {
	m := maps.Clone(c.RatingToScore)
	if m == nil {
		m = make(map[string]float64, len(overrides))
	}
	maps.Copy(m, overrides)
	c.RatingToScore = m
	return c
}
