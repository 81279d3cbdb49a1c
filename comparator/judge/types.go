/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

// Input is one comparison unit: a question, the candidate answer and the
// reference answer, with the context the judge needs to decide.
type Input struct {
	// Prompt is the question put to the candidate model.
	Prompt string `json:"prompt" yaml:"prompt"`

	// ResponseA is the candidate answer. It may be the N/A or skipped sentinel.
	ResponseA string `json:"response_a" yaml:"response_a"`

	// ResponseB is the reference (ground truth) answer.
	ResponseB string `json:"response_b" yaml:"response_b"`

	// FullText is the source document the answers were drawn from.
	FullText string `json:"full_text,omitempty" yaml:"full_text,omitempty"`

	// TextReference is the excerpt the candidate cited as its reasoning.
	TextReference string `json:"text_reference,omitempty" yaml:"text_reference,omitempty"`

	// Tags are passed through to the comparison document untouched.
	Tags any `json:"tags,omitempty" yaml:"tags,omitempty"`

	// CustomFields carries per-example metadata such as case_number,
	// doc_type, model_name and disagreement_reason.
	CustomFields map[string]any `json:"custom_fields,omitempty" yaml:"custom_fields,omitempty"`
}

// ReplicatedInput is one judge invocation: an Input repeated for sampling,
// with a back-reference to its position in the input slice.
type ReplicatedInput struct {
	Input

	// ExampleIndex is the index of the owning Input.
	ExampleIndex int `json:"example_index"`

	// Repeat numbers the copies of one Input from 0.
	Repeat int `json:"repeat"`

	// IsFlipped marks a copy whose candidate and reference were swapped.
	// Its score is negated during aggregation.
	IsFlipped bool `json:"is_flipped"`
}

// Original returns the candidate and reference answers in their input
// order, undoing the swap of flipped copies.
func (r ReplicatedInput) Original() (candidate, reference string) {
	if r.IsFlipped {
		return r.ResponseB, r.ResponseA
	}
	return r.ResponseA, r.ResponseB
}

// Stage records which step of the judge produced an Output.
type Stage string

const (
	// StageDeterministic outputs were synthesized from sentinel inputs.
	StageDeterministic Stage = "deterministic"
	// StageCoherence outputs are non-coherent verdicts from the coherence gate.
	StageCoherence Stage = "coherence"
	// StageCoherenceFallback marks a gate that exhausted its attempts and
	// failed open. It only appears in logs and metrics; the item then
	// continues to the detailed judge.
	StageCoherenceFallback Stage = "coherence-fallback"
	// StageDetailed outputs came from the detailed judge.
	StageDetailed Stage = "detailed"
	// StageDetailedFallback outputs are synthesized Judge Failure verdicts.
	StageDetailedFallback Stage = "detailed-fallback"
)

// Output is the text kept for one ReplicatedInput.
type Output struct {
	// Text is the raw model output, or a synthesized result block.
	Text string `json:"text"`

	// Stage is the step that produced Text.
	Stage Stage `json:"stage"`

	// Label is the verdict parsed from Text, empty when it does not parse.
	Label string `json:"label"`

	// Attempts counts generation calls spent on this item across both gates.
	Attempts int `json:"attempts"`

	// CoherenceFailedOpen is set when the coherence gate exhausted its
	// attempts and the item was judged as coherent.
	CoherenceFailedOpen bool `json:"coherence_failed_open,omitempty"`
}

// Rating is one scored judge sample.
type Rating struct {
	IsFlipped   bool    `json:"is_flipped"`
	Score       float64 `json:"score"`
	RatingLabel string  `json:"rating_label"`
	Rationale   string  `json:"rationale"`
}

// ExampleResult aggregates the ratings of one Input.
type ExampleResult struct {
	// Score is the mean of the individual scores, or nil when no sample
	// produced a valid rating.
	Score *float64 `json:"score"`

	// IndividualRaterScores holds the valid ratings in replication order.
	IndividualRaterScores []Rating `json:"individual_rater_scores"`

	// RatingLabels holds the label of each rating, in the same order.
	RatingLabels []string `json:"rating_labels"`
}

// Undetermined reports whether no sample produced a valid rating.
func (r ExampleResult) Undetermined() bool {
	return r.Score == nil
}
