/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chainguard.dev/llmcomparator/agents/agenttrace"
	"chainguard.dev/llmcomparator/agents/executor/openaiexecutor"
	"chainguard.dev/llmcomparator/agents/promptbuilder"
	"chainguard.dev/llmcomparator/agents/result"
	"github.com/google/go-cmp/cmp"
)

func TestNewRunner(t *testing.T) {
	if _, err := NewRunner(nil, DefaultConfig()); err == nil {
		t.Error("NewRunner(nil) = nil error, wanted error")
	}

	cfg := DefaultConfig()
	cfg.MaxAttempts = 0
	if _, err := NewRunner(coherentModel(), cfg); err == nil {
		t.Error("NewRunner(MaxAttempts=0) = nil error, wanted error")
	}

	if _, err := NewRunner(coherentModel(), DefaultConfig()); err != nil {
		t.Errorf("NewRunner(default) = %v", err)
	}
}

func TestQueryDeterministic(t *testing.T) {
	tests := []struct {
		name      string
		responseA string
		responseB string
		flip      bool
		wantLabel string
	}{{
		name:      "both absent",
		responseA: "N/A",
		responseB: "N/A",
		wantLabel: LabelTrueNegative,
	}, {
		name:      "candidate absent",
		responseA: "N/A",
		responseB: "cuoco",
		wantLabel: LabelMissingAnswer,
	}, {
		name:      "skipped",
		responseA: "skipped",
		responseB: "cuoco",
		wantLabel: LabelSkippedQuestion,
	}, {
		name:      "skipped with absent reference",
		responseA: "skipped",
		responseB: "N/A",
		wantLabel: LabelSkippedQuestion,
	}, {
		name:      "both absent flipped",
		responseA: "N/A",
		responseB: "N/A",
		flip:      true,
		wantLabel: LabelTrueNegative,
	}, {
		name:      "candidate absent flipped",
		responseA: "N/A",
		responseB: "cuoco",
		flip:      true,
		wantLabel: LabelMissingAnswer,
	}, {
		name:      "skipped flipped",
		responseA: "skipped",
		responseB: "cuoco",
		flip:      true,
		wantLabel: LabelSkippedQuestion,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := coherentModel(block(LabelCorrect))
			r, err := NewRunner(model, testConfig())
			if err != nil {
				t.Fatalf("NewRunner() = %v", err)
			}

			repeats := 1
			if tt.flip {
				repeats = 2
			}
			items, err := Replicate([]Input{{Prompt: "q", ResponseA: tt.responseA, ResponseB: tt.responseB}}, repeats, tt.flip)
			if err != nil {
				t.Fatalf("Replicate() = %v", err)
			}
			outputs, err := r.Query(context.Background(), items)
			if err != nil {
				t.Fatalf("Query() = %v", err)
			}

			if c, d := model.calls(); c+d != 0 {
				t.Errorf("generator calls = %d, wanted = 0", c+d)
			}
			for i, got := range outputs {
				if got.Stage != StageDeterministic {
					t.Errorf("outputs[%d] stage: got = %v, wanted = %v", i, got.Stage, StageDeterministic)
				}
				if got.Label != tt.wantLabel {
					t.Errorf("outputs[%d] label: got = %q, wanted = %q", i, got.Label, tt.wantLabel)
				}
				if !result.HasVerdict(got.Text, tt.wantLabel) {
					t.Errorf("outputs[%d] text %q does not carry verdict %q", i, got.Text, tt.wantLabel)
				}
			}
		})
	}
}

func TestQueryDetailedFallback(t *testing.T) {
	model := coherentModel("I refuse to answer in XML.")
	r, err := NewRunner(model, testConfig())
	if err != nil {
		t.Fatalf("NewRunner() = %v", err)
	}

	items, _ := Replicate([]Input{{Prompt: "q", ResponseA: "a", ResponseB: "b"}}, 1, false)
	outputs, err := r.Query(context.Background(), items)
	if err != nil {
		t.Fatalf("Query() = %v", err)
	}

	coherence, detailed := model.calls()
	if coherence != 1 {
		t.Errorf("coherence calls: got = %d, wanted = 1", coherence)
	}
	if detailed != 5 {
		t.Errorf("detailed calls: got = %d, wanted = 5", detailed)
	}
	want := Output{
		Text:     result.Format(explainJudgeFailure, LabelJudgeFailure),
		Stage:    StageDetailedFallback,
		Label:    LabelJudgeFailure,
		Attempts: 6,
	}
	if diff := cmp.Diff(want, outputs[0]); diff != "" {
		t.Errorf("Query() mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryRecordsTranscript(t *testing.T) {
	model := coherentModel("not xml", block("Correct"))
	r, err := NewRunner(model, testConfig())
	if err != nil {
		t.Fatalf("NewRunner() = %v", err)
	}

	var got []*agenttrace.Trace[Output]
	ctx := agenttrace.WithTracer[Output](context.Background(), agenttrace.ByCode[Output](func(tr *agenttrace.Trace[Output]) {
		got = append(got, tr)
	}))

	items, _ := Replicate([]Input{{Prompt: "q", ResponseA: "a", ResponseB: "b"}}, 1, false)
	if _, err := r.Query(ctx, items); err != nil {
		t.Fatalf("Query() = %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("traces: got = %d, wanted = 1", len(got))
	}
	tr := got[0]
	if tr.Subject != "example 0 repeat 0" {
		t.Errorf("Subject: got = %q, wanted = %q", tr.Subject, "example 0 repeat 0")
	}
	if tr.Result.Label != "Correct" {
		t.Errorf("Result.Label: got = %q, wanted = Correct", tr.Result.Label)
	}

	var stages []string
	var valid []bool
	for _, c := range tr.Calls {
		stages = append(stages, c.Stage)
		valid = append(valid, c.Valid)
	}
	if diff := cmp.Diff([]string{"coherence", "detailed", "detailed"}, stages); diff != "" {
		t.Errorf("call stages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{true, false, true}, valid); diff != "" {
		t.Errorf("call validity mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryCoherenceFailsOpen(t *testing.T) {
	model := &fakeModel{
		coherence: []string{"<result><verdict>Coherent</verdict></result>"},
		detailed:  []string{block(LabelIncomplete)},
	}
	r, err := NewRunner(model, testConfig())
	if err != nil {
		t.Fatalf("NewRunner() = %v", err)
	}

	items, _ := Replicate([]Input{{Prompt: "q", ResponseA: "a", ResponseB: "b"}}, 1, false)
	outputs, err := r.Query(context.Background(), items)
	if err != nil {
		t.Fatalf("Query() = %v", err)
	}

	coherence, detailed := model.calls()
	if coherence != 5 {
		t.Errorf("coherence calls: got = %d, wanted = 5", coherence)
	}
	if detailed != 1 {
		t.Errorf("detailed calls: got = %d, wanted = 1", detailed)
	}
	got := outputs[0]
	if !got.CoherenceFailedOpen {
		t.Error("CoherenceFailedOpen = false, wanted true")
	}
	if got.Stage != StageDetailed || got.Label != LabelIncomplete {
		t.Errorf("output: got = (%v, %q), wanted = (%v, %q)", got.Stage, got.Label, StageDetailed, LabelIncomplete)
	}
	if got.Attempts != 6 {
		t.Errorf("attempts: got = %d, wanted = 6", got.Attempts)
	}
}

func TestQueryCoherenceShortCircuit(t *testing.T) {
	model := &fakeModel{
		coherence: []string{"Some preamble.\n" + block(LabelWrong)},
		detailed:  []string{block(LabelCorrect)},
	}
	r, err := NewRunner(model, testConfig())
	if err != nil {
		t.Fatalf("NewRunner() = %v", err)
	}

	items, _ := Replicate([]Input{{Prompt: "q", ResponseA: "a", ResponseB: "b"}}, 1, false)
	outputs, err := r.Query(context.Background(), items)
	if err != nil {
		t.Fatalf("Query() = %v", err)
	}

	if _, detailed := model.calls(); detailed != 0 {
		t.Errorf("detailed calls: got = %d, wanted = 0", detailed)
	}
	if got := outputs[0]; got.Stage != StageCoherence || got.Label != LabelWrong {
		t.Errorf("output: got = (%v, %q), wanted = (%v, %q)", got.Stage, got.Label, StageCoherence, LabelWrong)
	}
}

func TestQueryRetriesUntilValid(t *testing.T) {
	model := coherentModel("garbage", "<result><explanation>x</explanation></result>", block(LabelCorrect))
	r, err := NewRunner(model, testConfig())
	if err != nil {
		t.Fatalf("NewRunner() = %v", err)
	}

	items, _ := Replicate([]Input{{Prompt: "q", ResponseA: "a", ResponseB: "b"}}, 1, false)
	outputs, err := r.Query(context.Background(), items)
	if err != nil {
		t.Fatalf("Query() = %v", err)
	}
	if _, detailed := model.calls(); detailed != 3 {
		t.Errorf("detailed calls: got = %d, wanted = 3", detailed)
	}
	if got := outputs[0].Label; got != LabelCorrect {
		t.Errorf("label: got = %q, wanted = %q", got, LabelCorrect)
	}
}

func TestQueryGenerationError(t *testing.T) {
	boom := errors.New("quota exhausted")
	model := &fakeModel{err: boom}

	for _, concurrency := range []int{1, 4} {
		cfg := testConfig()
		cfg.Concurrency = concurrency
		r, err := NewRunner(model, cfg)
		if err != nil {
			t.Fatalf("NewRunner() = %v", err)
		}
		items, _ := Replicate([]Input{{Prompt: "q", ResponseA: "a", ResponseB: "b"}}, 3, false)
		if _, err := r.Query(context.Background(), items); !errors.Is(err, boom) {
			t.Errorf("Query(concurrency=%d) = %v, wanted %v", concurrency, err, boom)
		}
	}
}

func TestQueryEmpty(t *testing.T) {
	r, err := NewRunner(coherentModel(), testConfig())
	if err != nil {
		t.Fatalf("NewRunner() = %v", err)
	}
	if _, err := r.Query(context.Background(), nil); !errors.Is(err, ErrNoInputs) {
		t.Errorf("Query(nil) = %v, wanted %v", err, ErrNoInputs)
	}
	if _, err := r.Run(context.Background(), nil); !errors.Is(err, ErrNoInputs) {
		t.Errorf("Run(nil) = %v, wanted %v", err, ErrNoInputs)
	}
}

func TestQueryConcurrentPreservesOrder(t *testing.T) {
	inputs := make([]Input, 20)
	for i := range inputs {
		inputs[i] = Input{Prompt: "q", ResponseA: "a", ResponseB: "b"}
	}
	// Every third input is a sentinel so outputs differ by position.
	for i := 0; i < len(inputs); i += 3 {
		inputs[i].ResponseA = "N/A"
	}

	cfg := testConfig()
	cfg.Concurrency = 8
	r, err := NewRunner(coherentModel(block(LabelCorrect)), cfg)
	if err != nil {
		t.Fatalf("NewRunner() = %v", err)
	}
	items, _ := Replicate(inputs, 1, false)
	outputs, err := r.Query(context.Background(), items)
	if err != nil {
		t.Fatalf("Query() = %v", err)
	}
	for i, out := range outputs {
		want := LabelCorrect
		if i%3 == 0 {
			want = LabelMissingAnswer
		}
		if out.Label != want {
			t.Errorf("outputs[%d].Label: got = %q, wanted = %q", i, out.Label, want)
		}
	}
}

func TestRunRoundTrip(t *testing.T) {
	model := coherentModel(block(LabelCorrect))
	r, err := NewRunner(model, testConfig())
	if err != nil {
		t.Fatalf("NewRunner() = %v", err)
	}

	results, err := r.Run(context.Background(), []Input{{
		Prompt:    "Che lavoro faceva il richiedente?",
		ResponseA: "Cuoco",
		ResponseB: "cuoco",
	}})
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results): got = %d, wanted = 1", len(results))
	}
	if got := results[0].Score; got == nil || *got != 1.0 {
		t.Errorf("score: got = %v, wanted = 1", got)
	}
	if diff := cmp.Diff([]string{LabelCorrect}, results[0].RatingLabels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}

	// Both prompts carry the candidate answer.
	for _, p := range model.prompts {
		if !strings.Contains(p, "Cuoco") {
			t.Errorf("prompt does not contain the candidate answer:\n%s", p)
		}
	}
}

func TestRunFlipped(t *testing.T) {
	model := coherentModel(block(LabelCorrect))
	cfg := testConfig()
	cfg.Repeats = 4
	cfg.Flip = true
	r, err := NewRunner(model, cfg)
	if err != nil {
		t.Fatalf("NewRunner() = %v", err)
	}

	results, err := r.Run(context.Background(), []Input{{Prompt: "q", ResponseA: "a", ResponseB: "b"}})
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}

	var got []float64
	for _, rating := range results[0].IndividualRaterScores {
		got = append(got, rating.Score)
	}
	if diff := cmp.Diff([]float64{1, 1, -1, -1}, got); diff != "" {
		t.Errorf("scores mismatch (-want +got):\n%s", diff)
	}
	if s := results[0].Score; s == nil || math.Abs(*s) > 1e-9 {
		t.Errorf("score: got = %v, wanted = 0", s)
	}
}

func TestRunFlippedSentinels(t *testing.T) {
	model := coherentModel(block(LabelCorrect))
	cfg := testConfig()
	cfg.Repeats = 2
	cfg.Flip = true
	r, err := NewRunner(model, cfg)
	if err != nil {
		t.Fatalf("NewRunner() = %v", err)
	}

	results, err := r.Run(context.Background(), []Input{
		{Prompt: "q", ResponseA: "skipped", ResponseB: "cuoco"},
		{Prompt: "q", ResponseA: "N/A", ResponseB: "N/A"},
		{Prompt: "q", ResponseA: "N/A", ResponseB: "cuoco"},
	})
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if c, d := model.calls(); c+d != 0 {
		t.Errorf("generator calls: got = %d, wanted = 0", c+d)
	}

	tests := []struct {
		label string
		score float64
	}{
		{label: LabelSkippedQuestion, score: -0.5},
		{label: LabelTrueNegative, score: 1},
		{label: LabelMissingAnswer, score: 0},
	}
	for i, tt := range tests {
		got := results[i]
		if diff := cmp.Diff([]string{tt.label, tt.label}, got.RatingLabels); diff != "" {
			t.Errorf("results[%d] labels mismatch (-want +got):\n%s", i, diff)
		}
		if got.Score == nil || math.Abs(*got.Score-tt.score) > 1e-9 {
			t.Errorf("results[%d] score: got = %v, wanted = %v", i, got.Score, tt.score)
		}
		for _, rating := range got.IndividualRaterScores {
			if rating.IsFlipped {
				t.Errorf("results[%d] deterministic rating marked flipped", i)
			}
		}
	}
}

func TestRunFlippedAgainstAbsentReference(t *testing.T) {
	model := coherentModel(block(LabelCorrect))
	cfg := testConfig()
	cfg.Repeats = 2
	cfg.Flip = true
	r, err := NewRunner(model, cfg)
	if err != nil {
		t.Fatalf("NewRunner() = %v", err)
	}

	results, err := r.Run(context.Background(), []Input{{Prompt: "q", ResponseA: "cuoco", ResponseB: "N/A"}})
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	for _, label := range results[0].RatingLabels {
		if label == LabelMissingAnswer {
			t.Errorf("labels: got = %v, wanted no %q for a real candidate", results[0].RatingLabels, LabelMissingAnswer)
		}
	}
}

func TestRunCustomTemplates(t *testing.T) {
	model := &fakeModel{
		coherence: []string{block(LabelCoherent)},
		detailed:  []string{block(LabelCorrect)},
	}
	cfg := testConfig()
	cfg.Templates = Templates{
		Coherence: promptbuilder.MustNewPrompt("coherence check: {{prompt}} / {{response_a}}"),
		Recursive: promptbuilder.MustNewPrompt("compare {{response_a}} with {{response_b}}{{model_reasoning}}"),
	}
	r, err := NewRunner(model, cfg)
	if err != nil {
		t.Fatalf("NewRunner() = %v", err)
	}
	if _, err := r.Run(context.Background(), []Input{{Prompt: "q", ResponseA: "a", ResponseB: "b"}}); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	want := []string{"coherence check: q / a", "compare a with b"}
	if diff := cmp.Diff(want, model.prompts); diff != "" {
		t.Errorf("prompts mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryContextCanceled(t *testing.T) {
	r, err := NewRunner(coherentModel(block(LabelCorrect)), testConfig())
	if err != nil {
		t.Fatalf("NewRunner() = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, _ := Replicate([]Input{{Prompt: "q", ResponseA: "a", ResponseB: "b"}}, 1, false)
	if _, err := r.Query(ctx, items); !errors.Is(err, context.Canceled) {
		t.Errorf("Query() = %v, wanted %v", err, context.Canceled)
	}
}

func TestRunEmptyBackendReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c","object":"chat.completion","choices":[],"usage":{}}`)
	}))
	defer srv.Close()

	gen, err := openaiexecutor.New(
		openaiexecutor.WithAPIKey("test-key"),
		openaiexecutor.WithBaseURL(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("openaiexecutor.New() = %v", err)
	}
	r, err := NewRunner(gen, testConfig())
	if err != nil {
		t.Fatalf("NewRunner() = %v", err)
	}

	results, err := r.Run(context.Background(), []Input{
		{Prompt: "q", ResponseA: "cuoco", ResponseB: "cuoco"},
		{Prompt: "q", ResponseA: "N/A", ResponseB: "N/A"},
	})
	if err != nil {
		t.Fatalf("Run() = %v, wanted empty replies handled as invalid output", err)
	}
	// The gate fails open and the detailed judge falls back to Judge Failure.
	if diff := cmp.Diff([]string{LabelJudgeFailure}, results[0].RatingLabels); diff != "" {
		t.Errorf("results[0] labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{LabelTrueNegative}, results[1].RatingLabels); diff != "" {
		t.Errorf("results[1] labels mismatch (-want +got):\n%s", diff)
	}
}
