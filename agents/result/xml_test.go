/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *Result
		wantErr error
	}{{
		name:  "bare block",
		input: "<result><explanation>same meaning</explanation><verdict>Correct</verdict></result>",
		want:  &Result{Explanation: "same meaning", Verdict: "Correct"},
	}, {
		name: "fenced block after reasoning",
		input: "Step 1: compare the figures.\nStep 2: they match.\n\n```xml\n<result>\n" +
			"  <explanation>\n    Both answers report 42.\n  </explanation>\n  <verdict> Correct </verdict>\n</result>\n```\n",
		want: &Result{Explanation: "Both answers report 42.", Verdict: "Correct"},
	}, {
		name:  "case insensitive tags with inner whitespace",
		input: "< RESULT ><Explanation>x</Explanation>< verdict >Wrong</ VERDICT ></Result>",
		want:  &Result{Explanation: "x", Verdict: "Wrong"},
	}, {
		name:  "multiline explanation preserved",
		input: "<result><explanation>line one\nline two</explanation><verdict>Incomplete</verdict></result>",
		want:  &Result{Explanation: "line one\nline two", Verdict: "Incomplete"},
	}, {
		name:  "backticked verdict",
		input: "<result><explanation>x</explanation><verdict>`Hallucination`</verdict></result>",
		want:  &Result{Explanation: "x", Verdict: "Hallucination"},
	}, {
		name: "first complete block wins",
		input: "<result><explanation></explanation><verdict>Wrong</verdict></result>\n" +
			"<result><explanation>second</explanation><verdict>Correct</verdict></result>\n" +
			"<result><explanation>third</explanation><verdict>Wrong</verdict></result>",
		want: &Result{Explanation: "second", Verdict: "Correct"},
	}, {
		name:  "multi-label verdict kept verbatim",
		input: "<result><explanation>x</explanation><verdict>Correct, Inference</verdict></result>",
		want:  &Result{Explanation: "x", Verdict: "Correct, Inference"},
	}, {
		name:    "no block",
		input:   "The answer is Correct.",
		wantErr: ErrNoResultBlock,
	}, {
		name:    "empty input",
		input:   "",
		wantErr: ErrNoResultBlock,
	}, {
		name:    "unterminated block",
		input:   "<result><explanation>x</explanation><verdict>Correct</verdict>",
		wantErr: ErrNoResultBlock,
	}, {
		name:    "missing explanation",
		input:   "<result><verdict>Correct</verdict></result>",
		wantErr: ErrMissingExplanation,
	}, {
		name:    "blank explanation",
		input:   "<result><explanation>  \n </explanation><verdict>Correct</verdict></result>",
		wantErr: ErrMissingExplanation,
	}, {
		name:    "missing verdict",
		input:   "<result><explanation>x</explanation></result>",
		wantErr: ErrMissingVerdict,
	}, {
		name:    "blank verdict",
		input:   "<result><explanation>x</explanation><verdict>   </verdict></result>",
		wantErr: ErrMissingVerdict,
	}, {
		name: "first failure reported when no block is complete",
		input: "<result><verdict>Correct</verdict></result>" +
			"<result><explanation>x</explanation></result>",
		wantErr: ErrMissingExplanation,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, wanted = %v", err, tt.wantErr)
				}
				if got != nil {
					t.Errorf("Parse() = %+v, wanted nil", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLabels(t *testing.T) {
	tests := []struct {
		verdict string
		want    []string
	}{
		{verdict: "Correct", want: []string{"Correct"}},
		{verdict: "Correct, Wrong", want: []string{"Correct", "Wrong"}},
		{verdict: " Correct ,, Inference ,", want: []string{"Correct", "Inference"}},
		{verdict: "Skipped Question", want: []string{"Skipped Question"}},
		{verdict: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.verdict, func(t *testing.T) {
			r := &Result{Verdict: tt.verdict}
			if diff := cmp.Diff(tt.want, r.Labels()); diff != "" {
				t.Errorf("Labels() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidAndHasVerdict(t *testing.T) {
	complete := Format("fine", "Coherent")
	incomplete := "<result><explanation>fine</explanation></result>"

	if !Valid(complete) {
		t.Errorf("Valid(%q) = false, wanted = true", complete)
	}
	if Valid(incomplete) {
		t.Errorf("Valid(%q) = true, wanted = false", incomplete)
	}
	if !HasVerdict(complete, "Coherent") {
		t.Errorf("HasVerdict(Coherent) = false, wanted = true")
	}
	if !HasVerdict(complete, "coherent") {
		t.Errorf("HasVerdict(coherent) = false, wanted = true")
	}
	if HasVerdict(complete, "Incoherent") {
		t.Errorf("HasVerdict(Incoherent) = true, wanted = false")
	}
	if HasVerdict(incomplete, "Coherent") {
		t.Errorf("HasVerdict on incomplete block = true, wanted = false")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	got, err := Parse(Format("Reference answer missing; response answered anyway.", "Missing Answer"))
	if err != nil {
		t.Fatalf("Parse(Format()) unexpected error: %v", err)
	}
	want := &Result{
		Explanation: "Reference answer missing; response answered anyway.",
		Verdict:     "Missing Answer",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse(Format()) mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"<result>",
		"</result><result>",
		"<result><result></result></result>",
		"<<<>>>",
		"<result><explanation><verdict></verdict></explanation></result>",
		"\x00\xff<result>",
	}
	for _, in := range inputs {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded, wanted an error", in)
		}
	}
}
