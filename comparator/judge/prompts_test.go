/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	f := map[string]string{
		"prompt":         "What was the applicant's job?",
		"response_a":     "Cook",
		"response_b":     "cook",
		"full_text":      "Mario worked as a cook.",
		"text_reference": "as a cook",
	}

	tests := []struct {
		name string
		id   TemplateID
		want []string
		skip []string
	}{{
		name: "coherence",
		id:   CoherenceTemplate,
		want: []string{"**Q:** What was the applicant's job?", "**A:** Cook", "**R:** as a cook"},
		skip: []string{"Mario worked as a cook."},
	}, {
		name: "recursive",
		id:   RecursiveTemplate,
		want: []string{"RT: Mario worked as a cook.", "Q: What was the applicant's job?", "A: Cook", "GTA: cook"},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.id, f)
			if err != nil {
				t.Fatalf("Render() = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Render() does not contain %q", w)
				}
			}
			for _, s := range tt.skip {
				if strings.Contains(got, s) {
					t.Errorf("Render() unexpectedly contains %q", s)
				}
			}
			if strings.Contains(got, "{{") {
				t.Errorf("Render() left a placeholder:\n%s", got)
			}
		})
	}
}

func TestRenderModelReasoning(t *testing.T) {
	f := map[string]string{
		"prompt":     "q",
		"response_a": "a",
		"response_b": "b",
		"full_text":  "t",
	}
	if _, err := Render(RecursiveTemplate, f); err != nil {
		t.Errorf("Render() without model_reasoning = %v", err)
	}
	if _, ok := f["model_reasoning"]; ok {
		t.Error("Render() modified the caller's fields")
	}

	f["model_reasoning"] = "REASONING: the text says cook"
	got, err := Render(RecursiveTemplate, f)
	if err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if !strings.Contains(got, "REASONING: the text says cook") {
		t.Error("Render() dropped model_reasoning")
	}
}

func TestRenderMissingField(t *testing.T) {
	if _, err := Render(CoherenceTemplate, map[string]string{"prompt": "q"}); err == nil {
		t.Error("Render() with missing fields = nil error, wanted error")
	}
	if _, err := Render(TemplateID(7), nil); err == nil {
		t.Error("Render(unknown template) = nil error, wanted error")
	}
}

func TestTemplateIDString(t *testing.T) {
	for id, want := range map[TemplateID]string{
		CoherenceTemplate: "coherence",
		RecursiveTemplate: "recursive",
		TemplateID(9):     "TemplateID(9)",
	} {
		if got := id.String(); got != want {
			t.Errorf("String(): got = %q, wanted = %q", got, want)
		}
	}
}
