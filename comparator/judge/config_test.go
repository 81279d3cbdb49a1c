/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("MaxAttempts: got = %d, wanted = 5", cfg.MaxAttempts)
	}
	if cfg.Repeats != 6 {
		t.Errorf("Repeats: got = %d, wanted = 6", cfg.Repeats)
	}
	if cfg.Flip {
		t.Error("Flip: got = true, wanted = false")
	}

	// Each call returns an independent map.
	cfg.RatingToScore[LabelCorrect] = 42
	if got := DefaultRatingToScore()[LabelCorrect]; got != 1 {
		t.Errorf("DefaultRatingToScore()[Correct]: got = %v, wanted = 1", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{{
		name:   "empty rating map",
		modify: func(c *Config) { c.RatingToScore = nil },
	}, {
		name:   "zero attempts",
		modify: func(c *Config) { c.MaxAttempts = 0 },
	}, {
		name:   "zero repeats",
		modify: func(c *Config) { c.Repeats = 0 },
	}, {
		name:   "zero concurrency",
		modify: func(c *Config) { c.Concurrency = 0 },
	}, {
		name:   "bad policy",
		modify: func(c *Config) { c.UnknownLabels = "ignore" },
	}, {
		name:   "empty sentinel",
		modify: func(c *Config) { c.NASentinel = "" },
	}, {
		name:   "equal sentinels",
		modify: func(c *Config) { c.SkippedSentinel = c.NASentinel },
	}, {
		name:   "blank coherent label",
		modify: func(c *Config) { c.CoherentLabel = "  " },
	}, {
		name:   "missing synthesized label",
		modify: func(c *Config) { delete(c.RatingToScore, LabelJudgeFailure) },
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, wanted error")
			}
		})
	}
}

func TestParseUnknownLabelPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    UnknownLabelPolicy
		wantErr bool
	}{
		{in: "drop", want: DropSample},
		{in: " Neutral ", want: NeutralScore},
		{in: "ignore", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUnknownLabelPolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseUnknownLabelPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got = %q, wanted = %q", got, tt.want)
			}
		})
	}
}

func TestWithRatingOverrides(t *testing.T) {
	base := DefaultConfig()
	cfg := base.WithRatingOverrides(map[string]float64{
		LabelIncomplete: 0,
		"Partial":       0.25,
	})

	if got := cfg.RatingToScore[LabelIncomplete]; got != 0 {
		t.Errorf("Incomplete: got = %v, wanted = 0", got)
	}
	if got := cfg.RatingToScore["Partial"]; got != 0.25 {
		t.Errorf("Partial: got = %v, wanted = 0.25", got)
	}
	if got := cfg.RatingToScore[LabelCorrect]; got != 1 {
		t.Errorf("Correct: got = %v, wanted = 1", got)
	}
	if got := base.RatingToScore[LabelIncomplete]; got != 0.5 {
		t.Errorf("base map was modified: Incomplete = %v", got)
	}
}
