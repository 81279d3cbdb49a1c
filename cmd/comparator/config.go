/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"os"

	"chainguard.dev/llmcomparator/comparator/judge"
	"gopkg.in/yaml.v3"
)

// judgeConfig builds the judge configuration from the environment.
func judgeConfig(cfg config) (judge.Config, error) {
	jc := judge.DefaultConfig()
	jc.Repeats = cfg.Repeats
	jc.Concurrency = cfg.Concurrency
	jc.MaxAttempts = cfg.MaxAttempts
	jc.Flip = cfg.Flip
	jc.MultiLabel = cfg.MultiLabel

	policy, err := judge.ParseUnknownLabelPolicy(cfg.UnknownLabels)
	if err != nil {
		return judge.Config{}, err
	}
	jc.UnknownLabels = policy

	if cfg.RatingMap != "" {
		overrides, err := loadRatingMap(cfg.RatingMap)
		if err != nil {
			return judge.Config{}, err
		}
		jc = jc.WithRatingOverrides(overrides)
	}
	return jc, jc.Validate()
}

// loadRatingMap reads a YAML mapping of verdict labels to scores.
func loadRatingMap(path string) (map[string]float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rating map: %w", err)
	}
	var m map[string]float64
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parsing rating map %s: %w", path, err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("rating map %s is empty", path)
	}
	return m, nil
}
