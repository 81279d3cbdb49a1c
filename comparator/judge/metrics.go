/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	verdictCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comparator_judge_verdicts_total",
			Help: "Verdicts kept per judged item, by producing stage and label",
		},
		[]string{"stage", "label"},
	)

	attemptCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comparator_judge_generation_attempts_total",
			Help: "Generation calls made by the judge, by stage",
		},
		[]string{"stage"},
	)

	fallbackCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comparator_judge_fallbacks_total",
			Help: "Gates that exhausted their attempts and used a synthesized verdict",
		},
		[]string{"stage"},
	)

	droppedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comparator_judge_dropped_samples_total",
			Help: "Samples left out of aggregation, by reason",
		},
		[]string{"reason"},
	)

	undeterminedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comparator_judge_undetermined_examples_total",
			Help: "Examples with no valid rating after aggregation",
		},
	)
)

// Reasons recorded on droppedCounter.
const (
	dropUnparseable  = "unparseable"
	dropUnknownLabel = "unknown_label"
)
