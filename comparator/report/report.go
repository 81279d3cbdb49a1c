/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"

	"chainguard.dev/llmcomparator/comparator/comparison"
)

// noGroup names examples that lack the grouping field.
const noGroup = "(none)"

// Summary holds the statistics of one comparison document.
type Summary struct {
	Examples     int
	Scored       int
	Undetermined int
	Ratings      int
	MeanScore    float64
	Labels       []LabelCount
	Groups       []GroupScore
}

// LabelCount counts one verdict label across all ratings.
type LabelCount struct {
	Label string
	Count int
}

// GroupScore is the mean score of the examples sharing a custom field value.
type GroupScore struct {
	Name         string
	Examples     int
	Undetermined int
	MeanScore    float64
}

// Summarize computes the statistics of doc. Multi-label verdicts count once
// per label. groupBy names a custom field; an empty groupBy skips grouping.
func Summarize(doc *comparison.Document, groupBy string) Summary {
	var (
		s      Summary
		total  float64
		labels = make(map[string]int)
		groups = make(map[string]*groupAcc)
	)

	for _, ex := range doc.Examples {
		s.Examples++
		s.Ratings += len(ex.IndividualRaterScores)
		for _, r := range ex.IndividualRaterScores {
			for _, l := range strings.Split(r.RatingLabel, ",") {
				if l = strings.TrimSpace(l); l != "" {
					labels[l]++
				}
			}
		}

		var g *groupAcc
		if groupBy != "" {
			name := noGroup
			if v, ok := ex.CustomFields[groupBy]; ok && v != nil {
				name = fmt.Sprint(v)
			}
			if g = groups[name]; g == nil {
				g = &groupAcc{}
				groups[name] = g
			}
			g.examples++
		}

		if ex.Score == nil {
			s.Undetermined++
			if g != nil {
				g.undetermined++
			}
			continue
		}
		s.Scored++
		total += *ex.Score
		if g != nil {
			g.sum += *ex.Score
		}
	}

	if s.Scored > 0 {
		s.MeanScore = total / float64(s.Scored)
	}
	for l, c := range labels {
		s.Labels = append(s.Labels, LabelCount{Label: l, Count: c})
	}
	slices.SortFunc(s.Labels, func(a, b LabelCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	for name, g := range groups {
		gs := GroupScore{Name: name, Examples: g.examples, Undetermined: g.undetermined}
		if scored := g.examples - g.undetermined; scored > 0 {
			gs.MeanScore = g.sum / float64(scored)
		}
		s.Groups = append(s.Groups, gs)
	}
	slices.SortFunc(s.Groups, func(a, b GroupScore) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return s
}

type groupAcc struct {
	examples     int
	undetermined int
	sum          float64
}

// Generate renders the summary of doc as markdown tables. The boolean
// reports whether the overall mean, or any group mean, is below threshold.
func Generate(doc *comparison.Document, groupBy string, threshold float64) (string, bool) {
	s := Summarize(doc, groupBy)
	below := s.Scored > 0 && s.MeanScore < threshold

	var buf bytes.Buffer
	buf.WriteString("## Overall\n\n")
	_ = writeTable(&buf, []string{"Examples", "Scored", "Undetermined", "Ratings", "Mean score"}, [][]string{{
		fmt.Sprint(s.Examples),
		fmt.Sprint(s.Scored),
		fmt.Sprint(s.Undetermined),
		fmt.Sprint(s.Ratings),
		formatScore(s.MeanScore, s.Scored > 0, threshold),
	}})

	if len(s.Labels) > 0 {
		var n int
		for _, l := range s.Labels {
			n += l.Count
		}
		rows := make([][]string, 0, len(s.Labels))
		for _, l := range s.Labels {
			rows = append(rows, []string{
				l.Label,
				fmt.Sprint(l.Count),
				fmt.Sprintf("%.1f%%", 100*float64(l.Count)/float64(n)),
			})
		}
		buf.WriteString("\n## Verdicts\n\n")
		_ = writeTable(&buf, []string{"Label", "Count", "Share"}, rows)
	}

	if len(s.Groups) > 0 {
		rows := make([][]string, 0, len(s.Groups))
		for _, g := range s.Groups {
			scored := g.Examples > g.Undetermined
			if scored && g.MeanScore < threshold {
				below = true
			}
			rows = append(rows, []string{
				g.Name,
				fmt.Sprint(g.Examples),
				fmt.Sprint(g.Undetermined),
				formatScore(g.MeanScore, scored, threshold),
			})
		}
		fmt.Fprintf(&buf, "\n## By %s\n\n", groupBy)
		_ = writeTable(&buf, []string{groupBy, "Examples", "Undetermined", "Mean score"}, rows)
	}
	return buf.String(), below
}

func formatScore(score float64, scored bool, threshold float64) string {
	if !scored {
		return "n/a"
	}
	if score < threshold {
		return fmt.Sprintf("❌ %.3f", score)
	}
	return fmt.Sprintf("%.3f", score)
}
