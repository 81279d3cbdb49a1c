/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package comparison

import (
	"context"
	"fmt"
	"slices"

	"chainguard.dev/llmcomparator/agents/schema"
	"chainguard.dev/llmcomparator/comparator/judge"
	"github.com/chainguard-dev/clog"
)

// Judge produces one result per input.
type Judge interface {
	Run(ctx context.Context, inputs []judge.Input) ([]judge.ExampleResult, error)
}

// Option customizes Run.
type Option func(*options) error

type options struct {
	modelNames []string
}

// WithModelNames sets the names shown for the candidate and the reference.
func WithModelNames(candidate, reference string) Option {
	return func(o *options) error {
		if candidate == "" || reference == "" {
			return fmt.Errorf("model names cannot be empty")
		}
		o.modelNames = []string{candidate, reference}
		return nil
	}
}

// Run judges inputs and builds the comparison document. The per-example
// results are returned alongside for reporting.
func Run(ctx context.Context, j Judge, inputs []judge.Input, opts ...Option) (*Document, []judge.ExampleResult, error) {
	o := options{modelNames: DefaultModelNames}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, nil, fmt.Errorf("applying option: %w", err)
		}
	}

	results, err := j.Run(ctx, inputs)
	if err != nil {
		return nil, nil, fmt.Errorf("judging %d inputs: %w", len(inputs), err)
	}
	doc, err := Build(inputs, results, o.modelNames)
	if err != nil {
		return nil, nil, err
	}
	return doc, results, nil
}

// Merge concatenates the examples of docs into one document carrying the
// metadata and models of the first. Mismatched metadata or models are
// logged and otherwise ignored.
func Merge(ctx context.Context, docs ...*Document) (*Document, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("nothing to merge")
	}
	for i, doc := range docs {
		if doc == nil {
			return nil, fmt.Errorf("document %d is nil", i)
		}
	}

	first := docs[0]
	merged := &Document{
		Metadata:          first.Metadata,
		Models:            slices.Clone(first.Models),
		Examples:          slices.Clone(first.Examples),
		RationaleClusters: slices.Clone(first.RationaleClusters),
	}
	for i, doc := range docs[1:] {
		log := clog.FromContext(ctx).With("document", i+1)
		if !slices.Equal(doc.Metadata.CustomFieldsSchema, first.Metadata.CustomFieldsSchema) {
			log.Warn("Metadata does not match the first document")
		}
		if !slices.Equal(doc.Models, first.Models) {
			log.Warn("Models do not match the first document")
		}
		if len(doc.RationaleClusters) != len(first.RationaleClusters) {
			log.Warn("Rationale clusters do not match the first document")
		}
		merged.Examples = append(merged.Examples, doc.Examples...)
	}
	if merged.Examples == nil {
		merged.Examples = []Example{}
	}
	if merged.RationaleClusters == nil {
		merged.RationaleClusters = []any{}
	}
	return merged, nil
}

// Schema returns the JSON Schema of Document. Objects other than
// custom_fields reject properties the document does not define.
func Schema() ([]byte, error) {
	return schema.NewGenerator(schema.Strict()).MarshalIndent(&Document{}, "LLM Comparator document")
}
