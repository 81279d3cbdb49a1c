/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package comparison

import (
	"fmt"

	"chainguard.dev/llmcomparator/comparator/judge"
)

// FieldType is how the viewer treats a custom field.
type FieldType string

const (
	// Category fields can be filtered and grouped on.
	Category FieldType = "category"
	// Text fields are shown verbatim.
	Text FieldType = "text"
)

// Custom field names in exported documents.
const (
	FieldCaseNumber         = "Case Number"
	FieldDocType            = "Doc Type"
	FieldModelName          = "Model Name"
	FieldTextReference      = "Text Reference"
	FieldDisagreementReason = "Disagreement Reason"
)

// DefaultModelNames names the candidate and the reference.
var DefaultModelNames = []string{"LLM Response", "Ground Truth"}

// FieldSchema declares one custom field.
type FieldSchema struct {
	Name string    `json:"name" jsonschema:"required"`
	Type FieldType `json:"type" jsonschema:"required,enum=category,enum=text"`
}

// Metadata describes the custom fields carried by every example.
type Metadata struct {
	CustomFieldsSchema []FieldSchema `json:"custom_fields_schema" jsonschema:"required"`
}

// Model names one side of the comparison.
type Model struct {
	Name string `json:"name" jsonschema:"required"`
}

// Example is one judged input.
type Example struct {
	InputText             string         `json:"input_text" jsonschema:"required"`
	Tags                  any            `json:"tags"`
	OutputTextA           string         `json:"output_text_a" jsonschema:"required"`
	OutputTextB           string         `json:"output_text_b" jsonschema:"required"`
	Score                 *float64       `json:"score" jsonschema:"required"`
	IndividualRaterScores []judge.Rating `json:"individual_rater_scores" jsonschema:"required"`
	RationaleList         []any          `json:"rationale_list"`
	CustomFields          map[string]any `json:"custom_fields"`
}

// Document is the exported comparison.
type Document struct {
	Metadata          Metadata  `json:"metadata" jsonschema:"required"`
	Models            []Model   `json:"models" jsonschema:"required"`
	Examples          []Example `json:"examples" jsonschema:"required"`
	RationaleClusters []any     `json:"rationale_clusters"`
}

// customFields maps exported field names to their Input.CustomFields keys.
var customFields = []struct {
	schema FieldSchema
	key    string
}{
	{FieldSchema{FieldCaseNumber, Category}, "case_number"},
	{FieldSchema{FieldDocType, Category}, "doc_type"},
	{FieldSchema{FieldModelName, Category}, "model_name"},
	{FieldSchema{FieldTextReference, Text}, "text_reference"},
	{FieldSchema{FieldDisagreementReason, Text}, "disagreement_reason"},
}

// Build merges inputs with their results. modelNames defaults to
// DefaultModelNames when empty.
func Build(inputs []judge.Input, results []judge.ExampleResult, modelNames []string) (*Document, error) {
	if len(inputs) != len(results) {
		return nil, fmt.Errorf("got %d results for %d inputs", len(results), len(inputs))
	}
	if len(modelNames) == 0 {
		modelNames = DefaultModelNames
	}
	if len(modelNames) != 2 {
		return nil, fmt.Errorf("need exactly 2 model names, got %d", len(modelNames))
	}

	doc := &Document{
		Metadata:          Metadata{CustomFieldsSchema: make([]FieldSchema, 0, len(customFields))},
		Models:            make([]Model, 0, len(modelNames)),
		Examples:          make([]Example, 0, len(inputs)),
		RationaleClusters: []any{},
	}
	for _, f := range customFields {
		doc.Metadata.CustomFieldsSchema = append(doc.Metadata.CustomFieldsSchema, f.schema)
	}
	for _, name := range modelNames {
		doc.Models = append(doc.Models, Model{Name: name})
	}

	for i, in := range inputs {
		res := results[i]
		ratings := res.IndividualRaterScores
		if ratings == nil {
			ratings = []judge.Rating{}
		}
		tags := in.Tags
		if tags == nil {
			tags = []any{}
		}
		doc.Examples = append(doc.Examples, Example{
			InputText:             in.Prompt,
			Tags:                  tags,
			OutputTextA:           in.ResponseA,
			OutputTextB:           in.ResponseB,
			Score:                 res.Score,
			IndividualRaterScores: ratings,
			RationaleList:         []any{},
			CustomFields:          projectFields(in),
		})
	}
	return doc, nil
}

// projectFields renames the custom fields of in. Missing keys map to nil.
func projectFields(in judge.Input) map[string]any {
	out := make(map[string]any, len(customFields))
	for _, f := range customFields {
		out[f.schema.Name] = in.CustomFields[f.key]
	}
	if in.TextReference != "" {
		out[FieldTextReference] = in.TextReference
	}
	return out
}
