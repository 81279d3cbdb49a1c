/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package report renders markdown summaries of comparison documents.

# Overview

Generate reads a comparison.Document and produces three tables: overall
scores, verdict label counts, and mean scores grouped by a custom field
such as "Model Name" or "Doc Type".

# Usage

	summary, below := report.Generate(doc, comparison.FieldDocType, 0.5)
	fmt.Print(summary)
	if below {
		os.Exit(1)
	}

Undetermined examples are counted but never contribute to a mean.
*/
package report
