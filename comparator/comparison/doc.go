/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package comparison assembles judge results into the JSON document read by
// the LLM Comparator viewer, and writes it to local disk or Cloud Storage.
package comparison
