/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package inputs loads judge inputs from JSON, JSON Lines and YAML files,
// on local disk or in Cloud Storage.
package inputs

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"chainguard.dev/llmcomparator/comparator/judge"
	"cloud.google.com/go/storage"
	"github.com/chainguard-dev/clog"
	"gopkg.in/yaml.v3"
)

// Format is an input file encoding.
type Format string

const (
	JSON  Format = "json"
	JSONL Format = "jsonl"
	YAML  Format = "yaml"
)

// ErrUnknownFormat is returned for file extensions Load does not handle.
var ErrUnknownFormat = errors.New("unknown input format")

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".jsonl", ".ndjson":
		return JSONL, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Load reads the inputs stored at path, a local file or gs://bucket/object.
func Load(ctx context.Context, path string) ([]judge.Input, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var r io.ReadCloser
	if rest, ok := strings.CutPrefix(path, "gs://"); ok {
		bucket, object, _ := strings.Cut(rest, "/")
		if bucket == "" || object == "" {
			return nil, fmt.Errorf("invalid Cloud Storage path %q, expected gs://bucket/object", path)
		}
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("creating storage client: %w", err)
		}
		defer client.Close()
		if r, err = client.Bucket(bucket).Object(object).NewReader(ctx); err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
	} else if r, err = os.Open(path); err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	inputs, err := Decode(r, format)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	clog.FromContext(ctx).With("path", path).With("inputs", len(inputs)).Info("Loaded inputs")
	return inputs, nil
}

// Decode reads inputs in the given format from r.
func Decode(r io.Reader, format Format) ([]judge.Input, error) {
	var (
		inputs []judge.Input
		err    error
	)
	switch format {
	case JSON:
		err = json.NewDecoder(r).Decode(&inputs)
	case JSONL:
		inputs, err = decodeLines(r)
	case YAML:
		err = yaml.NewDecoder(r).Decode(&inputs)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}

	for i := range inputs {
		if err := normalize(&inputs[i]); err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
	}
	return inputs, nil
}

func decodeLines(r io.Reader) ([]judge.Input, error) {
	var inputs []judge.Input
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		b := bytes.TrimSpace(scanner.Bytes())
		if len(b) == 0 {
			continue
		}
		var in judge.Input
		if err := json.Unmarshal(b, &in); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		inputs = append(inputs, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return inputs, nil
}

// normalize lifts full_text and text_reference out of custom_fields when
// they are not set at the top level, and checks required fields.
func normalize(in *judge.Input) error {
	if in.FullText == "" {
		in.FullText = stringField(in.CustomFields, "full_text")
	}
	if in.TextReference == "" {
		in.TextReference = stringField(in.CustomFields, "text_reference")
	}
	if strings.TrimSpace(in.Prompt) == "" {
		return errors.New("prompt is required")
	}
	return nil
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
