/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package comparison

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/chainguard-dev/clog"
)

const gcsScheme = "gs://"

// Encode writes doc to w as indented JSON.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding comparison document: %w", err)
	}
	return nil
}

// Write stores doc at path, either a local file or a gs://bucket/object URL,
// and returns the path written.
func Write(ctx context.Context, doc *Document, path string) (string, error) {
	bucket, object, isGCS, err := parseGCSPath(path)
	if err != nil {
		return "", err
	}
	if isGCS {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return "", fmt.Errorf("creating storage client: %w", err)
		}
		defer client.Close()
		if err := WriteObject(ctx, client, bucket, object, doc); err != nil {
			return "", err
		}
		return path, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Encode(f, doc); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	clog.FromContext(ctx).With("path", path).With("examples", len(doc.Examples)).Info("Wrote comparison document")
	return path, nil
}

// WriteObject stores doc as a JSON object in Cloud Storage.
func WriteObject(ctx context.Context, client *storage.Client, bucket, object string, doc *Document) error {
	w := client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/json"
	if err := Encode(w, doc); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("writing gs://%s/%s: %w", bucket, object, err)
	}
	clog.FromContext(ctx).With("bucket", bucket).
		With("object", object).
		With("examples", len(doc.Examples)).
		Info("Wrote comparison document")
	return nil
}

// parseGCSPath splits gs://bucket/object. ok is false for non-GCS paths.
func parseGCSPath(path string) (bucket, object string, ok bool, err error) {
	rest, found := strings.CutPrefix(path, gcsScheme)
	if !found {
		return "", "", false, nil
	}
	bucket, object, _ = strings.Cut(rest, "/")
	if bucket == "" || object == "" {
		return "", "", true, fmt.Errorf("invalid Cloud Storage path %q, expected gs://bucket/object", path)
	}
	return bucket, object, true, nil
}
