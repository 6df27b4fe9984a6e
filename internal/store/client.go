package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPath is returned for paths that do not address a document
	// or a subtree of one (e.g. writes to a bare collection).
	ErrInvalidPath = errors.New("store: invalid path")
)

// Client is a path-addressed JSON document store. Paths are slash-separated:
// the first segment names a collection, the second a document key, and any
// further segments address a subtree inside the document
// (e.g. "users/admin@klh,edu,in/profile").
//
// There are no transactions and no conditional writes; concurrent writers to
// the same path race and the last write wins. Failures surface as returned
// errors and the caller decides whether to retry.
type Client interface {
	// Get returns the JSON value at path, or (nil, nil) when absent.
	// A one-segment path reads the whole collection as an object keyed by
	// document id.
	Get(ctx context.Context, path string) (json.RawMessage, error)

	// Set replaces the value at path.
	Set(ctx context.Context, path string, value any) error

	// Update merges fields into the value at path, leaving other fields
	// untouched. Missing documents are created.
	Update(ctx context.Context, path string, fields map[string]any) error

	// Delete removes the value at path.
	Delete(ctx context.Context, path string) error

	// Push creates a child of collection under a server-assigned unique id
	// and returns that id.
	Push(ctx context.Context, collection string, value any) (string, error)

	// Subscribe invokes fn immediately with the current value at path and
	// again after every subsequent change, until the returned function is
	// called. Only collection paths support subscriptions.
	Subscribe(path string, fn func(snapshot json.RawMessage)) (func(), error)
}

// splitPath normalizes and splits a store path into its segments.
func splitPath(path string) ([]string, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	segs := strings.Split(trimmed, "/")
	for _, seg := range segs {
		if seg == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return segs, nil
}
