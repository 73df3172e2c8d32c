// Package store is the persistence adapter. All durable state lives in one
// document tree addressed by slash-delimited paths (users/<uid>/profile, ...);
// callers never see which backend holds the tree.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means the path has no value. Callers treat it as "zero",
	// not as a failure.
	ErrNotFound = errors.New("store: path not found")
	// ErrUnavailable means the backend could not serve the request
	// (transport failure, timeout, non-2xx). Callers decide the fallback.
	ErrUnavailable = errors.New("store: backend unavailable")
	ErrInvalidPath = errors.New("store: invalid path")
)

// Adapter presents the same four operations regardless of backing store.
// Guarantee is last-write-wins only; there are no transactions across paths.
type Adapter interface {
	// Read returns the value at path. Interior nodes come back as the
	// assembled subtree object.
	Read(ctx context.Context, path string) (json.RawMessage, error)
	// Write replaces the node and everything under it.
	Write(ctx context.Context, path string, value any) error
	// Merge shallow-merges the top-level fields of partial into the node,
	// creating it if absent.
	Merge(ctx context.Context, path string, partial any) error
	// Append stores value under a generated chronologically-ordered child
	// key and returns that key.
	Append(ctx context.Context, path string, value any) (string, error)
	// Delete removes the node and its subtree. Deleting an absent path is
	// a no-op.
	Delete(ctx context.Context, path string) error
	// Backend names the implementation for logs and metrics.
	Backend() string
}

// splitPath validates and splits "users/alice/profile" into segments.
func splitPath(path string) ([]string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, ErrInvalidPath
	}
	segs := strings.Split(path, "/")
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return segs, nil
}

// toTree round-trips an arbitrary value through JSON so the in-memory tree
// only ever holds map[string]any, []any and scalars.
func toTree(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// getNode walks the tree; nil and false when any segment is missing.
func getNode(root map[string]any, segs []string) (any, bool) {
	var cur any = root
	for _, s := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[s]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// setNode writes value at segs, materializing interior objects and
// overwriting any non-object node on the way down.
func setNode(root map[string]any, segs []string, value any) {
	cur := root
	for _, s := range segs[:len(segs)-1] {
		next, ok := cur[s].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[s] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value
}

// mergeNode shallow-merges partial into the object at segs.
func mergeNode(root map[string]any, segs []string, partial map[string]any) {
	existing, ok := getNode(root, segs)
	obj, isObj := existing.(map[string]any)
	if !ok || !isObj {
		obj = map[string]any{}
	}
	for k, v := range partial {
		if v == nil {
			delete(obj, k) // Firebase semantics: null deletes the field
			continue
		}
		obj[k] = v
	}
	setNode(root, segs, obj)
}

// deleteNode removes the node at segs; empty interior objects are left in
// place, Read treats them the same as absent.
func deleteNode(root map[string]any, segs []string) {
	if len(segs) == 1 {
		delete(root, segs[0])
		return
	}
	parent, ok := getNode(root, segs[:len(segs)-1])
	if m, isObj := parent.(map[string]any); ok && isObj {
		delete(m, segs[len(segs)-1])
	}
}

type leaf struct {
	path  string
	value json.RawMessage
}

// flatten decomposes a tree value into scalar leaves for row-per-leaf
// backends. Arrays are kept as single leaves.
func flatten(prefix string, value any) ([]leaf, error) {
	obj, isObj := value.(map[string]any)
	if !isObj || len(obj) == 0 {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		return []leaf{{path: prefix, value: raw}}, nil
	}
	var leaves []leaf
	for k, v := range obj {
		sub, err := flatten(prefix+"/"+k, v)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, sub...)
	}
	return leaves, nil
}

// assemble rebuilds a subtree from leaves whose paths are relative to the
// queried node.
func assemble(leaves []leaf) (any, error) {
	root := map[string]any{}
	for _, l := range leaves {
		segs, err := splitPath(l.path)
		if err != nil {
			return nil, err
		}
		var v any
		if err := json.Unmarshal(l.value, &v); err != nil {
			return nil, err
		}
		setNode(root, segs, v)
	}
	return root, nil
}
