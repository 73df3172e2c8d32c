package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemStore keeps the tree in process memory. Development default and the
// backend the tests run against.
type MemStore struct {
	mu   sync.RWMutex
	tree map[string]any
}

func NewMemStore() *MemStore {
	return &MemStore{tree: map[string]any{}}
}

func (s *MemStore) Backend() string { return "memory" }

func (s *MemStore) Read(ctx context.Context, path string) (json.RawMessage, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := getNode(s.tree, segs)
	if !ok || node == nil {
		return nil, ErrNotFound
	}
	if m, isObj := node.(map[string]any); isObj && len(m) == 0 {
		return nil, ErrNotFound
	}
	return json.Marshal(node)
}

func (s *MemStore) Write(ctx context.Context, path string, value any) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	v, err := toTree(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	setNode(s.tree, segs, v)
	return nil
}

func (s *MemStore) Merge(ctx context.Context, path string, partial any) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	v, err := toTree(partial)
	if err != nil {
		return err
	}
	obj, isObj := v.(map[string]any)
	if !isObj {
		return s.Write(ctx, path, partial)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	mergeNode(s.tree, segs, obj)
	return nil
}

func (s *MemStore) Append(ctx context.Context, path string, value any) (string, error) {
	key := NewPushKey()
	if err := s.Write(ctx, path+"/"+key, value); err != nil {
		return "", err
	}
	return key, nil
}

func (s *MemStore) Delete(ctx context.Context, path string) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	deleteNode(s.tree, segs)
	return nil
}
