package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the whole tree in one JSON document on disk, loaded fully
// on every operation and rewritten atomically on every mutation. Suits a
// single process; concurrent processes would race on the rename.
type FileStore struct {
	mu   sync.Mutex
	file string
}

func NewFileStore(file string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &FileStore{file: file}, nil
}

func (s *FileStore) Backend() string { return "file" }

func (s *FileStore) load() (map[string]any, error) {
	data, err := os.ReadFile(s.file)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	tree := map[string]any{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: corrupt document: %v", ErrUnavailable, err)
	}
	return tree, nil
}

// save writes to a temp file in the same directory and renames it over the
// document so readers never observe a half-written tree.
func (s *FileStore) save(tree map[string]any) error {
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.file), ".users-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := os.Rename(tmp.Name(), s.file); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *FileStore) Read(ctx context.Context, path string) (json.RawMessage, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.load()
	if err != nil {
		return nil, err
	}
	node, ok := getNode(tree, segs)
	if !ok || node == nil {
		return nil, ErrNotFound
	}
	if m, isObj := node.(map[string]any); isObj && len(m) == 0 {
		return nil, ErrNotFound
	}
	return json.Marshal(node)
}

func (s *FileStore) Write(ctx context.Context, path string, value any) error {
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

	tree, err := s.load()
	if err != nil {
		return err
	}
	setNode(tree, segs, v)
	return s.save(tree)
}

func (s *FileStore) Merge(ctx context.Context, path string, partial any) error {
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

	tree, err := s.load()
	if err != nil {
		return err
	}
	mergeNode(tree, segs, obj)
	return s.save(tree)
}

func (s *FileStore) Append(ctx context.Context, path string, value any) (string, error) {
	key := NewPushKey()
	if err := s.Write(ctx, path+"/"+key, value); err != nil {
		return "", err
	}
	return key, nil
}

func (s *FileStore) Delete(ctx context.Context, path string) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.load()
	if err != nil {
		return err
	}
	deleteNode(tree, segs)
	return s.save(tree)
}
