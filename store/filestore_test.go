package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	file := filepath.Join(t.TempDir(), "users.json")
	s, err := NewFileStore(file)
	require.NoError(t, err)
	return s, file
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	t.Parallel()
	s, file := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "users/u1", map[string]any{"username": "alice"}))

	// a fresh instance over the same document sees the data
	s2, err := NewFileStore(file)
	require.NoError(t, err)
	raw, err := s2.Read(ctx, "users/u1/username")
	require.NoError(t, err)
	assert.JSONEq(t, `"alice"`, string(raw))
}

func TestFileStore_DocumentIsValidJSON(t *testing.T) {
	t.Parallel()
	s, file := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "users/u1/days/2026-08-31", map[string]any{"intake": 750}))
	require.NoError(t, s.Merge(ctx, "users/u1/settings", map[string]any{"theme": "aqua"}))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc), "document on disk must always parse")
}

func TestFileStore_MissingFileReadsEmpty(t *testing.T) {
	t.Parallel()
	s, _ := newTestFileStore(t)

	_, err := s.Read(context.Background(), "users")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_CorruptDocumentIsUnavailable(t *testing.T) {
	t.Parallel()
	s, file := newTestFileStore(t)
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o644))

	_, err := s.Read(context.Background(), "users")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestFileStore_AppendAndDelete(t *testing.T) {
	t.Parallel()
	s, _ := newTestFileStore(t)
	ctx := context.Background()

	key, err := s.Append(ctx, "users/u1/days/2026-08-31/entries", map[string]any{"amount_ml": 250})
	require.NoError(t, err)
	require.Len(t, key, 20)

	raw, err := s.Read(ctx, "users/u1/days/2026-08-31/entries/"+key+"/amount_ml")
	require.NoError(t, err)
	assert.JSONEq(t, `250`, string(raw))

	require.NoError(t, s.Delete(ctx, "users/u1/days/2026-08-31"))
	_, err = s.Read(ctx, "users/u1/days/2026-08-31")
	assert.ErrorIs(t, err, ErrNotFound)
}
