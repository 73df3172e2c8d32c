package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore_WriteRead(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()

	err := s.Write(ctx, "users/u1/profile", map[string]any{"age_group": "19-50", "user_goal_ml": 2500})
	require.NoError(t, err)

	raw, err := s.Read(ctx, "users/u1/profile/age_group")
	require.NoError(t, err)
	assert.JSONEq(t, `"19-50"`, string(raw))

	// interior node comes back as the assembled subtree
	raw, err = s.Read(ctx, "users/u1")
	require.NoError(t, err)
	var node map[string]any
	require.NoError(t, json.Unmarshal(raw, &node))
	assert.Contains(t, node, "profile")
}

func TestMemStore_ReadAbsent(t *testing.T) {
	t.Parallel()
	s := NewMemStore()

	_, err := s.Read(context.Background(), "users/nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_InvalidPath(t *testing.T) {
	t.Parallel()
	s := NewMemStore()

	_, err := s.Read(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidPath)

	err = s.Write(context.Background(), "users//u1", 1)
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestMemStore_MergeKeepsSiblings(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "users/u1/days/2026-08-31", map[string]any{
		"intake": 500,
		"date":   "2026-08-31",
	}))
	require.NoError(t, s.Merge(ctx, "users/u1/days/2026-08-31", map[string]any{
		"intake": 750,
	}))

	raw, err := s.Read(ctx, "users/u1/days/2026-08-31")
	require.NoError(t, err)

	var day map[string]any
	require.NoError(t, json.Unmarshal(raw, &day))
	assert.EqualValues(t, 750, day["intake"])
	assert.Equal(t, "2026-08-31", day["date"])
}

func TestMemStore_MergeCreatesNode(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.Merge(ctx, "users/u1/settings", map[string]any{"theme": "dark"}))

	raw, err := s.Read(ctx, "users/u1/settings/theme")
	require.NoError(t, err)
	assert.JSONEq(t, `"dark"`, string(raw))
}

func TestMemStore_MergeNullDeletesField(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "users/u1", map[string]any{"a": 1, "b": 2}))
	require.NoError(t, s.Merge(ctx, "users/u1", map[string]any{"b": nil}))

	_, err := s.Read(ctx, "users/u1/b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_AppendOrdersKeys(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()

	k1, err := s.Append(ctx, "users/u1/days/2026-08-31/entries", map[string]any{"amount_ml": 250})
	require.NoError(t, err)
	k2, err := s.Append(ctx, "users/u1/days/2026-08-31/entries", map[string]any{"amount_ml": 500})
	require.NoError(t, err)

	assert.Len(t, k1, 20)
	assert.Less(t, k1, k2, "push keys must sort in creation order")

	raw, err := s.Read(ctx, "users/u1/days/2026-08-31/entries")
	require.NoError(t, err)
	var entries map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &entries))
	assert.Len(t, entries, 2)
}

func TestMemStore_Delete(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "users/u1/days/2026-08-24", map[string]any{"intake": 100}))
	require.NoError(t, s.Delete(ctx, "users/u1/days/2026-08-24"))

	_, err := s.Read(ctx, "users/u1/days/2026-08-24")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting an absent path is a no-op
	require.NoError(t, s.Delete(ctx, "users/u1/days/2026-08-24"))
}

func TestMemStore_LastWriteWins(t *testing.T) {
	t.Parallel()
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "users/u1/profile", map[string]any{"age_group": "13-18"}))
	require.NoError(t, s.Write(ctx, "users/u1/profile", map[string]any{"age_group": "65+"}))

	raw, err := s.Read(ctx, "users/u1/profile/age_group")
	require.NoError(t, err)
	assert.JSONEq(t, `"65+"`, string(raw))
}
