package store

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPushKey_LengthAndUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		k := NewPushKey()
		assert.Len(t, k, 20)
		assert.False(t, seen[k], "push keys must be unique")
		seen[k] = true
	}
}

func TestNewPushKey_ChronologicalOrder(t *testing.T) {
	keys := make([]string, 100)
	for i := range keys {
		keys[i] = NewPushKey()
	}
	sorted := append([]string{}, keys...)
	sort.Strings(sorted)
	assert.Equal(t, sorted, keys, "generation order must equal lexicographic order")
}
