package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyMapPreservesInsertionOrder(t *testing.T) {
	m := NewKeyMap()
	m.Set("c", 3)
	m.Set("a", 1)
	m.Set("b", 2)

	assert.Equal(t, []string{"c", "a", "b"}, m.Keys())
	assert.Equal(t, []interface{}{3, 1, 2}, m.Values())

	pairs := m.Pairs()
	require.Len(t, pairs, 3)
	assert.Equal(t, Pair{Key: "c", Value: 3}, pairs[0])
}

func TestKeyMapOverwriteKeepsPosition(t *testing.T) {
	m := NewKeyMap()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 10)

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, m.Len())
}

func TestKeyMapRemove(t *testing.T) {
	m := NewKeyMap()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	m.Remove("b")
	assert.Equal(t, []string{"a", "c"}, m.Keys())
	assert.False(t, m.Has("b"))

	// Removing an absent key is a no-op.
	m.Remove("b")
	assert.Equal(t, 2, m.Len())
}
