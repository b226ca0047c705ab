package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraintMapAccumulatesPerKey(t *testing.T) {
	m := NewConstraintMap()
	m.Set("age", KindGreaterThan, 18)
	m.Set("age", KindLessThan, 65)
	m.Set("name", KindEqualTo, "a")

	assert.Equal(t, []string{"age", "name"}, m.Keys())

	cs := m.Get("age")
	require.Len(t, cs, 2)
	assert.Equal(t, KindGreaterThan, cs[0].Kind)
	assert.Equal(t, KindLessThan, cs[1].Kind)
}

func TestConstraintMapNeverDeduplicates(t *testing.T) {
	m := NewConstraintMap()
	m.Set("age", KindGreaterThan, 18)
	m.Set("age", KindGreaterThan, 18)

	// Issuing the same constraint twice yields a redundant but harmless
	// repeated predicate.
	assert.Len(t, m.Get("age"), 2)
	assert.Equal(t, 1, m.Len())
}

func TestKindNamesRoundTrip(t *testing.T) {
	for kind, name := range kindNames {
		resolved, ok := KindFromName(name)
		require.True(t, ok, name)
		assert.Equal(t, kind, resolved)
		assert.Equal(t, name, kind.String())
	}

	_, ok := KindFromName("swallowsCoconut")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Kind(99).String())
}
