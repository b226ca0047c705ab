package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlbridge/sqlbridge/runtime/types"
)

func TestMapRowNestsRelationColumns(t *testing.T) {
	raw := types.NewKeyMap()
	raw.Set("id", 1)
	raw.Set("name", "a")
	raw.Set("author.id", 2)
	raw.Set("author.name", "b")

	got := MapRow(raw)

	assert.Equal(t, []string{"id", "name", "author"}, got.Keys())

	v, ok := got.Get("author")
	require.True(t, ok)
	author, ok := v.(*types.KeyMap)
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name"}, author.Keys())

	id, _ := author.Get("id")
	assert.Equal(t, 2, id)
	name, _ := author.Get("name")
	assert.Equal(t, "b", name)
}

func TestMapRowMultipleRelations(t *testing.T) {
	raw := types.NewKeyMap()
	raw.Set("id", 1)
	raw.Set("author.id", 2)
	raw.Set("editor.id", 3)
	raw.Set("author.name", "b")

	got := MapRow(raw)
	assert.Equal(t, []string{"id", "author", "editor"}, got.Keys())

	v, _ := got.Get("author")
	author := v.(*types.KeyMap)
	assert.Equal(t, []string{"id", "name"}, author.Keys())
}

func TestMapRowWithoutPrefixes(t *testing.T) {
	raw := types.NewKeyMap()
	raw.Set("id", 1)
	raw.Set("title", "hello")

	got := MapRow(raw)
	assert.Equal(t, []string{"id", "title"}, got.Keys())
	v, _ := got.Get("title")
	assert.Equal(t, "hello", v)
}

func TestMapRowScalarShadowingRelationAlias(t *testing.T) {
	// A scalar column named like a relation alias loses to the relation
	// record, whichever side the driver returns first.
	raw := types.NewKeyMap()
	raw.Set("author", "shadow")
	raw.Set("author.id", 2)

	got := MapRow(raw)
	v, ok := got.Get("author")
	require.True(t, ok)
	author, ok := v.(*types.KeyMap)
	require.True(t, ok)
	id, _ := author.Get("id")
	assert.Equal(t, 2, id)

	raw = types.NewKeyMap()
	raw.Set("author.id", 2)
	raw.Set("author", "shadow")

	got = MapRow(raw)
	v, ok = got.Get("author")
	require.True(t, ok)
	_, ok = v.(*types.KeyMap)
	assert.True(t, ok)
}

func TestMapRowDegenerateKeys(t *testing.T) {
	raw := types.NewKeyMap()
	raw.Set(".leading", 1)
	raw.Set("trailing.", 2)

	// Keys with an empty alias or column side stay flat.
	got := MapRow(raw)
	assert.Equal(t, []string{".leading", "trailing."}, got.Keys())
}
