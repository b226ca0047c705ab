package builder

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlbridge/sqlbridge/query/sqlgen"
	"github.com/sqlbridge/sqlbridge/runtime/types"
	"github.com/sqlbridge/sqlbridge/schema"
)

func testRegistry() *schema.Registry {
	reg := schema.NewRegistry()
	reg.Register(&schema.Description{
		Class:      "Post",
		Table:      "posts",
		Identifier: schema.Field{Key: "id", Column: "id"},
		Scalars: []schema.Field{
			{Key: "title", Column: "title"},
			{Key: "body", Column: "body"},
			{Key: "status", Column: "status"},
			{Key: "viewCount", Column: "view_count"},
			{Key: "authorId", Column: "author_id"},
		},
		Timestamps: []schema.Field{
			{Key: "createdAt", Column: "created_at"},
			{Key: "updatedAt", Column: "updated_at"},
			{Key: "deletedAt", Column: "deleted_at"},
		},
		Relations: []schema.Relation{
			{Alias: "author", TargetClass: "User", ParentColumn: "author_id", ChildColumn: "id"},
		},
		CreatedKey: "createdAt",
		UpdatedKey: "updatedAt",
		DeletedKey: "deletedAt",
	})
	reg.Register(&schema.Description{
		Class:      "User",
		Table:      "users",
		Identifier: schema.Field{Key: "id", Column: "id"},
		Scalars: []schema.Field{
			{Key: "name", Column: "name"},
			{Key: "email", Column: "email"},
		},
	})
	return reg
}

func newPostQuery(t *testing.T) *Query {
	t.Helper()
	q, err := NewQuery("Post", testRegistry())
	require.NoError(t, err)
	return q
}

func TestNewQueryUnknownClass(t *testing.T) {
	_, err := NewQuery("Ghost", testRegistry())
	assert.True(t, errors.Is(err, types.ErrInvalidKey))
}

func TestDefaultSelection(t *testing.T) {
	opts, err := newPostQuery(t).ToQueryOptions()
	require.NoError(t, err)

	aliases := make([]string, 0, len(opts.Columns))
	for _, c := range opts.Columns {
		aliases = append(aliases, c.Alias)
	}
	assert.Equal(t,
		[]string{"id", "title", "body", "status", "viewCount", "authorId", "createdAt", "updatedAt", "deletedAt"},
		aliases)
}

func TestSelectProjection(t *testing.T) {
	opts, err := newPostQuery(t).Select("title", "status").ToQueryOptions()
	require.NoError(t, err)

	require.Len(t, opts.Columns, 2)
	assert.Equal(t, sqlgen.Column{Key: "posts.title", Alias: "title"}, opts.Columns[0])
	assert.Equal(t, sqlgen.Column{Key: "posts.status", Alias: "status"}, opts.Columns[1])
}

func TestSelectEmptyFails(t *testing.T) {
	_, err := newPostQuery(t).Select().ToQueryOptions()
	assert.True(t, errors.Is(err, types.ErrMissingConfiguration))
}

func TestSelectUnknownKeyFails(t *testing.T) {
	_, err := newPostQuery(t).Select("password").ToQueryOptions()
	assert.True(t, errors.Is(err, types.ErrInvalidKey))
}

func TestConstrainUnknownKeyFails(t *testing.T) {
	q := newPostQuery(t).EqualTo("password", "x")
	assert.True(t, errors.Is(q.Err(), types.ErrInvalidKey))

	_, err := q.ToQueryOptions()
	assert.True(t, errors.Is(err, types.ErrInvalidKey))
}

func TestIncludeAppendsRelationColumns(t *testing.T) {
	opts, err := newPostQuery(t).Select("title").Include("author").ToQueryOptions()
	require.NoError(t, err)

	aliases := make([]string, 0, len(opts.Columns))
	for _, c := range opts.Columns {
		aliases = append(aliases, c.Alias)
	}
	// Relation columns are appended regardless of selection state.
	assert.Equal(t, []string{"title", "author.id", "author.name", "author.email"}, aliases)

	require.Len(t, opts.Relations, 1)
	assert.Equal(t, sqlgen.Relation{
		Alias:        "author",
		Table:        "users",
		ParentColumn: "author_id",
		ChildColumn:  "id",
	}, opts.Relations[0])
}

func TestIncludeUnknownRelationFails(t *testing.T) {
	q := newPostQuery(t).Include("editor")
	assert.True(t, errors.Is(q.Err(), types.ErrInvalidKey))
}

func TestSkipLimitValidation(t *testing.T) {
	q := newPostQuery(t).Skip(-1)
	assert.True(t, errors.Is(q.Err(), types.ErrValidation))

	q = newPostQuery(t).Limit(-1)
	assert.True(t, errors.Is(q.Err(), types.ErrValidation))

	q = newPostQuery(t).Skip(0).Limit(0)
	assert.NoError(t, q.Err())
}

func TestConstraintNormalization(t *testing.T) {
	at := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	opts, err := newPostQuery(t).
		EqualTo("status", true).
		GreaterThan("createdAt", at).
		ToQueryOptions()
	require.NoError(t, err)

	cs := opts.Constraints.Get("posts.status")
	require.Len(t, cs, 1)
	assert.Equal(t, 1, cs[0].Value)

	cs = opts.Constraints.Get("posts.created_at")
	require.Len(t, cs, 1)
	assert.Equal(t, "2024-03-15 12:30:00", cs[0].Value)
}

func TestConstraintKeysResolveToColumns(t *testing.T) {
	// Physical columns are qualified with the source alias so joined
	// statements never carry ambiguous references.
	opts, err := newPostQuery(t).GreaterThan("viewCount", 100).ToQueryOptions()
	require.NoError(t, err)
	assert.True(t, opts.Constraints.Has("posts.view_count"))

	opts, err = newPostQuery(t).Contains("title|body", "go").ToQueryOptions()
	require.NoError(t, err)
	assert.True(t, opts.Constraints.Has("posts.title|posts.body"))
}

func TestTombstoneExclusion(t *testing.T) {
	opts, err := newPostQuery(t).ToQueryOptions()
	require.NoError(t, err)

	cs := opts.Constraints.Get("posts.deleted_at")
	require.Len(t, cs, 1)
	assert.Equal(t, types.KindExists, cs[0].Kind)
	assert.Equal(t, false, cs[0].Value)
}

func TestTombstoneExclusionSkippedWhenConstrained(t *testing.T) {
	opts, err := newPostQuery(t).Exists("deletedAt").ToQueryOptions()
	require.NoError(t, err)

	cs := opts.Constraints.Get("posts.deleted_at")
	require.Len(t, cs, 1)
	assert.Equal(t, true, cs[0].Value)
}

func TestToQueryOptionsIsRepeatable(t *testing.T) {
	q := newPostQuery(t).EqualTo("status", "published")

	first, err := q.ToQueryOptions()
	require.NoError(t, err)
	second, err := q.ToQueryOptions()
	require.NoError(t, err)

	// Each call yields independently-scoped options; the tombstone
	// constraint must not accumulate on the builder.
	assert.Len(t, first.Constraints.Get("posts.deleted_at"), 1)
	assert.Len(t, second.Constraints.Get("posts.deleted_at"), 1)
}

func TestSortTokens(t *testing.T) {
	opts, err := newPostQuery(t).SortBy("title").SortByDescending("createdAt").ToQueryOptions()
	require.NoError(t, err)
	assert.Equal(t, []string{"posts.title", "-posts.created_at"}, opts.Sorting)
}

func TestSortUnknownKeyFails(t *testing.T) {
	q := newPostQuery(t).SortBy("password")
	assert.True(t, errors.Is(q.Err(), types.ErrInvalidKey))
}

func TestWhereNested(t *testing.T) {
	opts, err := newPostQuery(t).Where(map[string]interface{}{
		"status": "published",
		"viewCount": map[string]interface{}{
			"greaterThan": 10,
			"lessThan":    100,
		},
		"body": map[string]interface{}{"doesNotExist": true},
	}).ToQueryOptions()
	require.NoError(t, err)

	assert.Len(t, opts.Constraints.Get("posts.status"), 1)
	cs := opts.Constraints.Get("posts.view_count")
	require.Len(t, cs, 2)
	assert.Equal(t, types.KindGreaterThan, cs[0].Kind)
	assert.Equal(t, types.KindLessThan, cs[1].Kind)

	cs = opts.Constraints.Get("posts.body")
	require.Len(t, cs, 1)
	assert.Equal(t, types.KindExists, cs[0].Kind)
	assert.Equal(t, false, cs[0].Value)
}

func TestWhereUnknownOperatorFails(t *testing.T) {
	q := newPostQuery(t).Where(map[string]interface{}{
		"status": map[string]interface{}{"sounds": "like"},
	})
	assert.True(t, errors.Is(q.Err(), types.ErrForbiddenOperation))
}

func TestFirstErrorWins(t *testing.T) {
	q := newPostQuery(t).EqualTo("password", "x").Skip(-1)
	assert.True(t, errors.Is(q.Err(), types.ErrInvalidKey))
}

func TestPublishedPostsScenario(t *testing.T) {
	opts, err := newPostQuery(t).
		EqualTo("status", "published").
		SortByDescending("createdAt").
		Limit(10).
		ToQueryOptions()
	require.NoError(t, err)

	sql, err := sqlgen.NewGenerator(sqlgen.MySQLDialect{}).GenerateSelect(opts)
	require.NoError(t, err)

	assert.Contains(t, sql, "`posts`.`status` = 'published'")
	assert.Contains(t, sql, "`posts`.`created_at` DESC")
	assert.Contains(t, sql, "LIMIT 0, 10")
	assert.Contains(t, sql, "`posts`.`deleted_at` IS NULL")
}

func TestIncludedJoinHasNoAmbiguousColumns(t *testing.T) {
	// posts and users both own an "id" column; every base-table
	// reference must come out alias-qualified or the join would not
	// execute.
	opts, err := newPostQuery(t).
		Include("author").
		SortByDescending("createdAt").
		ToQueryOptions()
	require.NoError(t, err)

	sql, err := sqlgen.NewGenerator(sqlgen.MySQLDialect{}).GenerateSelect(opts)
	require.NoError(t, err)

	assert.Contains(t, sql, "SELECT `posts`.`id` AS `id`")
	assert.Contains(t, sql, "`author`.`id` AS `author.id`")
	assert.Contains(t, sql, "ORDER BY `posts`.`created_at` DESC")
	assert.Contains(t, sql, "WHERE `posts`.`deleted_at` IS NULL")
	assert.NotContains(t, sql, "SELECT `id`")
	assert.NotContains(t, sql, " `created_at`")
	assert.NotContains(t, sql, " `deleted_at`")
}
