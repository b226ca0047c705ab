// Package executor drives compiled statements through a transport:
// reads come back as ordered key/value records with nested relation
// data, writes stamp lifecycle timestamps before compilation. Deletion
// is logical; destroy writes a tombstone instead of removing the row.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sqlbridge/sqlbridge/query/builder"
	"github.com/sqlbridge/sqlbridge/query/sqlgen"
	"github.com/sqlbridge/sqlbridge/runtime/types"
	"github.com/sqlbridge/sqlbridge/schema"
	"github.com/sqlbridge/sqlbridge/transport"
)

// Adapter binds a generator to a transport. Every adapter call owns its
// data; N queries may run concurrently without coordination.
type Adapter struct {
	transport transport.Transport
	gen       *sqlgen.Generator
	logger    *slog.Logger
	now       func() time.Time
	id        string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// WithClock sets the time source used for timestamp stamping.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// NewAdapter creates an adapter compiling for dialect and executing
// over t.
func NewAdapter(t transport.Transport, dialect sqlgen.Dialect, opts ...Option) *Adapter {
	a := &Adapter{
		transport: t,
		gen:       sqlgen.NewGenerator(dialect),
		logger:    slog.Default(),
		now:       time.Now,
		id:        uuid.NewString(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("adapter", a.id)
	return a
}

// Generator returns the adapter's SQL generator.
func (a *Adapter) Generator() *sqlgen.Generator {
	return a.gen
}

// Find compiles options into a SELECT, executes it on the read path and
// maps raw rows into records with nested relation data. The returned
// sequence is finite and not restartable; one execution per call.
func (a *Adapter) Find(ctx context.Context, opts *sqlgen.QueryOptions) ([]*types.KeyMap, error) {
	sqlText, err := a.gen.GenerateSelect(opts)
	if err != nil {
		return nil, err
	}

	start := a.now()
	res, err := a.transport.Execute(ctx, sqlText, transport.Read)
	if err != nil {
		return nil, err
	}

	out := make([]*types.KeyMap, 0, len(res.Rows))
	for _, raw := range res.Rows {
		out = append(out, MapRow(raw))
	}
	a.logger.DebugContext(ctx, "find executed",
		"table", opts.Source.Table,
		"rows", len(out),
		"duration", time.Since(start))
	return out, nil
}

// Query resolves a builder query and finds its rows.
func (a *Adapter) Query(ctx context.Context, q *builder.Query) ([]*types.KeyMap, error) {
	opts, err := q.ToQueryOptions()
	if err != nil {
		return nil, err
	}
	return a.Find(ctx, opts)
}

// Create stamps creation and update timestamps with one instant, then
// inserts the payload and returns the row's identifier. A payload that
// does not carry an identifier falls back to the engine-generated one.
func (a *Adapter) Create(ctx context.Context, desc *schema.Description, payload *types.KeyMap) (string, error) {
	instant := a.now()
	a.stamp(desc, payload, instant, desc.CreatedKey, desc.UpdatedKey)

	sqlText, err := a.gen.GenerateInsert(desc.Table, payload)
	if err != nil {
		return "", err
	}

	res, err := a.transport.Execute(ctx, sqlText, transport.Write)
	if err != nil {
		return "", err
	}

	id := ""
	if v, ok := payload.Get(desc.Identifier.Column); ok {
		id = fmt.Sprintf("%v", v)
	} else {
		id = strconv.FormatInt(res.GeneratedID, 10)
	}
	a.logger.DebugContext(ctx, "create executed", "table", desc.Table, "id", id)
	return id, nil
}

// Update stamps only the update timestamp, then rewrites the payload
// columns of the row matching id.
func (a *Adapter) Update(ctx context.Context, desc *schema.Description, payload *types.KeyMap, id interface{}) error {
	a.stamp(desc, payload, a.now(), desc.UpdatedKey)
	return a.write(ctx, desc, payload, id, "update")
}

// Destroy tombstones the row matching id: it stamps the update and
// deletion timestamps and performs the identical UPDATE shape as
// Update. Rows are never physically removed; reads exclude tombstones
// through the builder's deletion-timestamp constraint.
func (a *Adapter) Destroy(ctx context.Context, desc *schema.Description, payload *types.KeyMap, id interface{}) error {
	a.stamp(desc, payload, a.now(), desc.UpdatedKey, desc.DeletedKey)
	return a.write(ctx, desc, payload, id, "destroy")
}

func (a *Adapter) write(ctx context.Context, desc *schema.Description, payload *types.KeyMap, id interface{}, op string) error {
	sqlText, err := a.gen.GenerateUpdate(desc.Table, payload, desc.Identifier.Column, id)
	if err != nil {
		return err
	}
	if _, err := a.transport.Execute(ctx, sqlText, transport.Write); err != nil {
		return err
	}
	a.logger.DebugContext(ctx, op+" executed", "table", desc.Table)
	return nil
}

// stamp writes instant onto every named lifecycle timestamp the class
// declares. All keys stamped in one call share the same instant.
func (a *Adapter) stamp(desc *schema.Description, payload *types.KeyMap, instant time.Time, keys ...string) {
	value := types.NormalizeValue(instant)
	for _, key := range keys {
		if col, ok := desc.TimestampColumn(key); ok {
			payload.Set(col, value)
		}
	}
}
