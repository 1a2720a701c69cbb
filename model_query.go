package records

import (
	"context"
	"time"

	"github.com/goliatone/go-records/layering"
)

// Batch loads one group of records produced by InBatchesOf.
type Batch func(ctx context.Context) ([]*Instance, error)

// observe wraps err with the operation and table and reports the call to the
// configured Logger.
func (m *Model) observe(op string, start time.Time, rows int, err error) error {
	err = wrapOperationError(op, m.scope.TableName, err)
	m.logger.LogOperation(OperationLogEvent{
		Operation: op,
		Table:     m.scope.TableName,
		Rows:      rows,
		Duration:  time.Since(start),
		Err:       err,
	})
	return err
}

func (m *Model) query(ctx context.Context, op string, scope Scope) ([]*Instance, error) {
	start := time.Now()
	if m.err != nil {
		return nil, m.observe(op, start, 0, m.err)
	}
	rows, err := m.connector.Query(ctx, scope)
	if err != nil {
		return nil, m.observe(op, start, 0, err)
	}
	instances := make([]*Instance, 0, len(rows))
	for _, row := range rows {
		instances = append(instances, m.Hydrate(row))
	}
	return instances, m.observe(op, start, len(instances), nil)
}

// All returns every record in scope.
func (m *Model) All(ctx context.Context) ([]*Instance, error) {
	return m.query(ctx, "all", m.scope)
}

// First returns the first record in scope, or nil when nothing matches.
func (m *Model) First(ctx context.Context) (*Instance, error) {
	scope := m.scope.clone()
	scope.Limit = 1
	instances, err := m.query(ctx, "first", scope)
	if err != nil || len(instances) == 0 {
		return nil, err
	}
	return instances[0], nil
}

// Find returns the record in scope whose identifier equals id. Skip and limit
// are ignored. ErrNotFound is returned when no such record exists.
func (m *Model) Find(ctx context.Context, id any) (*Instance, error) {
	scope := m.scope.FilterBy(Property{m.identifier: id}).Unskipped()
	scope.Limit = 1
	instances, err := m.query(ctx, "find", scope)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, wrapOperationError("find", m.scope.TableName, ErrNotFound)
	}
	return instances[0], nil
}

// FindBy returns the first record in scope also matching f, or nil.
func (m *Model) FindBy(ctx context.Context, f Filter) (*Instance, error) {
	return m.FilterBy(f).First(ctx)
}

// Count returns the number of records matching the filter. Skip and limit
// are ignored.
func (m *Model) Count(ctx context.Context) (int, error) {
	start := time.Now()
	if m.err != nil {
		return 0, m.observe("count", start, 0, m.err)
	}
	count, err := m.connector.Count(ctx, m.scope)
	if err != nil {
		return 0, m.observe("count", start, 0, err)
	}
	return count, m.observe("count", start, count, nil)
}

// Select returns the values of keys for every record in scope.
func (m *Model) Select(ctx context.Context, keys ...string) ([][]any, error) {
	start := time.Now()
	if m.err != nil {
		return nil, m.observe("select", start, 0, m.err)
	}
	if len(keys) == 0 {
		return nil, m.observe("select", start, 0, invalidArgument("select needs at least one key"))
	}
	rows, err := m.connector.Select(ctx, m.scope, keys...)
	if err != nil {
		return nil, m.observe("select", start, 0, err)
	}
	return rows, m.observe("select", start, len(rows), nil)
}

// Pluck returns the value of key for every record in scope.
func (m *Model) Pluck(ctx context.Context, key string) ([]any, error) {
	rows, err := m.Select(ctx, key)
	if err != nil {
		return nil, err
	}
	values := make([]any, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			values = append(values, nil)
			continue
		}
		values = append(values, row[0])
	}
	return values, nil
}

// UpdateAll merges attrs into every record matching the filter and returns
// how many were updated. Keys outside the Model keys are dropped.
func (m *Model) UpdateAll(ctx context.Context, attrs Record) (int, error) {
	start := time.Now()
	if m.err != nil {
		return 0, m.observe("update_all", start, 0, m.err)
	}
	restricted := Record(layering.Restrict(attrs, m.scope.Keys))
	count, err := m.connector.UpdateAll(ctx, m.scope, restricted)
	if err != nil {
		return 0, m.observe("update_all", start, 0, err)
	}
	return count, m.observe("update_all", start, count, nil)
}

// DeleteAll removes every record matching the filter and returns how many
// were removed.
func (m *Model) DeleteAll(ctx context.Context) (int, error) {
	start := time.Now()
	if m.err != nil {
		return 0, m.observe("delete_all", start, 0, m.err)
	}
	count, err := m.connector.DeleteAll(ctx, m.scope)
	if err != nil {
		return 0, m.observe("delete_all", start, 0, err)
	}
	return count, m.observe("delete_all", start, count, nil)
}

// Execute passes a backend specific query to the connector.
func (m *Model) Execute(ctx context.Context, query string, bindings ...any) ([]Record, error) {
	start := time.Now()
	rows, err := m.connector.Execute(ctx, query, bindings...)
	if err != nil {
		return nil, m.observe("execute", start, 0, err)
	}
	return rows, m.observe("execute", start, len(rows), nil)
}

// InBatchesOf splits the records in scope into consecutive groups of at most
// size records, preserving order. The records are read once, when
// InBatchesOf is called, so writes made while walking the batches do not
// shift later batches.
func (m *Model) InBatchesOf(ctx context.Context, size int) ([]Batch, error) {
	start := time.Now()
	if m.err != nil {
		return nil, m.observe("in_batches", start, 0, m.err)
	}
	if size <= 0 {
		return nil, m.observe("in_batches", start, 0, invalidArgument("batch size must be a positive integer, got %d", size))
	}
	rows, err := m.connector.Query(ctx, m.scope)
	if err != nil {
		return nil, m.observe("in_batches", start, 0, err)
	}

	batches := make([]Batch, 0, (len(rows)+size-1)/size)
	for offset := 0; offset < len(rows); offset += size {
		group := rows[offset:min(offset+size, len(rows))]
		batches = append(batches, func(ctx context.Context) ([]*Instance, error) {
			if err := ctx.Err(); err != nil {
				return nil, wrapOperationError("batch", m.scope.TableName, err)
			}
			instances := make([]*Instance, 0, len(group))
			for _, row := range group {
				instances = append(instances, m.Hydrate(row))
			}
			return instances, nil
		})
	}
	return batches, m.observe("in_batches", start, len(rows), nil)
}

// Build returns a new, unsaved instance. Attributes are layered from the
// Init seed, then the equality values of the scope filter found through And nodes, then attrs.
// Keys outside the Model keys are dropped.
func (m *Model) Build(attrs Record) *Instance {
	var seed Record
	if m.init != nil {
		seed = m.init()
	}
	merged := layering.MergeMaps(attrs, scopedAttributes(m.scope.Filter), seed)
	return &Instance{
		model:      m,
		attributes: Record(layering.Restrict(merged, m.scope.Keys)),
	}
}

// Create builds an instance from attrs and saves it.
func (m *Model) Create(ctx context.Context, attrs Record) (*Instance, error) {
	return m.Build(attrs).Save(ctx)
}

// Hydrate wraps a stored record in a persisted instance. The identifier is
// read from the identifier key; the other keys are restricted to the Model
// keys.
func (m *Model) Hydrate(record Record) *Instance {
	attributes := Record(layering.Restrict(record, m.scope.Keys))
	return &Instance{
		model:      m,
		id:         record[m.identifier],
		attributes: attributes,
		persistent: cloneRecord(attributes),
	}
}

// scopedAttributes collects the Property values reachable from f through
// And nodes only. Later entries win.
func scopedAttributes(f Filter) map[string]any {
	out := map[string]any{}
	var collect func(Filter)
	collect = func(node Filter) {
		switch n := node.(type) {
		case Property:
			for key, value := range n {
				out[key] = value
			}
		case And:
			for _, child := range n {
				collect(child)
			}
		}
	}
	collect(f)
	return out
}
