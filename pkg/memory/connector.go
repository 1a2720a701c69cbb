package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	records "github.com/goliatone/go-records"
	"github.com/goliatone/go-records/layering"
)

// Storage maps table names to records in insertion order.
type Storage map[string][]records.Record

// Option configures a Connector.
type Option func(*config)

type config struct {
	matcherOpts []records.MatcherOption
}

// WithEvaluator sets the engine used for Expr filters.
func WithEvaluator(e records.Evaluator) Option {
	return func(cfg *config) {
		cfg.matcherOpts = append(cfg.matcherOpts, records.MatcherWithEvaluator(e))
	}
}

// WithFunctionRegistry exposes registry functions to Expr filters.
func WithFunctionRegistry(registry *records.FunctionRegistry) Option {
	return func(cfg *config) {
		cfg.matcherOpts = append(cfg.matcherOpts, records.MatcherWithFunctionRegistry(registry))
	}
}

// WithProgramCache shares compiled Expr programs across connectors.
func WithProgramCache(cache records.ProgramCache) Option {
	return func(cfg *config) {
		cfg.matcherOpts = append(cfg.matcherOpts, records.MatcherWithProgramCache(cache))
	}
}

// Connector is the in-memory records.Connector.
type Connector struct {
	mu      sync.Mutex
	storage Storage
	matcher *records.Matcher
}

var _ records.Connector = (*Connector)(nil)

// NewConnector returns a connector over storage. A nil storage starts empty.
func NewConnector(storage Storage, opts ...Option) *Connector {
	if storage == nil {
		storage = Storage{}
	}
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Connector{
		storage: storage,
		matcher: records.NewMatcher(cfg.matcherOpts...),
	}
}

// Storage returns the backing map.
func (c *Connector) Storage() Storage { return c.storage }

// matching returns the indexes of the table records matching the scope
// filter, in insertion order.
func (c *Connector) matching(table []records.Record, scope records.Scope) ([]int, error) {
	indexes := make([]int, 0, len(table))
	for idx, record := range table {
		ok, err := c.matcher.Match(record, scope.Filter)
		if err != nil {
			return nil, err
		}
		if ok {
			indexes = append(indexes, idx)
		}
	}
	return indexes, nil
}

// window filters, orders, skips and limits the table for scope.
func (c *Connector) window(scope records.Scope) ([]records.Record, error) {
	table := c.storage[scope.TableName]
	indexes, err := c.matching(table, scope)
	if err != nil {
		return nil, err
	}
	if len(scope.Order) > 0 {
		sort.SliceStable(indexes, func(a, b int) bool {
			return less(table[indexes[a]], table[indexes[b]], scope.Order)
		})
	}
	start, end := scope.Window(len(indexes))
	out := make([]records.Record, 0, end-start)
	for _, idx := range indexes[start:end] {
		out = append(out, table[idx].Clone())
	}
	return out, nil
}

func (c *Connector) Query(ctx context.Context, scope records.Scope) ([]records.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.window(scope)
}

func (c *Connector) Count(ctx context.Context, scope records.Scope) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	indexes, err := c.matching(c.storage[scope.TableName], scope)
	if err != nil {
		return 0, err
	}
	return len(indexes), nil
}

func (c *Connector) Select(ctx context.Context, scope records.Scope, keys ...string) ([][]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, err := c.window(scope)
	if err != nil {
		return nil, err
	}
	out := make([][]any, 0, len(rows))
	for _, row := range rows {
		values := make([]any, len(keys))
		for i, key := range keys {
			values[i] = row[key]
		}
		out = append(out, values)
	}
	return out, nil
}

// UpdateAll writes attrs into the matching stored records in place.
func (c *Connector) UpdateAll(ctx context.Context, scope records.Scope, attrs records.Record) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	table := c.storage[scope.TableName]
	indexes, err := c.matching(table, scope)
	if err != nil {
		return 0, err
	}
	for _, idx := range indexes {
		if table[idx] == nil {
			table[idx] = records.Record{}
		}
		for key, value := range attrs {
			table[idx][key] = layering.Clone(value)
		}
	}
	return len(indexes), nil
}

func (c *Connector) DeleteAll(ctx context.Context, scope records.Scope) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	table := c.storage[scope.TableName]
	indexes, err := c.matching(table, scope)
	if err != nil {
		return 0, err
	}
	if len(indexes) == 0 {
		return 0, nil
	}
	drop := make(map[int]struct{}, len(indexes))
	for _, idx := range indexes {
		drop[idx] = struct{}{}
	}
	kept := make([]records.Record, 0, len(table)-len(indexes))
	for idx, record := range table {
		if _, ok := drop[idx]; !ok {
			kept = append(kept, record)
		}
	}
	c.storage[scope.TableName] = kept
	return len(indexes), nil
}

// Create appends the instance record, assigning an identifier unless the
// instance already carries one.
func (c *Connector) Create(ctx context.Context, instance *records.Instance) (*records.Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model := instance.Model()
	table := model.TableName()
	identifier := model.Identifier()

	c.mu.Lock()
	defer c.mu.Unlock()

	record := instance.Record()
	if record[identifier] == nil {
		record[identifier] = nextID(c.storage[table], identifier, model.KeyType())
	}
	c.storage[table] = append(c.storage[table], record)
	return model.Hydrate(record), nil
}

// Update replaces the stored record sharing the instance identifier.
func (c *Connector) Update(ctx context.Context, instance *records.Instance) (*records.Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model := instance.Model()
	table := model.TableName()

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := indexOf(c.storage[table], model.Identifier(), instance.ID())
	if idx < 0 {
		return nil, notFound(table, instance.ID())
	}
	record := instance.Record()
	c.storage[table][idx] = record
	return model.Hydrate(record), nil
}

// Delete removes the stored record sharing the instance identifier.
func (c *Connector) Delete(ctx context.Context, instance *records.Instance) (*records.Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model := instance.Model()
	table := model.TableName()

	c.mu.Lock()
	defer c.mu.Unlock()

	rows := c.storage[table]
	idx := indexOf(rows, model.Identifier(), instance.ID())
	if idx < 0 {
		return nil, notFound(table, instance.ID())
	}
	kept := make([]records.Record, 0, len(rows)-1)
	kept = append(kept, rows[:idx]...)
	kept = append(kept, rows[idx+1:]...)
	c.storage[table] = kept
	return instance, nil
}

// Execute is not supported: there is no query language to run.
func (c *Connector) Execute(ctx context.Context, query string, _ ...any) ([]records.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: memory connector cannot execute %q", records.ErrUnsupportedOperation, query)
}

func indexOf(rows []records.Record, identifier string, id any) int {
	if id == nil {
		return -1
	}
	for idx, row := range rows {
		if records.Equal(row[identifier], id) {
			return idx
		}
	}
	return -1
}

func nextID(rows []records.Record, identifier string, keyType records.KeyType) any {
	if keyType == records.KeyTypeUUID {
		return uuid.NewString()
	}
	var highest int64
	for _, row := range rows {
		if id, ok := records.AsInt64(row[identifier]); ok && id > highest {
			highest = id
		}
	}
	return highest + 1
}

func notFound(table string, id any) error {
	return fmt.Errorf("%w: %s id %v", records.ErrNotFound, table, id)
}
