package records

import (
	"context"
	"sort"
	"strings"

	"github.com/goliatone/go-records/pkg/activity"
)

// Validator reports whether an instance is acceptable. A false result with
// a nil error is a plain validation failure.
type Validator func(ctx context.Context, instance *Instance) (bool, error)

// Config declares one record shape and the default scope of its Model.
// TableName, Init and Connector are required.
type Config struct {
	TableName string
	// Init returns the attribute seed of built instances. Unless Keys is
	// set, its keys are the attribute keys of the Model.
	Init func() Record
	// Keys overrides the keys derived from Init.
	Keys []string
	// Identifier names the identifier attribute, "id" when empty.
	Identifier string
	// KeyType selects identifier assignment, KeyTypeNumber when empty.
	KeyType KeyType

	Filter Filter
	// Limit of zero means unbounded.
	Limit int
	Skip  int
	Order []Order

	Connector  Connector
	Validators []Validator
}

// Validate checks the required fields and pagination bounds.
func (c Config) Validate() error {
	if strings.TrimSpace(c.TableName) == "" {
		return ErrTableRequired
	}
	if c.Init == nil {
		return ErrInitRequired
	}
	if c.Connector == nil {
		return ErrConnectorRequired
	}
	if c.Limit < 0 {
		return invalidArgument("limit must be a positive integer, got %d", c.Limit)
	}
	if c.Skip < 0 {
		return invalidArgument("skip must not be negative, got %d", c.Skip)
	}
	switch c.KeyType {
	case "", KeyTypeNumber, KeyTypeUUID:
	default:
		return invalidArgument("unknown key type %q", c.KeyType)
	}
	return nil
}

// Model is an immutable handle over one table. Chain methods return a new
// Model carrying a derived Scope; the receiver is never modified, so a Model
// may be shared freely between goroutines.
type Model struct {
	scope      Scope
	init       func() Record
	identifier string
	keyType    KeyType
	connector  Connector
	validators []Validator
	logger     Logger
	emitter    *activity.Emitter
	err        error
}

// New builds a Model from cfg.
func New(cfg Config, opts ...Option) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	settings := applyOptions(opts)

	identifier := strings.TrimSpace(cfg.Identifier)
	if identifier == "" {
		identifier = DefaultIdentifier
	}
	keyType := cfg.KeyType
	if keyType == "" {
		keyType = KeyTypeNumber
	}

	keys := cfg.Keys
	if len(keys) == 0 {
		keys = cfg.Init().Keys()
	}

	scope := NewScope(cfg.TableName, attributeKeys(keys, identifier))
	scope.Filter = cfg.Filter
	if cfg.Limit > 0 {
		scope.Limit = cfg.Limit
	}
	scope.Skip = cfg.Skip
	scope.Order = append([]Order(nil), cfg.Order...)

	return &Model{
		scope:      scope,
		init:       cfg.Init,
		identifier: identifier,
		keyType:    keyType,
		connector:  cfg.Connector,
		validators: append([]Validator(nil), cfg.Validators...),
		logger:     settings.logger,
		emitter:    settings.emitter(),
	}, nil
}

// attributeKeys dedupes keys, drops the identifier and sorts the result.
func attributeKeys(keys []string, identifier string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" || key == identifier {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func (m *Model) with(scope Scope) *Model {
	next := *m
	next.scope = scope
	return &next
}

func (m *Model) withErr(scope Scope, err error) *Model {
	next := m.with(scope)
	if err != nil && next.err == nil {
		next.err = err
	}
	return next
}

// FilterBy narrows the scope to records also matching f.
func (m *Model) FilterBy(f Filter) *Model { return m.with(m.scope.FilterBy(f)) }

// OrFilterBy widens the scope to records matching the current filter or f.
func (m *Model) OrFilterBy(f Filter) *Model { return m.with(m.scope.OrFilterBy(f)) }

// Query is an alias of FilterBy.
func (m *Model) Query(f Filter) *Model { return m.FilterBy(f) }

// OnlyQuery replaces the current filter with f.
func (m *Model) OnlyQuery(f Filter) *Model { return m.with(m.scope.OnlyFilter(f)) }

// Unfiltered removes the filter.
func (m *Model) Unfiltered() *Model { return m.with(m.scope.Unfiltered()) }

// LimitBy caps the result size. A non positive n is recorded as an error
// returned by Err and by every terminal operation of the derived Model.
func (m *Model) LimitBy(n int) *Model {
	scope, err := m.scope.LimitBy(n)
	return m.withErr(scope, err)
}

// Unlimited removes the limit.
func (m *Model) Unlimited() *Model { return m.with(m.scope.Unlimited()) }

// SkipBy skips the first n matches. A negative n is recorded like LimitBy.
func (m *Model) SkipBy(n int) *Model {
	scope, err := m.scope.SkipBy(n)
	return m.withErr(scope, err)
}

// Unskipped resets skip.
func (m *Model) Unskipped() *Model { return m.with(m.scope.Unskipped()) }

// OrderBy appends sort keys.
func (m *Model) OrderBy(orders ...Order) *Model { return m.with(m.scope.OrderBy(orders...)) }

// Reorder replaces the sort keys.
func (m *Model) Reorder(orders ...Order) *Model { return m.with(m.scope.Reorder(orders...)) }

// Unordered clears the sort keys.
func (m *Model) Unordered() *Model { return m.with(m.scope.Unordered()) }

// Err returns the first chain error recorded on m.
func (m *Model) Err() error { return m.err }

// Scope returns a copy of the current scope.
func (m *Model) Scope() Scope { return m.scope.clone() }

func (m *Model) TableName() string  { return m.scope.TableName }
func (m *Model) Filter() Filter     { return m.scope.Filter }
func (m *Model) Limit() int         { return m.scope.Limit }
func (m *Model) Skip() int          { return m.scope.Skip }
func (m *Model) Order() []Order     { return append([]Order(nil), m.scope.Order...) }
func (m *Model) Keys() []string     { return append([]string(nil), m.scope.Keys...) }
func (m *Model) Identifier() string { return m.identifier }
func (m *Model) KeyType() KeyType   { return m.keyType }
func (m *Model) Connector() Connector {
	return m.connector
}
