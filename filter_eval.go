package records

import (
	"fmt"
	"sync"
)

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// MatcherWithEvaluator sets the engine used for Expr nodes.
func MatcherWithEvaluator(e Evaluator) MatcherOption {
	return func(m *Matcher) {
		m.evaluator = e
	}
}

// MatcherWithProgramCache sets the cache used by the default expr engine.
func MatcherWithProgramCache(cache ProgramCache) MatcherOption {
	return func(m *Matcher) {
		m.cache = cache
	}
}

// MatcherWithFunctionRegistry exposes registry functions to the default expr engine.
func MatcherWithFunctionRegistry(registry *FunctionRegistry) MatcherOption {
	return func(m *Matcher) {
		m.registry = registry.Snapshot()
	}
}

// Matcher evaluates filter trees against single records. It holds no record
// state and is safe for concurrent use.
type Matcher struct {
	evaluator Evaluator
	cache     ProgramCache
	registry  *FunctionRegistry

	once sync.Once
}

// NewMatcher constructs a Matcher. Without an evaluator, Expr nodes run on
// expr-lang/expr with a private program cache.
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

var defaultMatcher = NewMatcher()

// Evaluate reports whether record matches filter using the default Matcher.
func Evaluate(record Record, filter Filter) (bool, error) {
	return defaultMatcher.Match(record, filter)
}

// Match reports whether record matches filter. A nil filter matches.
func (m *Matcher) Match(record Record, filter Filter) (bool, error) {
	switch f := filter.(type) {
	case nil:
		return true, nil
	case Property:
		for key, want := range f {
			if !Equal(record[key], want) {
				return false, nil
			}
		}
		return true, nil
	case And:
		for _, child := range f {
			ok, err := m.Match(record, child)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case Or:
		for _, child := range f {
			ok, err := m.Match(record, child)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case Not:
		ok, err := m.Match(record, f.Filter)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case In:
		return contains(f.Values, record[f.Key]), nil
	case NotIn:
		return !contains(f.Values, record[f.Key]), nil
	case IsNull:
		return record[f.Key] == nil, nil
	case IsNotNull:
		return record[f.Key] != nil, nil
	case Between:
		return between(record[f.Key], f.From, f.To), nil
	case NotBetween:
		return outside(record[f.Key], f.From, f.To), nil
	case Gt:
		return compareWith(record[f.Key], f.Value, func(c int) bool { return c > 0 }), nil
	case Gte:
		return compareWith(record[f.Key], f.Value, func(c int) bool { return c >= 0 }), nil
	case Lt:
		return compareWith(record[f.Key], f.Value, func(c int) bool { return c < 0 }), nil
	case Lte:
		return compareWith(record[f.Key], f.Value, func(c int) bool { return c <= 0 }), nil
	case Raw:
		return false, fmt.Errorf("%w: raw query %q", ErrUnsupportedFilter, f.Query)
	case Expr:
		return m.matchExpr(record, f)
	default:
		return false, fmt.Errorf("%w: %T", ErrUnsupportedFilter, filter)
	}
}

func (m *Matcher) matchExpr(record Record, f Expr) (bool, error) {
	evaluator := m.resolveEvaluator()
	if evaluator == nil {
		return false, fmt.Errorf("%w: no evaluator for expression %q", ErrUnsupportedFilter, f.Expression)
	}
	result, err := evaluator.Evaluate(RuleContext{Record: record, Args: f.Args}, f.Expression)
	if err != nil {
		return false, err
	}
	switch v := result.(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	default:
		return false, &EvaluationError{
			Engine: evaluatorEngineName(evaluator),
			Phase:  PhaseResult,
			Expr:   f.Expression,
			Err:    fmt.Errorf("expression returned %T, want bool", result),
		}
	}
}

func (m *Matcher) resolveEvaluator() Evaluator {
	m.once.Do(func() {
		if m.evaluator != nil {
			return
		}
		cache := m.cache
		if cache == nil {
			cache = NewProgramCache()
		}
		m.evaluator = NewExprEvaluator(EngineCache(cache), EngineFunctions(m.registry))
	})
	return m.evaluator
}

func contains(values []any, value any) bool {
	for _, candidate := range values {
		if Equal(candidate, value) {
			return true
		}
	}
	return false
}

func between(value, from, to any) bool {
	lower, ok := Compare(value, from)
	if !ok || lower < 0 {
		return false
	}
	upper, ok := Compare(value, to)
	return ok && upper <= 0
}

func outside(value, from, to any) bool {
	lower, ok := Compare(value, from)
	if !ok {
		return false
	}
	upper, ok := Compare(value, to)
	if !ok {
		return false
	}
	return lower < 0 || upper > 0
}

func compareWith(value, bound any, accept func(int) bool) bool {
	cmp, ok := Compare(value, bound)
	return ok && accept(cmp)
}
