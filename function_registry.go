package records

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Function is a callable exposed to filter expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry holds the functions that Expr filters may call, either
// directly by name or through call(name, ...). Lookup, Call and call(...)
// ignore case. Direct calls are bound under the registered spelling and its
// lower case form only, so a function registered as "Double" answers to
// Double(n) and double(n) but not DOUBLE(n).
type FunctionRegistry struct {
	mu    sync.RWMutex
	funcs map[string]registeredFunction
}

type registeredFunction struct {
	spelling string
	fn       Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{funcs: map[string]registeredFunction{}}
}

// Register binds fn to name. The name must be a plain identifier, must not
// collide with a bound variable (now, args, record, call) and may only be
// registered once.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return invalidArgument("function %q is nil", name)
	}
	key := strings.ToLower(name)
	if !isIdentifier(key) {
		return invalidArgument("function name %q is not an identifier", name)
	}
	if isReservedBinding(key) || key == "call" {
		return invalidArgument("function name %q is reserved", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.funcs == nil {
		r.funcs = map[string]registeredFunction{}
	}
	if _, taken := r.funcs[key]; taken {
		return invalidArgument("function %q already registered", name)
	}
	r.funcs[key] = registeredFunction{spelling: name, fn: fn}
	return nil
}

// MustRegister is Register for package level setup; it panics on error.
func (r *FunctionRegistry) MustRegister(name string, fn Function) *FunctionRegistry {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the function bound to name.
func (r *FunctionRegistry) Lookup(name string) (Function, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	entry, ok := r.funcs[strings.ToLower(name)]
	r.mu.RUnlock()
	return entry.fn, ok
}

// Call runs the function bound to name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("records: unknown function %q", name)
	}
	return fn(args...)
}

// Names lists registered names in lower case, sorted.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Spellings lists the names direct calls are bound under: every registered
// spelling plus its lower case form, sorted and without duplicates.
func (r *FunctionRegistry) Spellings() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs)*2)
	for key, entry := range r.funcs {
		names = append(names, key)
		if entry.spelling != key {
			names = append(names, entry.spelling)
		}
	}
	sort.Strings(names)
	return names
}

// Len reports how many functions are registered.
func (r *FunctionRegistry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.funcs)
}

// Snapshot copies the registry. Engines and matchers hold snapshots so that
// compiled programs never see functions registered after construction.
func (r *FunctionRegistry) Snapshot() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := &FunctionRegistry{funcs: make(map[string]registeredFunction, len(r.funcs))}
	for key, entry := range r.funcs {
		out.funcs[key] = entry
	}
	return out
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
