package records

// EngineOption configures one of the expression engines (expr, CEL, JS).
type EngineOption func(*engineConfig)

type engineConfig struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// EngineCache stores compiled programs in cache. Without it every
// evaluation compiles again.
func EngineCache(cache ProgramCache) EngineOption {
	return func(cfg *engineConfig) {
		cfg.cache = cache
	}
}

// EngineFunctions exposes a snapshot of registry to expressions.
func EngineFunctions(registry *FunctionRegistry) EngineOption {
	return func(cfg *engineConfig) {
		cfg.functions = registry.Snapshot()
	}
}

func newEngineConfig(opts []EngineOption) engineConfig {
	var cfg engineConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

var reservedBindings = [...]string{"now", "args", "record"}

func isReservedBinding(name string) bool {
	for _, reserved := range reservedBindings {
		if name == reserved {
			return true
		}
	}
	return false
}

// boundKeys lists the record keys bound as top level variables, sorted.
func boundKeys(record Record) []string {
	keys := make([]string, 0, len(record))
	for _, key := range record.Keys() {
		if !isReservedBinding(key) {
			keys = append(keys, key)
		}
	}
	return keys
}

// ruleBindings flattens ctx into the variables an expression sees: now,
// args, record, then every record key that does not shadow one of those.
func ruleBindings(ctx RuleContext) map[string]any {
	vars := make(map[string]any, len(ctx.Record)+len(reservedBindings))
	for key, value := range ctx.Record {
		if isReservedBinding(key) {
			continue
		}
		vars[key] = value
	}
	vars["now"] = ctx.timestamp()
	vars["args"] = ctx.Args
	vars["record"] = map[string]any(ctx.Record)
	return vars
}

// cachedProgram returns the program cached under key, compiling and storing
// it on a miss. Entries of another type count as misses.
func cachedProgram[P any](cache ProgramCache, key string, compile func() (P, error)) (P, error) {
	if cache != nil {
		if hit, ok := cache.Get(key); ok {
			if program, ok := hit.(P); ok {
				return program, nil
			}
		}
	}
	program, err := compile()
	if err != nil {
		return program, err
	}
	if cache != nil {
		cache.Set(key, program)
	}
	return program, nil
}

type namedEngine interface {
	engine() string
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(namedEngine); ok {
		return named.engine()
	}
	return "custom"
}
