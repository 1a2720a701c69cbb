package records

import (
	"strings"
	"time"

	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/types"
	exprvm "github.com/expr-lang/expr/vm"
)

// exprEngine runs Expr filters on github.com/expr-lang/expr. Programs are
// compiled per expression and record key set: now, args, record and every
// record key are declared in the environment, so they take precedence over
// expr builtins of the same name (now, date, count, len, ...). Identifiers
// that are neither bound nor builtins resolve to nil, so records with missing
// keys simply fail to match.
type exprEngine struct {
	engineConfig
}

// NewExprEvaluator constructs the default expression engine.
func NewExprEvaluator(opts ...EngineOption) Evaluator {
	return &exprEngine{engineConfig: newEngineConfig(opts)}
}

func (e *exprEngine) engine() string { return "expr" }

func (e *exprEngine) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

// Compile checks the syntax up front. Type checking waits for a record,
// since the declared variables depend on its keys.
func (e *exprEngine) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, emptyExpression("expr")
	}
	if _, err := parser.Parse(expression); err != nil {
		return nil, evaluationFailure("expr", PhaseCompile, expression, err)
	}
	return exprRule{engine: e, source: expression}, nil
}

func (e *exprEngine) program(expression string, record Record) (*exprvm.Program, error) {
	keys := boundKeys(record)
	key := "expr\x00" + expression + "\x00" + strings.Join(keys, ",")
	return cachedProgram(e.cache, key, func() (*exprvm.Program, error) {
		return exprlang.Compile(expression, e.compileOptions(keys)...)
	})
}

func (e *exprEngine) compileOptions(keys []string) []exprlang.Option {
	env := types.Map{
		"now":    types.TypeOf(time.Time{}),
		"args":   types.TypeOf(map[string]any{}),
		"record": types.TypeOf(map[string]any{}),
	}
	for _, key := range keys {
		env[key] = types.Any
	}
	if e.functions != nil {
		env["call"] = types.TypeOf(e.call)
	}
	opts := []exprlang.Option{
		exprlang.Env(env),
		exprlang.AllowUndefinedVariables(),
	}
	for _, name := range e.functions.Spellings() {
		if _, shadowed := env[name]; shadowed {
			continue
		}
		fn, _ := e.functions.Lookup(name)
		opts = append(opts, exprlang.Function(name, func(args ...any) (any, error) {
			return fn(args...)
		}))
	}
	return opts
}

func (e *exprEngine) call(name string, args ...any) (any, error) {
	return e.functions.Call(name, args...)
}

func (e *exprEngine) env(ctx RuleContext) map[string]any {
	vars := ruleBindings(ctx)
	if e.functions != nil {
		vars["call"] = e.call
	}
	return vars
}

type exprRule struct {
	engine *exprEngine
	source string
}

func (r exprRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	program, err := r.engine.program(r.source, ctx.Record)
	if err != nil {
		return nil, evaluationFailure("expr", PhaseCompile, r.source, err)
	}
	out, err := exprlang.Run(program, r.engine.env(ctx))
	if err != nil {
		return nil, evaluationFailure("expr", PhaseRun, r.source, err)
	}
	return out, nil
}
