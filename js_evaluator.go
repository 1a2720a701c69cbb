//go:build js_eval

package records

import (
	"github.com/dop251/goja"
)

// jsEngine runs Expr filters as JavaScript on goja. Every evaluation gets a
// fresh runtime; compiled programs are shared.
type jsEngine struct {
	engineConfig
}

// NewJSEvaluator constructs an engine backed by goja. Registered functions
// are bound as globals and through call(name, ...).
func NewJSEvaluator(opts ...EngineOption) Evaluator {
	return &jsEngine{engineConfig: newEngineConfig(opts)}
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return true
}

func (e *jsEngine) engine() string { return "js" }

func (e *jsEngine) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *jsEngine) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, emptyExpression("js")
	}
	program, err := cachedProgram(e.cache, "js\x00"+expression, func() (*goja.Program, error) {
		return goja.Compile("", "(function(){ return ("+expression+"); })()", false)
	})
	if err != nil {
		return nil, evaluationFailure("js", PhaseCompile, expression, err)
	}
	return jsRule{engine: e, program: program, source: expression}, nil
}

func (e *jsEngine) runtime(ctx RuleContext) (*goja.Runtime, error) {
	vm := goja.New()
	globals := ruleBindings(ctx)
	if e.functions != nil {
		globals["call"] = func(name string, args ...any) (any, error) {
			return e.functions.Call(name, args...)
		}
		for _, name := range e.functions.Spellings() {
			if _, shadowed := globals[name]; shadowed {
				continue
			}
			fn, _ := e.functions.Lookup(name)
			globals[name] = func(args ...any) (any, error) {
				return fn(args...)
			}
		}
	}
	for name, value := range globals {
		if err := vm.Set(name, value); err != nil {
			return nil, err
		}
	}
	return vm, nil
}

type jsRule struct {
	engine  *jsEngine
	program *goja.Program
	source  string
}

func (r jsRule) Evaluate(ctx RuleContext) (any, error) {
	vm, err := r.engine.runtime(ctx.withDefaults())
	if err != nil {
		return nil, evaluationFailure("js", PhaseRun, r.source, err)
	}
	value, err := vm.RunProgram(r.program)
	if err != nil {
		return nil, evaluationFailure("js", PhaseRun, r.source, err)
	}
	return value.Export(), nil
}
