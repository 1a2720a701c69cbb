package records

import (
	"strings"

	celgo "github.com/google/cel-go/cel"
	functions "github.com/google/cel-go/common/functions"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// celEngine runs Expr filters on cel-go. CEL checks identifiers at compile
// time, so every key of the record under test is declared as a dyn variable
// and programs are cached per expression and key set.
type celEngine struct {
	engineConfig
}

// NewCELEvaluator constructs an engine backed by cel-go. Registered
// functions are reachable through call("name", [args...]).
func NewCELEvaluator(opts ...EngineOption) Evaluator {
	return &celEngine{engineConfig: newEngineConfig(opts)}
}

func (e *celEngine) engine() string { return "cel" }

func (e *celEngine) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, emptyExpression("cel")
	}
	ctx = ctx.withDefaults()
	program, err := e.program(expression, ctx.Record)
	if err != nil {
		return nil, evaluationFailure("cel", PhaseCompile, expression, err)
	}
	out, _, err := program.Eval(ruleBindings(ctx))
	if err != nil {
		return nil, evaluationFailure("cel", PhaseRun, expression, err)
	}
	return out.Value(), nil
}

// Compile only parses the source: the variable set is unknown until a
// record is supplied, so type checking happens per evaluation.
func (e *celEngine) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, emptyExpression("cel")
	}
	env, err := e.env(nil)
	if err != nil {
		return nil, evaluationFailure("cel", PhaseCompile, expression, err)
	}
	if _, iss := env.Parse(expression); iss != nil && iss.Err() != nil {
		return nil, evaluationFailure("cel", PhaseCompile, expression, iss.Err())
	}
	return celRule{engine: e, source: expression}, nil
}

func (e *celEngine) program(expression string, record Record) (celgo.Program, error) {
	key := "cel\x00" + expression + "\x00" + strings.Join(boundKeys(record), ",")
	return cachedProgram(e.cache, key, func() (celgo.Program, error) {
		env, err := e.env(record)
		if err != nil {
			return nil, err
		}
		ast, iss := env.Compile(expression)
		if iss != nil && iss.Err() != nil {
			return nil, iss.Err()
		}
		return env.Program(ast)
	})
}

func (e *celEngine) env(record Record) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
		celgo.Variable("record", celgo.DynType),
	}
	for _, key := range boundKeys(record) {
		opts = append(opts, celgo.Variable(key, celgo.DynType))
	}
	if e.functions != nil {
		opts = append(opts, celgo.Function("call", celgo.Overload(
			"call_string_list",
			[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
			celgo.DynType,
			celgo.FunctionBinding(functions.FunctionOp(e.call)),
		)))
	}
	return celgo.NewEnv(opts...)
}

// call serves call(name, [args...]) from the function registry.
func (e *celEngine) call(values ...ref.Val) ref.Val {
	if len(values) != 2 {
		return types.NewErr("call takes a function name and an argument list")
	}
	name, ok := values[0].Value().(string)
	if !ok {
		return types.NewErr("call: function name must be a string")
	}
	list, ok := values[1].(traits.Lister)
	if !ok {
		return types.NewErr("call: arguments must be a list")
	}
	size, _ := list.Size().Value().(int64)
	args := make([]any, 0, size)
	for i := int64(0); i < size; i++ {
		args = append(args, list.Get(types.Int(i)).Value())
	}
	out, err := e.functions.Call(name, args...)
	if err != nil {
		return types.NewErr("%s", err.Error())
	}
	if out == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(out)
}

type celRule struct {
	engine *celEngine
	source string
}

func (r celRule) Evaluate(ctx RuleContext) (any, error) {
	return r.engine.Evaluate(ctx, r.source)
}
