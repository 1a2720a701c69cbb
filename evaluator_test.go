package records

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func doubleRegistry(t *testing.T) *FunctionRegistry {
	t.Helper()
	registry := NewFunctionRegistry()
	err := registry.Register("Double", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("double expects one argument, got %d", len(args))
		}
		n, ok := AsInt64(args[0])
		if !ok {
			return nil, fmt.Errorf("double expects an integer, got %T", args[0])
		}
		return n * 2, nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return registry
}

func TestFunctionRegistry(t *testing.T) {
	registry := doubleRegistry(t)
	if err := registry.Register("double", func(...any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("names are case insensitive and unique")
	}
	for _, name := range []string{"nil", "", "2x", "has space", "now", "Record", "call"} {
		fn := Function(func(...any) (any, error) { return nil, nil })
		if name == "nil" {
			fn = nil
		}
		if err := registry.Register(name, fn); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("Register(%q) = %v, want ErrInvalidArgument", name, err)
		}
	}

	snapshot := registry.Snapshot()
	registry.MustRegister("late", func(...any) (any, error) { return 1, nil })
	if got := snapshot.Names(); len(got) != 1 || got[0] != "double" {
		t.Fatalf("snapshot should not see later registrations, got %v", got)
	}
	if registry.Len() != 2 || snapshot.Len() != 1 {
		t.Fatalf("Len = %d/%d", registry.Len(), snapshot.Len())
	}
	if _, ok := registry.Lookup("LATE"); !ok {
		t.Fatalf("lookup should ignore case")
	}

	out, err := registry.Call("DOUBLE", 21)
	if err != nil || out != int64(42) {
		t.Fatalf("Call = %v, %v", out, err)
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatalf("expected error for unknown function")
	}
}

func TestExprEvaluator(t *testing.T) {
	cache := NewProgramCache()
	evaluator := NewExprEvaluator(EngineCache(cache), EngineFunctions(doubleRegistry(t)))
	ctx := RuleContext{Record: Record{"n": 4, "name": "ada"}}

	for i := 0; i < 2; i++ {
		out, err := evaluator.Evaluate(ctx, `double(n) == 8 && record.name == "ada"`)
		if err != nil || out != true {
			t.Fatalf("Evaluate = %v, %v", out, err)
		}
	}
	if _, ok := cache.Get("expr\x00" + `double(n) == 8 && record.name == "ada"` + "\x00n,name"); !ok {
		t.Fatalf("compiled program should be cached per key set")
	}

	rule, err := evaluator.Compile(`now > args.since`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	out, err := rule.Evaluate(RuleContext{
		Now:  &now,
		Args: map[string]any{"since": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	if err != nil || out != true {
		t.Fatalf("compiled rule = %v, %v", out, err)
	}

	if _, err := evaluator.Evaluate(ctx, ""); !errors.Is(err, ErrEmptyExpression) {
		t.Fatalf("empty expressions must fail, got %v", err)
	}
	_, err = evaluator.Compile(`n +`)
	var compileErr *EvaluationError
	if !errors.As(err, &compileErr) || compileErr.Phase != PhaseCompile {
		t.Fatalf("expected compile phase error, got %v", err)
	}
	if got := evaluatorEngineName(evaluator); got != "expr" {
		t.Fatalf("engine name = %q", got)
	}
}

func TestExprEvaluatorBindingsShadowBuiltins(t *testing.T) {
	evaluator := NewExprEvaluator(EngineCache(NewProgramCache()))
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		record Record
		expr   string
	}{
		{"date key", Record{"date": "x"}, `date == "x"`},
		{"count key", Record{"count": 3}, `count == 3`},
		{"len key", Record{"len": 2}, `len == 2`},
		{"bound now", Record{}, `now == args.at`},
		{"builtin still usable", Record{"tags": []any{"a", "b"}}, `len(tags) == 2`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := evaluator.Evaluate(RuleContext{
				Record: tc.record,
				Args:   map[string]any{"at": now},
				Now:    &now,
			}, tc.expr)
			if err != nil || out != true {
				t.Fatalf("Evaluate(%s) = %v, %v", tc.expr, out, err)
			}
		})
	}

	rule, err := evaluator.Compile(`date == "x"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	for _, record := range []Record{{"date": "x"}, {"date": "x", "other": 1}} {
		if out, err := rule.Evaluate(RuleContext{Record: record}); err != nil || out != true {
			t.Fatalf("compiled rule over %v = %v, %v", record, out, err)
		}
	}
}

func TestExprEvaluatorDirectCallSpellings(t *testing.T) {
	evaluator := NewExprEvaluator(EngineFunctions(doubleRegistry(t)))
	ctx := RuleContext{Record: Record{"n": 4}}

	for _, expr := range []string{`Double(n) == 8`, `double(n) == 8`, `call("DOUBLE", n) == 8`} {
		out, err := evaluator.Evaluate(ctx, expr)
		if err != nil || out != true {
			t.Fatalf("Evaluate(%s) = %v, %v", expr, out, err)
		}
	}
	if got := doubleRegistry(t).Spellings(); len(got) != 2 || got[0] != "Double" || got[1] != "double" {
		t.Fatalf("Spellings = %v", got)
	}
}

func TestCELEvaluator(t *testing.T) {
	evaluator := NewCELEvaluator(EngineCache(NewProgramCache()), EngineFunctions(doubleRegistry(t)))
	ctx := RuleContext{Record: Record{"n": 4, "name": "ada"}, Args: map[string]any{"min": 2}}

	out, err := evaluator.Evaluate(ctx, `call("double", [n]) == 8 && n > args.min && name == "ada"`)
	if err != nil || out != true {
		t.Fatalf("Evaluate = %v, %v", out, err)
	}

	rule, err := evaluator.Compile(`name.startsWith("a")`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if out, err := rule.Evaluate(ctx); err != nil || out != true {
		t.Fatalf("compiled rule = %v, %v", out, err)
	}

	_, err = evaluator.Evaluate(ctx, `missing == 1`)
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) || evalErr.Engine != "cel" || evalErr.Phase != PhaseCompile {
		t.Fatalf("expected cel EvaluationError for undeclared variable, got %v", err)
	}
}

func TestRuleBindingsKeepReservedNames(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	vars := ruleBindings(RuleContext{
		Record: Record{"now": "shadow", "name": "ada"},
		Args:   map[string]any{},
		Now:    &now,
	})
	if vars["now"] != now {
		t.Fatalf("record keys must not shadow now, got %v", vars["now"])
	}
	if vars["name"] != "ada" {
		t.Fatalf("record keys should be bound, got %v", vars["name"])
	}
	record, _ := vars["record"].(map[string]any)
	if record["now"] != "shadow" {
		t.Fatalf("shadowed keys stay reachable through record, got %v", record)
	}
}

func TestJSEvaluatorAvailability(t *testing.T) {
	if JSEvaluatorAvailable() {
		if NewJSEvaluator() == nil {
			t.Fatalf("js evaluator reported available but constructor returned nil")
		}
		return
	}
	if NewJSEvaluator() != nil {
		t.Fatalf("js evaluator must be nil without the js_eval tag")
	}
}
