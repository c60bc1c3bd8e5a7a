package interpreter_test

import (
	"testing"

	"gridline/interpreter"
	"gridline/lexer"
	"gridline/parser"
)

func evalProgram(t *testing.T, source string) (interpreter.Value, *interpreter.Evaluator, *interpreter.Environment) {
	t.Helper()
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	eval := interpreter.NewEvaluator()
	env := interpreter.NewBaseEnvironment()
	val, _, err := eval.Eval(program, env)
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	return val, eval, env
}

func TestApplyUserDefinedClosure(t *testing.T) {
	_, eval, env := evalProgram(t, `let double = (x) -> x * 2`)
	fn, ok := env.Get("double")
	if !ok {
		t.Fatal("expected double to be bound in environment")
	}
	result, err := eval.Apply(fn, []interpreter.Value{&interpreter.Integer{Value: 21}})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	i, ok := result.(*interpreter.Integer)
	if !ok || i.Value != 42 {
		t.Errorf("Apply(double, 21) = %v, want 42", result.Inspect())
	}
}

func TestApplyBuiltin(t *testing.T) {
	_, eval, env := evalProgram(t, ``)
	fn, ok := env.Get("abs")
	if !ok {
		t.Fatal("expected abs to be registered as a builtin")
	}
	result, err := eval.Apply(fn, []interpreter.Value{&interpreter.Integer{Value: -5}})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if result.Inspect() != "5" {
		t.Errorf("Apply(abs, -5) = %v, want 5", result.Inspect())
	}
}

func TestApplyPropagatesError(t *testing.T) {
	_, eval, env := evalProgram(t, `let boom = (x) -> x()`)
	fn, _ := env.Get("boom")
	if _, err := eval.Apply(fn, []interpreter.Value{&interpreter.Integer{Value: 1}}); err == nil {
		t.Error("expected Apply to propagate an error when calling a non-function")
	}
}
