// Package karlspread binds the karl scripting language to a spreadsheet
// grid: it registers the CELL/VALUE/SUM_RANGE-family read builtins and the
// SET_CELL/CLEAR_CELL-family write builtins that let a formula or a script
// observe and mutate a Document's live state.
package karlspread

import (
	"fmt"

	"gridline/engine"
	"gridline/interpreter"
	"gridline/lexer"
	"gridline/parser"
)

// Modification records one pending write a script made to a cell, keyed by
// ref, holding the previous and new cell so the caller can fold it into an
// undo entry. A write that cleared the cell records an Empty cell as New.
type Modification struct {
	Old *engine.Cell
	New *engine.Cell
}

// Host is a fresh karl evaluator/environment pair with spreadsheet builtins
// bound to one Grid/ValueCache/SpillSources triple, and one mutable
// Modifications map that write builtins append to. A Host is single-use:
// build one per script/formula evaluation via NewHost.
type Host struct {
	Eval          *interpreter.Evaluator
	Env           *interpreter.Environment
	Grid          *engine.Grid
	Cache         *engine.ValueCache
	Spills        *engine.SpillSources
	Modifications map[engine.CellRef]*Modification
}

// NewHost builds a Host bound to grid/cache/spills. allowWrites controls
// whether SET_CELL/CLEAR_CELL/SET_RANGE/CLEAR_RANGE are registered: plain
// formula evaluation never mutates the grid it is reading, only
// Document.ExecuteScript does. funcs, when non-nil, is a previously
// compiled custom-function environment (see Document.LoadFunctions) that
// user-defined functions resolve against once spreadsheet builtins miss.
func NewHost(grid *engine.Grid, cache *engine.ValueCache, spills *engine.SpillSources, allowWrites bool, funcs *interpreter.Environment) *Host {
	base := funcs
	if base == nil {
		base = interpreter.NewBaseEnvironment()
	}
	h := &Host{
		Eval:          interpreter.NewEvaluator(),
		Env:           interpreter.NewEnclosedEnvironment(base),
		Grid:          grid,
		Cache:         cache,
		Spills:        spills,
		Modifications: make(map[engine.CellRef]*Modification),
	}
	h.registerReadBuiltins()
	if allowWrites {
		h.registerWriteBuiltins()
	}
	return h
}

func (h *Host) define(name string, fn interpreter.BuiltinFunction) {
	h.Env.Define(name, &interpreter.Builtin{Name: name, Fn: fn})
}

// EvalFormula parses and evaluates a karl expression/program already
// rewritten by engine.PreprocessScriptWithContext, returning its value.
func (h *Host) EvalFormula(source string) (interpreter.Value, error) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.ErrorsDetailed(); len(errs) > 0 {
		return nil, fmt.Errorf("%s", parser.FormatParseErrors(errs, source, ""))
	}
	val, sig, err := h.Eval.Eval(program, h.Env)
	if err != nil {
		return nil, err
	}
	if sig != nil {
		return nil, fmt.Errorf("break/continue outside loop")
	}
	return val, nil
}
