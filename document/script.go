package document

import (
	"gridline/engine"
	"gridline/gridlineerr"
	"gridline/interpreter"
	"gridline/karlspread"
	"gridline/lexer"
	"gridline/parser"
)

// ScriptContext carries the caller's cursor/selection state into a script,
// exposed to the script body as pre-bound constants (CURSOR_ROW, CURSOR_COL,
// HAS_SELECTION, SEL_START_COL, SEL_START_ROW, SEL_END_COL, SEL_END_ROW)
// rather than as function arguments, so a script can stay a plain top-level
// sequence of statements.
type ScriptContext struct {
	CursorRef     engine.CellRef
	HasSelection  bool
	SelectionFrom engine.CellRef
	SelectionTo   engine.CellRef
}

func (c ScriptContext) declarations() string {
	decls := "let CURSOR_COL = " + itoa(c.CursorRef.Col) + "\n" +
		"let CURSOR_ROW = " + itoa(c.CursorRef.Row) + "\n" +
		"let HAS_SELECTION = " + boolLit(c.HasSelection) + "\n"
	if c.HasSelection {
		decls += "let SEL_START_COL = " + itoa(c.SelectionFrom.Col) + "\n" +
			"let SEL_START_ROW = " + itoa(c.SelectionFrom.Row) + "\n" +
			"let SEL_END_COL = " + itoa(c.SelectionTo.Col) + "\n" +
			"let SEL_END_ROW = " + itoa(c.SelectionTo.Row) + "\n"
	}
	return decls
}

func itoa(n uint32) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}

func boolLit(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// ScriptResult reports what ExecuteScript did: how many cells it touched
// and the value its final expression produced.
type ScriptResult struct {
	CellsModified int
	ReturnValue   interpreter.Value
}

// ExecuteScript compiles and runs source as a one-shot karl script with
// read and write access to the grid. Per §9, context declarations are
// concatenated with the script body and evaluated as a single program: a
// script variable named the same as a context constant therefore shadows
// it rather than conflicting. Every SET_CELL/CLEAR_CELL/SET_RANGE/
// CLEAR_RANGE call the script makes lands in the grid immediately and is
// folded into one batch undo entry once the script finishes successfully;
// a failed script's partial writes are rolled back.
func (d *Document) ExecuteScript(source string, ctx ScriptContext) (ScriptResult, error) {
	full := ctx.declarations() + source

	l := lexer.New(full)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.ErrorsDetailed(); len(errs) > 0 {
		return ScriptResult{}, &gridlineerr.HostCompileError{Message: parser.FormatParseErrors(errs, full, "")}
	}

	host := karlspread.NewHost(d.grid, d.cache, d.spills, true, d.functionsEnv)
	val, sig, err := host.Eval.Eval(program, host.Env)
	if err != nil {
		d.rollbackModifications(host.Modifications)
		return ScriptResult{}, &gridlineerr.HostEvalError{Message: err.Error()}
	}
	if sig != nil {
		d.rollbackModifications(host.Modifications)
		return ScriptResult{}, &gridlineerr.HostEvalError{Message: "break/continue outside loop in script"}
	}

	var actions []undoAction
	for ref, mod := range host.Modifications {
		actions = append(actions, undoAction{Ref: ref, OldCell: mod.Old, NewCell: mod.New.Clone()})
		d.cache.Delete(ref)
		d.spills.Delete(ref)
	}

	d.rebuildDependents()
	for ref := range host.Modifications {
		d.markDirty(ref)
	}
	if err := d.evaluateAll(); err != nil {
		return ScriptResult{}, err
	}

	d.pushUndo(undoEntry{Actions: actions})

	return ScriptResult{CellsModified: len(host.Modifications), ReturnValue: val}, nil
}

func (d *Document) rollbackModifications(mods map[engine.CellRef]*karlspread.Modification) {
	for ref, mod := range mods {
		d.grid.Set(ref, mod.Old)
	}
	if len(mods) > 0 {
		d.rebuildDependents()
	}
}
