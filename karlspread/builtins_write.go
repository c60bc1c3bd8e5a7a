package karlspread

import (
	"strings"

	"gridline/engine"
	"gridline/interpreter"
)

func (h *Host) registerWriteBuiltins() {
	h.define("SET_CELL", h.builtinSetCell)
	h.define("CLEAR_CELL", h.builtinClearCell)
	h.define("SET_RANGE", h.builtinSetRange)
	h.define("CLEAR_RANGE", h.builtinClearRange)
}

// dynamicToCell converts a karl value written via SET_CELL/SET_RANGE into
// the Cell variant it represents: a string beginning with "=" becomes a
// formula, any other string becomes text, a number becomes a Number cell,
// a boolean becomes its "TRUE"/"FALSE" text spelling, and everything else
// falls back to its Inspect() text.
func dynamicToCell(v interpreter.Value) *engine.Cell {
	switch val := v.(type) {
	case nil, *interpreter.Null, *interpreter.Unit:
		return engine.NewEmptyCell()
	case *interpreter.String:
		if strings.HasPrefix(val.Value, "=") {
			return engine.NewScriptCell(val.Value[1:])
		}
		return engine.NewTextCell(val.Value)
	case *interpreter.Integer:
		return engine.NewNumberCell(float64(val.Value))
	case *interpreter.Float:
		return engine.NewNumberCell(val.Value)
	case *interpreter.Boolean:
		if val.Value {
			return engine.NewTextCell("TRUE")
		}
		return engine.NewTextCell("FALSE")
	default:
		return engine.NewTextCell(val.Inspect())
	}
}

// recordWrite mutates the grid at ref to newCell and records the
// modification, preserving the ref's pre-script state across repeated
// writes within one script execution so undo captures the net effect.
func (h *Host) recordWrite(ref engine.CellRef, newCell *engine.Cell) {
	if _, already := h.Modifications[ref]; !already {
		h.Modifications[ref] = &Modification{Old: h.Grid.Get(ref).Clone()}
	}
	h.Modifications[ref].New = newCell
	h.Grid.Set(ref, newCell)
	h.Cache.Delete(ref)
}

func refFromWriteArgs(name string, args []interpreter.Value) (ref engine.CellRef, valueIdx int, err error) {
	if len(args) > 0 {
		if s, ok := args[0].(*interpreter.String); ok {
			parsed, ok := engine.ParseCellRef(s.Value)
			if !ok {
				return engine.CellRef{}, 0, invalidArg(name, 0, "A1-style cell notation", args[0])
			}
			return parsed, 1, nil
		}
	}
	col, err := argUint32(name, args, 0)
	if err != nil {
		return engine.CellRef{}, 0, err
	}
	row, err := argUint32(name, args, 1)
	if err != nil {
		return engine.CellRef{}, 0, err
	}
	return engine.CellRef{Col: col, Row: row}, 2, nil
}

func (h *Host) builtinSetCell(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	ref, valueIdx, err := refFromWriteArgs("SET_CELL", args)
	if err != nil {
		return nil, err
	}
	v, err := argAt("SET_CELL", args, valueIdx)
	if err != nil {
		return nil, err
	}
	h.recordWrite(ref, dynamicToCell(v))
	return interpreter.UnitValue, nil
}

func (h *Host) builtinClearCell(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	ref, _, err := refFromWriteArgs("CLEAR_CELL", args)
	if err != nil {
		return nil, err
	}
	h.recordWrite(ref, engine.NewEmptyCell())
	return interpreter.UnitValue, nil
}

func (h *Host) builtinSetRange(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	c1, r1, c2, r2, err := argRange("SET_RANGE", args)
	if err != nil {
		return nil, err
	}
	v, err := argAt("SET_RANGE", args, 4)
	if err != nil {
		return nil, err
	}
	eachRangeCell(c1, r1, c2, r2, func(ref engine.CellRef) {
		h.recordWrite(ref, dynamicToCell(v))
	})
	return interpreter.UnitValue, nil
}

func (h *Host) builtinClearRange(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	c1, r1, c2, r2, err := argRange("CLEAR_RANGE", args)
	if err != nil {
		return nil, err
	}
	eachRangeCell(c1, r1, c2, r2, func(ref engine.CellRef) {
		h.recordWrite(ref, engine.NewEmptyCell())
	})
	return interpreter.UnitValue, nil
}
