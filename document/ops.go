package document

import (
	"strconv"
	"strings"

	"gridline/engine"
	"gridline/gridlineerr"
	"gridline/interpreter"
	"gridline/lexer"
	"gridline/parser"
)

// cellFromInput classifies raw user-typed text into the Cell it represents.
func cellFromInput(input string) *engine.Cell {
	switch {
	case input == "":
		return engine.NewEmptyCell()
	case strings.HasPrefix(input, "="):
		return engine.NewScriptCell(input[1:])
	default:
		if n, err := strconv.ParseFloat(input, 64); err == nil {
			return engine.NewNumberCell(n)
		}
		return engine.NewTextCell(input)
	}
}

// SetCellFromInput parses input the way a user typing into ref would,
// tentatively commits it, and checks for a dependency cycle. On a cycle it
// retracts the edit entirely and returns *gridlineerr.ErrCircularDependency
// rather than leaving a half-applied grid.
func (d *Document) SetCellFromInput(ref engine.CellRef, input string) error {
	old := d.grid.Get(ref).Clone()
	newCell := cellFromInput(input)

	d.grid.Set(ref, newCell)
	d.rebuildDependents()

	if newCell.Kind == engine.KindScript {
		if hasCycle, cycle := engine.DetectCycle(ref, d.grid); hasCycle {
			d.grid.Set(ref, old)
			d.rebuildDependents()
			return &gridlineerr.ErrCircularDependency{Cycle: cycleStrings(cycle)}
		}
	}

	for _, removed := range d.spills.RemoveWhereSource(ref) {
		d.cache.Delete(removed)
	}
	d.spills.Delete(ref)
	d.cache.Delete(ref)

	d.markDirty(ref)
	if err := d.evaluateAll(); err != nil {
		return err
	}

	d.pushUndo(undoEntry{Actions: []undoAction{{Ref: ref, OldCell: old, NewCell: newCell.Clone()}}})
	return nil
}

func cycleStrings(cycle []engine.CellRef) []string {
	out := make([]string, len(cycle))
	for i, ref := range cycle {
		out[i] = ref.String()
	}
	return out
}

// ClearCell empties ref, equivalent to SetCellFromInput(ref, "").
func (d *Document) ClearCell(ref engine.CellRef) error {
	return d.SetCellFromInput(ref, "")
}

type dimensionKind int

const (
	dimRow dimensionKind = iota
	dimColumn
)

// InsertRow inserts a blank row at index, shifting every row at or after it
// down by one and rewriting every formula's references accordingly.
func (d *Document) InsertRow(index uint32) error {
	return d.shiftDimension(dimRow, engine.InsertRow, index)
}

// DeleteRow removes the row at index, shifting every row after it up by
// one; formulas that referenced the deleted row collapse to #REF!.
func (d *Document) DeleteRow(index uint32) error {
	return d.shiftDimension(dimRow, engine.DeleteRow, index)
}

// InsertColumn inserts a blank column at index, shifting every column at
// or after it right by one.
func (d *Document) InsertColumn(index uint32) error {
	return d.shiftDimension(dimColumn, engine.InsertColumn, index)
}

// DeleteColumn removes the column at index, shifting every column after it
// left by one; formulas that referenced the deleted column collapse to
// #REF!.
func (d *Document) DeleteColumn(index uint32) error {
	return d.shiftDimension(dimColumn, engine.DeleteColumn, index)
}

func (d *Document) shiftDimension(dim dimensionKind, kind engine.ShiftKind, index uint32) error {
	op := engine.ShiftOperation{Kind: kind, Index: index}

	oldCells := make(map[engine.CellRef]*engine.Cell)
	for _, ref := range d.grid.Refs() {
		oldCells[ref] = d.grid.Get(ref).Clone()
	}

	newGrid := engine.NewGrid()
	for ref, old := range oldCells {
		to, ok := shiftRefPosition(ref, dim, kind, index)
		if !ok {
			continue
		}
		newGrid.Set(to, rewriteCellForShift(old, op))
	}

	newCells := make(map[engine.CellRef]*engine.Cell)
	for _, ref := range newGrid.Refs() {
		newCells[ref] = newGrid.Get(ref)
	}

	actions := diffCells(oldCells, newCells)

	d.grid = newGrid
	d.rebuildDependents()
	d.cache.Clear()
	d.spills.Clear()
	d.grid.Each(func(ref engine.CellRef, cell *engine.Cell) {
		if cell.Kind == engine.KindScript {
			cell.Dirty = true
		}
	})
	if err := d.evaluateAll(); err != nil {
		return err
	}

	d.pushUndo(undoEntry{Actions: actions})
	return nil
}

// diffCells compares two ref->cell snapshots and returns one undoAction per
// ref whose contents changed, covering refs present in either snapshot.
func diffCells(oldCells, newCells map[engine.CellRef]*engine.Cell) []undoAction {
	seen := make(map[engine.CellRef]bool, len(oldCells)+len(newCells))
	var actions []undoAction
	for ref := range oldCells {
		seen[ref] = true
	}
	for ref := range newCells {
		seen[ref] = true
	}
	for ref := range seen {
		old, updated := oldCells[ref], newCells[ref]
		if cellsEqual(old, updated) {
			continue
		}
		actions = append(actions, undoAction{Ref: ref, OldCell: old, NewCell: updated.Clone()})
	}
	return actions
}

func cellsEqual(a, b *engine.Cell) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Kind == b.Kind && a.Text == b.Text && a.Number == b.Number && a.Script == b.Script
}

func shiftRefPosition(ref engine.CellRef, dim dimensionKind, kind engine.ShiftKind, index uint32) (engine.CellRef, bool) {
	switch dim {
	case dimRow:
		switch kind {
		case engine.InsertRow:
			if ref.Row >= index {
				ref.Row++
			}
			return ref, true
		case engine.DeleteRow:
			if ref.Row == index {
				return ref, false
			}
			if ref.Row > index {
				ref.Row--
			}
			return ref, true
		}
	case dimColumn:
		switch kind {
		case engine.InsertColumn:
			if ref.Col >= index {
				ref.Col++
			}
			return ref, true
		case engine.DeleteColumn:
			if ref.Col == index {
				return ref, false
			}
			if ref.Col > index {
				ref.Col--
			}
			return ref, true
		}
	}
	return ref, true
}

// rewriteCellForShift rewrites a Script cell's formula text for a
// structural edit; other cell kinds pass through unchanged. A formula that
// collapses to #REF! downgrades to a Text cell holding "=" + formula, per
// the convention that a broken formula is no longer evaluable but its text
// is preserved for the user to fix.
func rewriteCellForShift(cell *engine.Cell, op engine.ShiftOperation) *engine.Cell {
	if cell == nil || cell.Kind != engine.KindScript {
		return cell.Clone()
	}
	shifted := engine.ShiftFormulaReferences(cell.Script, op)
	if strings.Contains(shifted, "#REF!") {
		return engine.NewTextCell("=" + shifted)
	}
	return engine.NewScriptCell(shifted)
}

// ClipboardCell is one cell of a copied rectangular selection, holding its
// offset from the copy's anchor cell.
type ClipboardCell struct {
	ColOffset, RowOffset int
	Cell                 *engine.Cell
}

// PasteCells writes clip at anchor. Each cell lands at anchor plus its own
// (ColOffset, RowOffset), and a Script cell's references are shifted by that
// same per-cell offset, so a cell at offset (0,0) keeps its formula as is.
// Cells whose target is off the grid are skipped; a formula whose shifted
// references include #REF! is stored as text.
func (d *Document) PasteCells(anchor engine.CellRef, clip []ClipboardCell) error {
	var actions []undoAction
	for _, c := range clip {
		target, ok := offsetRef(anchor, c.ColOffset, c.RowOffset)
		if !ok {
			continue
		}
		old := d.grid.Get(target).Clone()
		newCell := pasteCell(c.Cell, c.ColOffset, c.RowOffset)
		d.grid.Set(target, newCell)
		actions = append(actions, undoAction{Ref: target, OldCell: old, NewCell: newCell.Clone()})
	}

	d.rebuildDependents()
	d.grid.Each(func(ref engine.CellRef, cell *engine.Cell) {
		if cell.Kind == engine.KindScript {
			cell.Dirty = true
		}
	})
	if err := d.evaluateAll(); err != nil {
		return err
	}
	d.pushUndo(undoEntry{Actions: actions})
	return nil
}

func offsetRef(anchor engine.CellRef, colOffset, rowOffset int) (engine.CellRef, bool) {
	col := int64(anchor.Col) + int64(colOffset)
	row := int64(anchor.Row) + int64(rowOffset)
	if col < 0 || row < 0 {
		return engine.CellRef{}, false
	}
	return engine.CellRef{Col: uint32(col), Row: uint32(row)}, true
}

func pasteCell(cell *engine.Cell, colOffset, rowOffset int) *engine.Cell {
	if cell == nil {
		return engine.NewEmptyCell()
	}
	if cell.Kind != engine.KindScript {
		return cell.Clone()
	}
	offset := engine.OffsetFormulaReferences(cell.Script, colOffset, rowOffset)
	if strings.Contains(offset, "#REF!") {
		return engine.NewTextCell("=" + offset)
	}
	return engine.NewScriptCell(offset)
}

// Undo reverts the most recent edit. Returns gridlineerr.ErrNothingToUndo
// if there is nothing to undo.
func (d *Document) Undo() error {
	if len(d.undoStack) == 0 {
		return gridlineerr.ErrNothingToUndo
	}
	entry := d.undoStack[len(d.undoStack)-1]
	d.undoStack = d.undoStack[:len(d.undoStack)-1]

	for _, action := range entry.Actions {
		d.grid.Set(action.Ref, action.OldCell)
	}
	d.afterHistoryApply(entry)
	d.redoStack = append(d.redoStack, entry)
	return nil
}

// Redo reapplies the most recently undone edit. Returns
// gridlineerr.ErrNothingToRedo if there is nothing to redo.
func (d *Document) Redo() error {
	if len(d.redoStack) == 0 {
		return gridlineerr.ErrNothingToRedo
	}
	entry := d.redoStack[len(d.redoStack)-1]
	d.redoStack = d.redoStack[:len(d.redoStack)-1]

	for _, action := range entry.Actions {
		d.grid.Set(action.Ref, action.NewCell)
	}
	d.afterHistoryApply(entry)
	d.undoStack = append(d.undoStack, entry)
	return nil
}

func (d *Document) afterHistoryApply(entry undoEntry) {
	d.rebuildDependents()
	for _, action := range entry.Actions {
		d.cache.Delete(action.Ref)
		d.spills.Delete(action.Ref)
		d.markDirty(action.Ref)
	}
	d.evaluateAll()
	d.modified = true
	d.notifyChanged(entry.Actions)
}

// LoadFunctions compiles source as a library of custom karl function
// definitions and, on success, makes them visible to every subsequent
// formula and script evaluation. A compile failure leaves any previously
// loaded functions in place.
func (d *Document) LoadFunctions(path, source string) error {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()
	if errs := p.ErrorsDetailed(); len(errs) > 0 {
		return &gridlineerr.HostCompileError{Message: parser.FormatParseErrors(errs, source, path)}
	}

	env := interpreter.NewBaseEnvironment()
	eval := interpreter.NewEvaluatorWithSourceAndFilename(source, path)
	_, sig, err := eval.Eval(program, env)
	if err != nil {
		return &gridlineerr.HostCompileError{Message: err.Error()}
	}
	if sig != nil {
		return &gridlineerr.HostCompileError{Message: "break/continue outside loop in functions file"}
	}

	d.functionsPath = path
	d.functionsText = source
	d.functionsEnv = env

	d.grid.Each(func(ref engine.CellRef, cell *engine.Cell) {
		if cell.Kind == engine.KindScript {
			cell.Dirty = true
		}
	})
	return d.evaluateAll()
}

// ReloadFunctions recompiles the most recently loaded functions file.
// Returns gridlineerr.ErrNoFunctionsLoaded if none was ever loaded.
func (d *Document) ReloadFunctions() error {
	if d.functionsPath == "" {
		return gridlineerr.ErrNoFunctionsLoaded
	}
	return d.LoadFunctions(d.functionsPath, d.functionsText)
}
