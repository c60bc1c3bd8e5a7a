// Package document implements the transactional spreadsheet edit API: cell
// assignment with cycle rejection, structural row/column edits, paste,
// bounded undo/redo, custom-function loading, file I/O, and the
// ExecuteScript entry point that lets an out-of-band script read and
// write the grid in one transaction.
package document

import (
	"gridline/engine"
	"gridline/interpreter"
	"gridline/karlspread"
)

// maxUndoStack bounds how many edits can be undone; the oldest entry is
// dropped once the stack would grow past this.
const maxUndoStack = 100

// undoAction is the inverse of one cell write: restoring OldCell at Ref
// undoes it, restoring NewCell at Ref redoes it.
type undoAction struct {
	Ref      engine.CellRef
	OldCell  *engine.Cell
	NewCell  *engine.Cell
}

// undoEntry groups one or more undoActions that must be applied together,
// e.g. every cell ExecuteScript touched in one call.
type undoEntry struct {
	Actions []undoAction
}

// Document owns one spreadsheet's full live state: the grid, the derived
// caches the evaluator shares with karlspread builtins, the reverse
// dependency index, undo/redo history, and any custom functions loaded
// alongside it.
type Document struct {
	grid         *engine.Grid
	cache        *engine.ValueCache
	spills       *engine.SpillSources
	dependents   map[engine.CellRef][]engine.CellRef

	undoStack []undoEntry
	redoStack []undoEntry

	filePath      string
	modified      bool
	functionsPath string
	functionsText string
	functionsEnv  *interpreter.Environment

	onChange []func(ref engine.CellRef, display string)
}

// New returns an empty Document.
func New() *Document {
	return &Document{
		grid:       engine.NewGrid(),
		cache:      engine.NewValueCache(),
		spills:     engine.NewSpillSources(),
		dependents: make(map[engine.CellRef][]engine.CellRef),
	}
}

// Grid exposes the live grid for read-only inspection (e.g. rendering a UI
// or a liveview snapshot).
func (d *Document) Grid() *engine.Grid { return d.grid }

// Modified reports whether the document has unsaved changes.
func (d *Document) Modified() bool { return d.modified }

// FilePath returns the path the document was last loaded from or saved to.
func (d *Document) FilePath() string { return d.filePath }

// SetFilePath associates path with the document without writing anything,
// so a later bare SaveFile("") knows where to write.
func (d *Document) SetFilePath(path string) { d.filePath = path }

// Display returns the current rendered text of ref.
func (d *Document) Display(ref engine.CellRef) string {
	return engine.Display(ref, d.grid, d.cache, d.spills)
}

func (d *Document) rebuildDependents() {
	dependents := make(map[engine.CellRef][]engine.CellRef)
	d.grid.Each(func(ref engine.CellRef, cell *engine.Cell) {
		if cell.Kind != engine.KindScript {
			return
		}
		for _, dep := range cell.DependsOn {
			dependents[dep] = append(dependents[dep], ref)
		}
	})
	d.dependents = dependents
}

// markDirty flags ref and every transitive dependent of ref as dirty, by
// breadth-first walk of the reverse dependency index.
func (d *Document) markDirty(ref engine.CellRef) {
	visited := map[engine.CellRef]bool{}
	queue := []engine.CellRef{ref}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if cell := d.grid.Get(cur); cell != nil {
			cell.Dirty = true
		}
		queue = append(queue, d.dependents[cur]...)
	}
}

// evaluateAll runs EvaluateDirty with a fresh, read-only karlspread Host
// per cell, so every evaluation sees the latest committed grid state and
// the custom functions currently loaded.
func (d *Document) evaluateAll() error {
	_, err := engine.EvaluateDirty(d.grid, d.cache, d.spills, func(ref engine.CellRef, formula string) (engine.EvalResult, error) {
		return d.evalOne(ref, formula)
	})
	return err
}

func (d *Document) evalOne(ref engine.CellRef, formula string) (engine.EvalResult, error) {
	host := karlspread.NewHost(d.grid, d.cache, d.spills, false, d.functionsEnv)
	source := engine.PreprocessScriptWithContext(formula, &ref)
	val, err := host.EvalFormula(source)
	if err != nil {
		return engine.EvalResult{}, err
	}
	if arr, ok := val.(*interpreter.Array); ok {
		return engine.EvalResult{Array: arr.Elements}, nil
	}
	return engine.EvalResult{Scalar: val}, nil
}

func (d *Document) pushUndo(entry undoEntry) {
	if len(entry.Actions) == 0 {
		return
	}
	d.undoStack = append(d.undoStack, entry)
	if len(d.undoStack) > maxUndoStack {
		d.undoStack = d.undoStack[len(d.undoStack)-maxUndoStack:]
	}
	d.redoStack = nil
	d.modified = true
	d.notifyChanged(entry.Actions)
}

// OnChange registers fn to be called with the post-commit display text of
// every cell a successful edit touches (SetCellFromInput, the structural
// shifts, PasteCells, ExecuteScript, Undo, and Redo). Intended for wiring
// up liveview.Server.BroadcastSnapshot and changefeed.Publisher.Publish;
// fn is called synchronously and must not block.
func (d *Document) OnChange(fn func(ref engine.CellRef, display string)) {
	d.onChange = append(d.onChange, fn)
}

func (d *Document) notifyChanged(actions []undoAction) {
	if len(d.onChange) == 0 {
		return
	}
	for _, action := range actions {
		display := d.Display(action.Ref)
		for _, fn := range d.onChange {
			fn(action.Ref, display)
		}
	}
}
