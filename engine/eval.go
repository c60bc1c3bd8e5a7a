package engine

import (
	"math"
	"strconv"

	"gridline/interpreter"
)

// EvalResult is what a script evaluation produces for one source cell.
// Scalar is used when Array is nil; otherwise Array holds one karl value
// per row of a projected spill, starting at the source cell itself.
type EvalResult struct {
	Scalar interpreter.Value
	Array  []interpreter.Value
}

// FormatNumber renders a float the way a Number cell displays it: a whole
// number under 1e10 in magnitude shows no decimals, everything else shows
// exactly two.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "#NAN!"
	case math.IsInf(n, 0):
		return "#INF!"
	case math.Trunc(n) == n && math.Abs(n) < 1e10:
		return strconv.FormatFloat(n, 'f', 0, 64)
	default:
		return strconv.FormatFloat(n, 'f', 2, 64)
	}
}

// FormatValue renders a karl value the way it appears in a cell, independent
// of Go's string-quoting Inspect() convention.
func FormatValue(v interpreter.Value) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case *interpreter.Integer:
		return strconv.FormatInt(val.Value, 10)
	case *interpreter.Float:
		return FormatNumber(val.Value)
	case *interpreter.Boolean:
		if val.Value {
			return "TRUE"
		}
		return "FALSE"
	case *interpreter.String:
		return val.Value
	case *interpreter.Char:
		return val.Value
	case *interpreter.Null, *interpreter.Unit:
		return ""
	default:
		return val.Inspect()
	}
}

// Display returns the current rendered text for ref: a spill cell defers to
// its source's cached array entry, a Number/Text cell renders directly, and
// a Script cell renders its last cached evaluation (or "" before the first
// evaluation pass).
func Display(ref CellRef, grid *Grid, cache *ValueCache, spills *SpillSources) string {
	if _, isSpillTarget := spills.Get(ref); isSpillTarget {
		if v, ok := cache.Get(ref); ok {
			if val, ok := v.(interpreter.Value); ok {
				return FormatValue(val)
			}
		}
		return "#SPILL?"
	}

	cell := grid.Get(ref)
	if cell == nil {
		return ""
	}
	switch cell.Kind {
	case KindEmpty:
		return ""
	case KindText:
		return cell.Text
	case KindNumber:
		return FormatNumber(cell.Number)
	case KindScript:
		if cell.HasDisplay {
			return cell.CachedDisplay
		}
		return ""
	default:
		return ""
	}
}

func setCellDisplay(grid *Grid, ref CellRef, display string) {
	cell := grid.Get(ref)
	if cell == nil {
		return
	}
	cell.CachedDisplay = display
	cell.HasDisplay = true
	cell.Dirty = false
}

// ApplyEvalResult commits one script cell's evaluation outcome: it first
// retracts any spill this source previously owned, then either records a
// scalar display or projects an array straight down from source (source
// itself takes the first element). A projected cell that collides with an
// existing non-empty grid cell, or with a spill owned by a different
// source, aborts the whole projection with #SPILL! on the source cell; a
// spill target whose cache entry later goes missing renders as #SPILL? via
// Display rather than here.
func ApplyEvalResult(source CellRef, result EvalResult, grid *Grid, cache *ValueCache, spills *SpillSources) string {
	for _, ref := range spills.RemoveWhereSource(source) {
		cache.Delete(ref)
	}

	if result.Array == nil {
		display := FormatValue(result.Scalar)
		setCellDisplay(grid, source, display)
		cache.Set(source, result.Scalar)
		return display
	}

	if len(result.Array) == 0 {
		setCellDisplay(grid, source, "")
		cache.Set(source, interpreter.NullValue)
		return ""
	}

	for i := 1; i < len(result.Array); i++ {
		target := CellRef{Col: source.Col, Row: source.Row + uint32(i)}
		if cell := grid.Get(target); cell != nil && cell.Kind != KindEmpty {
			setCellDisplay(grid, source, "#SPILL!")
			cache.Set(source, &interpreter.String{Value: "#SPILL!"})
			return "#SPILL!"
		}
		if owner, ok := spills.Get(target); ok && owner != source {
			setCellDisplay(grid, source, "#SPILL!")
			cache.Set(source, &interpreter.String{Value: "#SPILL!"})
			return "#SPILL!"
		}
	}

	display := FormatValue(result.Array[0])
	setCellDisplay(grid, source, display)
	cache.Set(source, result.Array[0])
	for i := 1; i < len(result.Array); i++ {
		target := CellRef{Col: source.Col, Row: source.Row + uint32(i)}
		spills.Set(target, source)
		cache.Set(target, result.Array[i])
	}
	return display
}

// EvaluateDirty runs every dirty Script cell in dependency order (a Kahn's-
// algorithm topological pass restricted to the dirty subgraph) and applies
// each result via ApplyEvalResult. evalFn is supplied by the caller, which
// owns the script host and its builtins; this package only sequences calls
// to it correctly. It returns the order cells were evaluated in.
//
// Cells left dirty once the topological pass stalls are cycle participants:
// they are not an evaluation failure, since the rest of the grid evaluated
// fine. Each is displayed as "#CYCLE!" and marked clean so later passes
// don't keep retrying it; EvaluateDirty itself never returns an error for
// this, matching how #ERR:/#SPILL!/#REF! are in-cell conditions rather than
// Go errors.
func EvaluateDirty(grid *Grid, cache *ValueCache, spills *SpillSources, evalFn func(ref CellRef, formula string) (EvalResult, error)) ([]CellRef, error) {
	dirty := make(map[CellRef]*Cell)
	grid.Each(func(ref CellRef, cell *Cell) {
		if cell.Kind == KindScript && cell.Dirty {
			dirty[ref] = cell
		}
	})

	inDegree := make(map[CellRef]int, len(dirty))
	dependents := make(map[CellRef][]CellRef)
	for ref, cell := range dirty {
		for _, dep := range cell.DependsOn {
			if _, ok := dirty[dep]; ok {
				inDegree[ref]++
				dependents[dep] = append(dependents[dep], ref)
			}
		}
	}

	queue := make([]CellRef, 0, len(dirty))
	for ref := range dirty {
		if inDegree[ref] == 0 {
			queue = append(queue, ref)
		}
	}

	order := make([]CellRef, 0, len(dirty))
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		order = append(order, ref)

		cell := dirty[ref]
		result, err := evalFn(ref, cell.Script)
		if err != nil {
			display := "#ERR:" + err.Error()
			setCellDisplay(grid, ref, display)
			cache.Set(ref, &interpreter.String{Value: display})
		} else {
			ApplyEvalResult(ref, result, grid, cache, spills)
		}

		for _, dependent := range dependents[ref] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(dirty) {
		for ref := range dirty {
			if inDegree[ref] == 0 {
				continue // was dequeued and evaluated above
			}
			setCellDisplay(grid, ref, "#CYCLE!")
			cache.Set(ref, &interpreter.String{Value: "#CYCLE!"})
		}
	}
	return order, nil
}
