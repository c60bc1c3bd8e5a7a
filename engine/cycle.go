package engine

// DetectCycle performs a depth-first search of the dependency graph rooted
// at start, following each cell's DependsOn edges through grid. It reports
// whether the search re-enters a cell already on its current path (a cycle
// reachable from start, which start itself need not be part of) and, if so,
// the cycle path (the repeated node appears at both ends).
func DetectCycle(start CellRef, grid *Grid) (bool, []CellRef) {
	visiting := make(map[CellRef]bool)
	visited := make(map[CellRef]bool)
	var path []CellRef

	var walk func(ref CellRef) []CellRef
	walk = func(ref CellRef) []CellRef {
		if visiting[ref] {
			cycle := append([]CellRef(nil), path...)
			cycle = append(cycle, ref)
			start := indexOf(cycle, ref)
			return cycle[start:]
		}
		if visited[ref] {
			return nil
		}

		visiting[ref] = true
		path = append(path, ref)

		cell := grid.Get(ref)
		if cell != nil && cell.Kind == KindScript {
			for _, dep := range cell.DependsOn {
				if cyc := walk(dep); cyc != nil {
					return cyc
				}
			}
		}

		path = path[:len(path)-1]
		visiting[ref] = false
		visited[ref] = true
		return nil
	}

	if cyc := walk(start); cyc != nil {
		return true, cyc
	}
	return false, nil
}

func indexOf(refs []CellRef, target CellRef) int {
	for i, r := range refs {
		if r == target {
			return i
		}
	}
	return 0
}
