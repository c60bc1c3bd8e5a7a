package engine

// maxDependencyRangeCells bounds how many cells a single range reference may
// expand into when extracting dependencies, preventing a formula like
// SUM(A1:ZZ999999999) from allocating an unreasonable dependency set.
const maxDependencyRangeCells = 1_000_000

// ExtractDependencies returns the deduplicated set of cells a formula reads,
// derived purely from its text: string-literal contents are ignored, dual-
// range calls (LOOKUP-style) contribute both ranges, single-range calls
// contribute their rectangle, and any remaining bare references contribute
// themselves. Order is deterministic (first occurrence) but not otherwise
// meaningful.
func ExtractDependencies(formula string) []CellRef {
	stripped := stripStringLiterals(formula)

	seen := make(map[CellRef]struct{})
	var out []CellRef
	add := func(ref CellRef) {
		if _, ok := seen[ref]; ok {
			return
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	addRange := func(startRef, endRef string) bool {
		start, ok := ParseCellRef(startRef)
		if !ok {
			return false
		}
		end, ok := ParseCellRef(endRef)
		if !ok {
			return false
		}
		return expandRange(start, end, add)
	}

	consumed := make([]bool, len(stripped))
	for _, m := range dualRangeFnPattern.FindAllStringSubmatchIndex(stripped, -1) {
		groups := extractSubmatches(stripped, m)
		addRange(groups[1], groups[2])
		addRange(groups[3], groups[4])
		markConsumed(consumed, m[0], m[1])
	}

	for _, m := range rangeFnPattern.FindAllStringSubmatchIndex(stripped, -1) {
		if rangeOverlapsConsumed(consumed, m[0], m[1]) {
			continue
		}
		groups := extractSubmatches(stripped, m)
		addRange(groups[2], groups[3])
		markConsumed(consumed, m[0], m[1])
	}

	for _, m := range bareCellRefPattern.FindAllStringSubmatchIndex(stripped, -1) {
		if rangeOverlapsConsumed(consumed, m[0], m[1]) {
			continue
		}
		letters := stripped[m[2]:m[3]]
		digits := stripped[m[4]:m[5]]
		if ref, ok := ParseCellRef(letters + digits); ok {
			add(ref)
		}
	}

	return out
}

func extractSubmatches(s string, idx []int) []string {
	out := make([]string, len(idx)/2)
	for i := 0; i < len(idx); i += 2 {
		if idx[i] < 0 {
			continue
		}
		out[i/2] = s[idx[i]:idx[i+1]]
	}
	return out
}

func markConsumed(consumed []bool, start, end int) {
	for i := start; i < end && i < len(consumed); i++ {
		consumed[i] = true
	}
}

func rangeOverlapsConsumed(consumed []bool, start, end int) bool {
	for i := start; i < end && i < len(consumed); i++ {
		if consumed[i] {
			return true
		}
	}
	return false
}

// expandRange walks the rectangle between start and end (inclusive, in
// either direction) and calls add for every cell, refusing to expand a
// rectangle larger than maxDependencyRangeCells.
func expandRange(start, end CellRef, add func(CellRef)) bool {
	minCol, maxCol := start.Col, end.Col
	if minCol > maxCol {
		minCol, maxCol = maxCol, minCol
	}
	minRow, maxRow := start.Row, end.Row
	if minRow > maxRow {
		minRow, maxRow = maxRow, minRow
	}

	width := uint64(maxCol-minCol) + 1
	height := uint64(maxRow-minRow) + 1
	size := width * height
	if height != 0 && size/height != width {
		return false // overflow
	}
	if size > maxDependencyRangeCells {
		return false
	}

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			add(CellRef{Col: col, Row: row})
			if col == maxCol {
				break
			}
		}
		if row == maxRow {
			break
		}
	}
	return true
}
