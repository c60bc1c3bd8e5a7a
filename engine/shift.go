package engine

import "regexp"

// ShiftKind names a structural grid edit that displaces cell references.
type ShiftKind int

const (
	InsertRow ShiftKind = iota
	DeleteRow
	InsertColumn
	DeleteColumn
)

// ShiftOperation describes a structural edit at Index: for InsertRow/
// InsertColumn, a new row/column is inserted at Index, pushing everything
// at or after Index one further out; for DeleteRow/DeleteColumn, the row/
// column at Index is removed, pulling everything after it one closer.
type ShiftOperation struct {
	Kind  ShiftKind
	Index uint32
}

var refTokenPattern = regexp.MustCompile(`@?[A-Za-z]+[0-9]+(?::[A-Za-z]+[0-9]+)?`)

// ShiftFormulaReferences rewrites every cell reference in formula to account
// for a structural edit, leaving string-literal contents untouched. A
// reference to the deleted row or column collapses to the literal token
// #REF!; a range reference collapses entirely to #REF! if either endpoint
// does. Inserts never collapse a reference.
func ShiftFormulaReferences(formula string, op ShiftOperation) string {
	return scanOutsideStrings(formula, func(seg string) string {
		return shiftSegment(seg, op)
	})
}

// OffsetFormulaReferences rewrites every cell reference in formula by a
// constant (colOffset, rowOffset) delta, used for pasted clipboard content.
// A reference whose offset position would be negative or beyond the
// largest coordinate collapses to #REF!, and a range collapses as a whole
// as in ShiftFormulaReferences.
func OffsetFormulaReferences(formula string, colOffset, rowOffset int) string {
	return scanOutsideStrings(formula, func(seg string) string {
		return offsetSegment(seg, colOffset, rowOffset)
	})
}

func shiftSegment(seg string, op ShiftOperation) string {
	return refTokenPattern.ReplaceAllStringFunc(seg, func(tok string) string {
		return rewriteRefToken(tok, func(ref CellRef) (CellRef, bool) {
			return shiftSingleRef(ref, op)
		})
	})
}

func offsetSegment(seg string, colOffset, rowOffset int) string {
	return refTokenPattern.ReplaceAllStringFunc(seg, func(tok string) string {
		return rewriteRefToken(tok, func(ref CellRef) (CellRef, bool) {
			return offsetSingleRef(ref, colOffset, rowOffset)
		})
	})
}

// rewriteRefToken parses a matched token (optionally "@"-prefixed, optionally
// a ":"-range) and rewrites each endpoint with shiftFn, preserving the
// token's shape, or collapsing to #REF! if any endpoint fails to shift.
func rewriteRefToken(tok string, shiftFn func(CellRef) (CellRef, bool)) string {
	prefix := ""
	body := tok
	if len(body) > 0 && body[0] == '@' {
		prefix = "@"
		body = body[1:]
	}

	colonIdx := -1
	for i := 0; i < len(body); i++ {
		if body[i] == ':' {
			colonIdx = i
			break
		}
	}

	if colonIdx < 0 {
		ref, ok := ParseCellRef(body)
		if !ok {
			return tok
		}
		shifted, ok := shiftFn(ref)
		if !ok {
			return "#REF!"
		}
		return prefix + shifted.String()
	}

	startRef, okStart := ParseCellRef(body[:colonIdx])
	endRef, okEnd := ParseCellRef(body[colonIdx+1:])
	if !okStart || !okEnd {
		return tok
	}
	shiftedStart, okStart := shiftFn(startRef)
	shiftedEnd, okEnd := shiftFn(endRef)
	if !okStart || !okEnd {
		return "#REF!"
	}
	return prefix + shiftedStart.String() + ":" + shiftedEnd.String()
}

func shiftSingleRef(ref CellRef, op ShiftOperation) (CellRef, bool) {
	switch op.Kind {
	case InsertRow:
		if ref.Row >= op.Index {
			ref.Row++
		}
	case DeleteRow:
		if ref.Row == op.Index {
			return CellRef{}, false
		}
		if ref.Row > op.Index {
			ref.Row--
		}
	case InsertColumn:
		if ref.Col >= op.Index {
			ref.Col++
		}
	case DeleteColumn:
		if ref.Col == op.Index {
			return CellRef{}, false
		}
		if ref.Col > op.Index {
			ref.Col--
		}
	}
	return ref, true
}

func offsetSingleRef(ref CellRef, colOffset, rowOffset int) (CellRef, bool) {
	col := int64(ref.Col) + int64(colOffset)
	row := int64(ref.Row) + int64(rowOffset)
	if col < 0 || row < 0 || col > int64(^uint32(0)) || row > int64(^uint32(0)) {
		return CellRef{}, false
	}
	return CellRef{Col: uint32(col), Row: uint32(row)}, true
}
