package engine

import (
	"fmt"
	"regexp"
	"strconv"
)

var rowCallPattern = regexp.MustCompile(`\bROW\(\s*\)`)
var colCallPattern = regexp.MustCompile(`\bCOL\(\s*\)`)

// PreprocessScript rewrites a formula's raw text into the karl dialect,
// without ROW()/COL() context substitution.
func PreprocessScript(script string) string {
	return PreprocessScriptWithContext(script, nil)
}

// PreprocessScriptWithContext rewrites a formula's raw text into the karl
// dialect. When context is non-nil, ROW() and COL() are replaced with the
// 1-based row/column of that cell before any other rewriting.
func PreprocessScriptWithContext(script string, context *CellRef) string {
	if context != nil {
		script = rowCallPattern.ReplaceAllString(script, strconv.FormatUint(uint64(context.Row)+1, 10))
		script = colCallPattern.ReplaceAllString(script, strconv.FormatUint(uint64(context.Col)+1, 10))
	}
	return preprocessInner(script)
}

func preprocessInner(script string) string {
	withRanges := rangeFnPattern.ReplaceAllStringFunc(script, func(m string) string {
		groups := rangeFnPattern.FindStringSubmatch(m)
		sheetName, startRef, endRef, rest := groups[1], groups[2], groups[3], groups[4]
		hostName, ok := rangeHostName(sheetName)
		if !ok {
			return m
		}
		start, okStart := ParseCellRef(startRef)
		end, okEnd := ParseCellRef(endRef)
		if !okStart || !okEnd {
			return m
		}
		return fmt.Sprintf("%s(%d, %d, %d, %d%s)", hostName, start.Col, start.Row, end.Col, end.Row, rest)
	})
	return replaceCellRefsOutsideStrings(withRanges)
}

func replaceCellRefsOutsideStrings(script string) string {
	return scanOutsideStrings(script, replaceCellRefsSegment)
}

func replaceCellRefsSegment(seg string) string {
	seg = valueCellRefPattern.ReplaceAllStringFunc(seg, func(m string) string {
		groups := valueCellRefPattern.FindStringSubmatch(m)
		ref, ok := ParseCellRef(groups[1] + groups[2])
		if !ok {
			return m
		}
		return fmt.Sprintf("VALUE(%d, %d)", ref.Col, ref.Row)
	})
	return bareCellRefPattern.ReplaceAllStringFunc(seg, func(m string) string {
		groups := bareCellRefPattern.FindStringSubmatch(m)
		ref, ok := ParseCellRef(groups[1] + groups[2])
		if !ok {
			return m
		}
		return fmt.Sprintf("CELL(%d, %d)", ref.Col, ref.Row)
	})
}
