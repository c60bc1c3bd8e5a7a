package engine

import "regexp"

// rangeBuiltin names a spreadsheet-facing function whose first argument is
// a rectangular range, and the host-level *_RANGE call the preprocessor
// rewrites it to.
type rangeBuiltin struct {
	SheetName string
	HostName  string
}

// rangeBuiltins lists every registered range built-in. Order only matters
// for the generated regex alternation, which tries the union in one pass.
var rangeBuiltins = []rangeBuiltin{
	{"SUM", "SUM_RANGE"},
	{"AVG", "AVG_RANGE"},
	{"COUNT", "COUNT_RANGE"},
	{"MIN", "MIN_RANGE"},
	{"MAX", "MAX_RANGE"},
	{"BARCHART", "BARCHART_RANGE"},
	{"LINECHART", "LINECHART_RANGE"},
	{"SCATTER", "SCATTER_RANGE"},
	{"VEC", "VEC_RANGE"},
	{"SUMIF", "SUMIF_RANGE"},
	{"COUNTIF", "COUNTIF_RANGE"},
}

// dualRangeBuiltins lists LOOKUP-style functions taking two ranges, e.g.
// LOOKUP(value, r1:r2, r3:r4). Per §9's resolved Open Question, the
// dependency extractor recognizes these.
var dualRangeBuiltins = []string{"LOOKUP"}

func rangeHostName(sheetName string) (string, bool) {
	for _, b := range rangeBuiltins {
		if b.SheetName == sheetName {
			return b.HostName, true
		}
	}
	return "", false
}

var rangeFnPattern = buildRangeFnPattern()

func buildRangeFnPattern() *regexp.Regexp {
	names := ""
	for i, b := range rangeBuiltins {
		if i > 0 {
			names += "|"
		}
		names += b.SheetName
	}
	return regexp.MustCompile(`\b(` + names + `)\(([A-Za-z]+[0-9]+):([A-Za-z]+[0-9]+)((?:\s*,[^)]*)?)\)`)
}

var dualRangeFnPattern = buildDualRangeFnPattern()

func buildDualRangeFnPattern() *regexp.Regexp {
	names := ""
	for i, n := range dualRangeBuiltins {
		if i > 0 {
			names += "|"
		}
		names += n
	}
	return regexp.MustCompile(`\b(?:` + names + `)\(\s*[^,()]*,\s*([A-Za-z]+[0-9]+):([A-Za-z]+[0-9]+)\s*,\s*([A-Za-z]+[0-9]+):([A-Za-z]+[0-9]+)\s*\)`)
}

var bareCellRefPattern = regexp.MustCompile(`\b([A-Za-z]+)([0-9]+)\b`)
var valueCellRefPattern = regexp.MustCompile(`@([A-Za-z]+)([0-9]+)\b`)
