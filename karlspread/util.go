package karlspread

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gridline/engine"
	"gridline/interpreter"
)

func invalidArg(name string, i int, want string, got interpreter.Value) error {
	gotType := "nil"
	if got != nil {
		gotType = string(got.Type())
	}
	return fmt.Errorf("%s: argument %d must be %s, got %s", name, i+1, want, gotType)
}

func argAt(name string, args []interpreter.Value, i int) (interpreter.Value, error) {
	if i >= len(args) {
		return nil, fmt.Errorf("%s: expected at least %d arguments, got %d", name, i+1, len(args))
	}
	return args[i], nil
}

func argFloat(name string, args []interpreter.Value, i int) (float64, error) {
	v, err := argAt(name, args, i)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case *interpreter.Integer:
		return float64(n.Value), nil
	case *interpreter.Float:
		return n.Value, nil
	default:
		return 0, invalidArg(name, i, "a number", v)
	}
}

func argInt(name string, args []interpreter.Value, i int) (int64, error) {
	v, err := argAt(name, args, i)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case *interpreter.Integer:
		return n.Value, nil
	case *interpreter.Float:
		return int64(n.Value), nil
	default:
		return 0, invalidArg(name, i, "an integer", v)
	}
}

func argUint32(name string, args []interpreter.Value, i int) (uint32, error) {
	n, err := argInt(name, args, i)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: argument %d must not be negative", name, i+1)
	}
	return uint32(n), nil
}

func argString(name string, args []interpreter.Value, i int) (string, error) {
	v, err := argAt(name, args, i)
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case *interpreter.String:
		return s.Value, nil
	default:
		return "", invalidArg(name, i, "a string", v)
	}
}

func argRange(name string, args []interpreter.Value) (c1, r1, c2, r2 uint32, err error) {
	if c1, err = argUint32(name, args, 0); err != nil {
		return
	}
	if r1, err = argUint32(name, args, 1); err != nil {
		return
	}
	if c2, err = argUint32(name, args, 2); err != nil {
		return
	}
	if r2, err = argUint32(name, args, 3); err != nil {
		return
	}
	return
}

func eachRangeCell(c1, r1, c2, r2 uint32, fn func(engine.CellRef)) {
	minC, maxC := c1, c2
	if minC > maxC {
		minC, maxC = maxC, minC
	}
	minR, maxR := r1, r2
	if minR > maxR {
		minR, maxR = maxR, minR
	}
	for row := minR; row <= maxR; row++ {
		for col := minC; col <= maxC; col++ {
			fn(engine.CellRef{Col: col, Row: row})
			if col == maxC {
				break
			}
		}
		if row == maxR {
			break
		}
	}
}

// cellValueOrZero reads the current numeric contents of ref, treating an
// empty, textual, or not-yet-evaluated cell as zero so aggregate builtins
// like SUM_RANGE never fail outright on a ragged range.
func (h *Host) cellValueOrZero(ref engine.CellRef) float64 {
	if v, ok := h.Cache.Get(ref); ok {
		if val, ok := v.(interpreter.Value); ok {
			if f, ok := toFloat(val); ok {
				return f
			}
		}
	}
	cell := h.Grid.Get(ref)
	if cell == nil {
		return 0
	}
	if cell.Kind == engine.KindNumber {
		return cell.Number
	}
	return 0
}

func toFloat(v interpreter.Value) (float64, bool) {
	switch n := v.(type) {
	case *interpreter.Integer:
		return float64(n.Value), true
	case *interpreter.Float:
		return n.Value, true
	default:
		return 0, false
	}
}

func toDecimalPlaces(n int64) (int, error) {
	if n < 0 || n > 12 {
		return 0, fmt.Errorf("decimal places must be between 0 and 12")
	}
	return int(n), nil
}

func fixedDecimalString(n float64, places int) string {
	switch {
	case math.IsNaN(n):
		return "#NAN!"
	case math.IsInf(n, 0):
		return "#INF!"
	default:
		return strconv.FormatFloat(n, 'f', places, 64)
	}
}

func moneyString(n float64) string {
	switch {
	case math.IsNaN(n):
		return "#NAN!"
	case math.IsInf(n, 0):
		return "#INF!"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	whole := strconv.FormatFloat(n, 'f', 2, 64)
	dot := strings.IndexByte(whole, '.')
	intPart, fracPart := whole[:dot], whole[dot:]

	var grouped strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(d)
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return sign + "$" + grouped.String() + fracPart
}
