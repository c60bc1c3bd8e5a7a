package karlspread

import (
	"math"
	"math/rand/v2"

	"gridline/engine"
	"gridline/interpreter"
	"gridline/plot"
)

func (h *Host) cellValue(ref engine.CellRef) interpreter.Value {
	if v, ok := h.Cache.Get(ref); ok {
		if val, ok := v.(interpreter.Value); ok {
			return val
		}
	}
	cell := h.Grid.Get(ref)
	if cell == nil {
		return interpreter.NullValue
	}
	switch cell.Kind {
	case engine.KindNumber:
		return &interpreter.Float{Value: cell.Number}
	case engine.KindText:
		return &interpreter.String{Value: cell.Text}
	case engine.KindScript:
		if cell.HasDisplay {
			return &interpreter.String{Value: cell.CachedDisplay}
		}
		return interpreter.NullValue
	default:
		return interpreter.NullValue
	}
}

func (h *Host) registerReadBuiltins() {
	h.define("CELL", h.builtinCell)
	h.define("VALUE", h.builtinCell)
	h.define("SUM_RANGE", h.builtinSumRange)
	h.define("AVG_RANGE", h.builtinAvgRange)
	h.define("COUNT_RANGE", h.builtinCountRange)
	h.define("MIN_RANGE", h.builtinMinRange)
	h.define("MAX_RANGE", h.builtinMaxRange)
	h.define("VEC_RANGE", h.builtinVecRange)
	h.define("SPILL", h.builtinSpill)
	h.define("SUMIF_RANGE", h.builtinSumifRange)
	h.define("COUNTIF_RANGE", h.builtinCountifRange)
	h.define("BARCHART_RANGE", chartBuiltin(plot.BarChart))
	h.define("LINECHART_RANGE", chartBuiltin(plot.LineChart))
	h.define("SCATTER_RANGE", chartBuiltin(plot.Scatter))
	h.define("PARSE_CELL", builtinParseCell)
	h.define("FORMAT_CELL", builtinFormatCell)
	h.define("PARSE_RANGE", builtinParseRange)
	h.define("FORMAT_RANGE", builtinFormatRange)
	h.define("POW", builtinPow)
	h.define("SQRT", builtinSqrt)
	h.define("FIXED", builtinFixed)
	h.define("MONEY", builtinMoney)
	h.define("RAND", builtinRandFloat)
	h.define("RANDINT", builtinRandInt)
}

func (h *Host) builtinCell(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	col, err := argUint32("CELL", args, 0)
	if err != nil {
		return nil, err
	}
	row, err := argUint32("CELL", args, 1)
	if err != nil {
		return nil, err
	}
	return h.cellValue(engine.CellRef{Col: col, Row: row}), nil
}

func (h *Host) builtinSumRange(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	c1, r1, c2, r2, err := argRange("SUM_RANGE", args)
	if err != nil {
		return nil, err
	}
	var total float64
	eachRangeCell(c1, r1, c2, r2, func(ref engine.CellRef) {
		total += h.cellValueOrZero(ref)
	})
	return &interpreter.Float{Value: total}, nil
}

func (h *Host) builtinAvgRange(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	c1, r1, c2, r2, err := argRange("AVG_RANGE", args)
	if err != nil {
		return nil, err
	}
	var total float64
	var count int
	eachRangeCell(c1, r1, c2, r2, func(ref engine.CellRef) {
		total += h.cellValueOrZero(ref)
		count++
	})
	if count == 0 {
		return &interpreter.Float{Value: 0}, nil
	}
	return &interpreter.Float{Value: total / float64(count)}, nil
}

func (h *Host) builtinCountRange(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	c1, r1, c2, r2, err := argRange("COUNT_RANGE", args)
	if err != nil {
		return nil, err
	}
	var count int64
	eachRangeCell(c1, r1, c2, r2, func(ref engine.CellRef) {
		cell := h.Grid.Get(ref)
		if cell != nil && cell.Kind != engine.KindEmpty {
			count++
		}
	})
	return &interpreter.Integer{Value: count}, nil
}

func (h *Host) builtinMinRange(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	c1, r1, c2, r2, err := argRange("MIN_RANGE", args)
	if err != nil {
		return nil, err
	}
	min := math.Inf(1)
	eachRangeCell(c1, r1, c2, r2, func(ref engine.CellRef) {
		if v := h.cellValueOrZero(ref); v < min {
			min = v
		}
	})
	if math.IsInf(min, 1) {
		min = 0
	}
	return &interpreter.Float{Value: min}, nil
}

func (h *Host) builtinMaxRange(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	c1, r1, c2, r2, err := argRange("MAX_RANGE", args)
	if err != nil {
		return nil, err
	}
	max := math.Inf(-1)
	eachRangeCell(c1, r1, c2, r2, func(ref engine.CellRef) {
		if v := h.cellValueOrZero(ref); v > max {
			max = v
		}
	})
	if math.IsInf(max, -1) {
		max = 0
	}
	return &interpreter.Float{Value: max}, nil
}

// builtinVecRange collects a range into a karl array, preserving the
// direction the caller wrote the endpoints in (so VEC_RANGE over a
// reversed range yields a reversed array).
func (h *Host) builtinVecRange(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	c1, r1, c2, r2, err := argRange("VEC_RANGE", args)
	if err != nil {
		return nil, err
	}
	var elements []interpreter.Value
	colStep, rowStep := 1, 1
	if c2 < c1 {
		colStep = -1
	}
	if r2 < r1 {
		rowStep = -1
	}
	row := int64(r1)
	for {
		col := int64(c1)
		for {
			elements = append(elements, h.cellValue(engine.CellRef{Col: uint32(col), Row: uint32(row)}))
			if col == int64(c2) {
				break
			}
			col += int64(colStep)
		}
		if row == int64(r2) {
			break
		}
		row += int64(rowStep)
	}
	return &interpreter.Array{Elements: elements}, nil
}

// builtinSpill reads one element out of an array-valued argument at a given
// zero-based offset, the form SPILL(expr, n) takes when called as a free
// function rather than as a method off an Array/Range value.
func (h *Host) builtinSpill(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	v, err := argAt("SPILL", args, 0)
	if err != nil {
		return nil, err
	}
	idx, err := argInt("SPILL", args, 1)
	if err != nil {
		return nil, err
	}
	arr, ok := v.(*interpreter.Array)
	if !ok {
		return nil, invalidArg("SPILL", 0, "an array", v)
	}
	if idx < 0 || int(idx) >= len(arr.Elements) {
		return interpreter.NullValue, nil
	}
	return arr.Elements[idx], nil
}

func (h *Host) builtinSumifRange(e *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	c1, r1, c2, r2, err := argRange("SUMIF_RANGE", args)
	if err != nil {
		return nil, err
	}
	predicate, err := argAt("SUMIF_RANGE", args, 4)
	if err != nil {
		return nil, err
	}
	var total float64
	var applyErr error
	eachRangeCell(c1, r1, c2, r2, func(ref engine.CellRef) {
		if applyErr != nil {
			return
		}
		val := h.cellValue(ref)
		result, err := e.Apply(predicate, []interpreter.Value{val})
		if err != nil {
			applyErr = err
			return
		}
		if b, ok := result.(*interpreter.Boolean); ok && b.Value {
			total += h.cellValueOrZero(ref)
		}
	})
	if applyErr != nil {
		return nil, applyErr
	}
	return &interpreter.Float{Value: total}, nil
}

func (h *Host) builtinCountifRange(e *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	c1, r1, c2, r2, err := argRange("COUNTIF_RANGE", args)
	if err != nil {
		return nil, err
	}
	predicate, err := argAt("COUNTIF_RANGE", args, 4)
	if err != nil {
		return nil, err
	}
	var count int64
	var applyErr error
	eachRangeCell(c1, r1, c2, r2, func(ref engine.CellRef) {
		if applyErr != nil {
			return
		}
		val := h.cellValue(ref)
		result, err := e.Apply(predicate, []interpreter.Value{val})
		if err != nil {
			applyErr = err
			return
		}
		if b, ok := result.(*interpreter.Boolean); ok && b.Value {
			count++
		}
	})
	if applyErr != nil {
		return nil, applyErr
	}
	return &interpreter.Integer{Value: count}, nil
}

// chartBuiltin returns a builtin for one chart kind accepting
// (c1,r1,c2,r2[, title[, xlabel, ylabel]]), the 4/5/7-argument
// overloads a single karl registration must dispatch on by arity since the
// language has no function overloading.
func chartBuiltin(kind plot.Kind) interpreter.BuiltinFunction {
	return func(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
		c1, r1, c2, r2, err := argRange(string(kind)+"CHART_RANGE", args)
		if err != nil {
			return nil, err
		}
		spec := plot.Spec{Kind: kind, C1: c1, R1: r1, C2: c2, R2: r2}
		switch len(args) {
		case 5:
			spec.Title, err = argString("chart", args, 4)
		case 7:
			if spec.Title, err = argString("chart", args, 4); err == nil {
				if spec.XLabel, err = argString("chart", args, 5); err == nil {
					spec.YLabel, err = argString("chart", args, 6)
				}
			}
		}
		if err != nil {
			return nil, err
		}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		return &interpreter.String{Value: plot.Format(spec)}, nil
	}
}

func builtinParseCell(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	name, err := argString("PARSE_CELL", args, 0)
	if err != nil {
		return nil, err
	}
	ref, ok := engine.ParseCellRef(name)
	if !ok {
		return nil, invalidArg("PARSE_CELL", 0, "A1-style cell notation", args[0])
	}
	return &interpreter.Array{Elements: []interpreter.Value{
		&interpreter.Integer{Value: int64(ref.Col)},
		&interpreter.Integer{Value: int64(ref.Row)},
	}}, nil
}

func builtinFormatCell(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	col, err := argUint32("FORMAT_CELL", args, 0)
	if err != nil {
		return nil, err
	}
	row, err := argUint32("FORMAT_CELL", args, 1)
	if err != nil {
		return nil, err
	}
	return &interpreter.String{Value: engine.CellRef{Col: col, Row: row}.String()}, nil
}

func builtinParseRange(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	text, err := argString("PARSE_RANGE", args, 0)
	if err != nil {
		return nil, err
	}
	sep := -1
	for i := 0; i < len(text); i++ {
		if text[i] == ':' {
			sep = i
			break
		}
	}
	if sep < 0 {
		return nil, invalidArg("PARSE_RANGE", 0, "a \"ref:ref\" range", args[0])
	}
	start, ok1 := engine.ParseCellRef(text[:sep])
	end, ok2 := engine.ParseCellRef(text[sep+1:])
	if !ok1 || !ok2 {
		return nil, invalidArg("PARSE_RANGE", 0, "a \"ref:ref\" range", args[0])
	}
	return &interpreter.Array{Elements: []interpreter.Value{
		&interpreter.Integer{Value: int64(start.Col)},
		&interpreter.Integer{Value: int64(start.Row)},
		&interpreter.Integer{Value: int64(end.Col)},
		&interpreter.Integer{Value: int64(end.Row)},
	}}, nil
}

func builtinFormatRange(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	c1, r1, c2, r2, err := argRange("FORMAT_RANGE", args)
	if err != nil {
		return nil, err
	}
	start := engine.CellRef{Col: c1, Row: r1}
	end := engine.CellRef{Col: c2, Row: r2}
	return &interpreter.String{Value: start.String() + ":" + end.String()}, nil
}

func builtinPow(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	base, err := argFloat("POW", args, 0)
	if err != nil {
		return nil, err
	}
	exp, err := argFloat("POW", args, 1)
	if err != nil {
		return nil, err
	}
	return &interpreter.Float{Value: math.Pow(base, exp)}, nil
}

func builtinSqrt(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	n, err := argFloat("SQRT", args, 0)
	if err != nil {
		return nil, err
	}
	return &interpreter.Float{Value: math.Sqrt(n)}, nil
}

func builtinFixed(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	n, err := argFloat("FIXED", args, 0)
	if err != nil {
		return nil, err
	}
	placesArg, err := argInt("FIXED", args, 1)
	if err != nil {
		return nil, err
	}
	places, err := toDecimalPlaces(placesArg)
	if err != nil {
		return nil, err
	}
	return &interpreter.String{Value: fixedDecimalString(n, places)}, nil
}

func builtinMoney(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	n, err := argFloat("MONEY", args, 0)
	if err != nil {
		return nil, err
	}
	return &interpreter.String{Value: moneyString(n)}, nil
}

func builtinRandFloat(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	return &interpreter.Float{Value: rand.Float64()}, nil
}

func builtinRandInt(_ *interpreter.Evaluator, args []interpreter.Value) (interpreter.Value, error) {
	lo, err := argInt("RANDINT", args, 0)
	if err != nil {
		return nil, err
	}
	hi, err := argInt("RANDINT", args, 1)
	if err != nil {
		return nil, err
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	span := hi - lo + 1
	if span <= 0 {
		return &interpreter.Integer{Value: lo}, nil
	}
	return &interpreter.Integer{Value: lo + rand.Int64N(span)}, nil
}
