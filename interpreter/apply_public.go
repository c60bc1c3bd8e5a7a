package interpreter

// Apply invokes fn (a Builtin, Function, or Partial) with args and returns
// its result, discarding the break/continue signal channel that only
// matters inside loop bodies. It exists so callers outside this package —
// host builtins that accept a karl closure as a predicate argument — can
// drive function values without reaching into unexported evaluator state.
func (e *Evaluator) Apply(fn Value, args []Value) (Value, error) {
	val, _, err := e.applyFunction(fn, args)
	return val, err
}
