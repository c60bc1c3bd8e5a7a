// Package gridlineerr collects the sentinel and structured error types a
// Document operation can fail with. In-cell evaluation failures (#ERR:,
// #CYCLE!, #SPILL!, #REF!, ...) are a distinct concept — they render as
// text inside a cell and never surface as a Go error.
package gridlineerr

import "fmt"

// ParseError reports a malformed line while reading a .grd file.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on line %d: %s", e.Line, e.Message)
}

// ErrCircularDependency is returned by SetCellFromInput when committing the
// edit would introduce a dependency cycle; the edit is retracted rather
// than committed.
type ErrCircularDependency struct {
	Cycle []string
}

func (e *ErrCircularDependency) Error() string {
	return fmt.Sprintf("circular dependency: %v", e.Cycle)
}

// ErrNoFilePath is returned by SaveFile when the document has never been
// associated with a path and none was given.
var ErrNoFilePath = fmt.Errorf("document has no associated file path")

// ErrNoFunctionsLoaded is returned by ReloadFunctions when no functions
// file has ever been loaded.
var ErrNoFunctionsLoaded = fmt.Errorf("no functions file has been loaded")

// ErrEmptyCSV is returned when exporting a document with no populated
// cells to CSV.
var ErrEmptyCSV = fmt.Errorf("document has no cells to export")

// ErrNothingToUndo is returned by Undo when the undo stack is empty.
var ErrNothingToUndo = fmt.Errorf("nothing to undo")

// ErrNothingToRedo is returned by Redo when the redo stack is empty.
var ErrNothingToRedo = fmt.Errorf("nothing to redo")

// HostCompileError wraps a karl parse failure in a functions file or a
// script, or a failure while evaluating a functions file, before it is
// committed.
type HostCompileError struct {
	Message string
}

func (e *HostCompileError) Error() string { return "compile error: " + e.Message }

// HostEvalError wraps a karl runtime failure raised outside of normal cell
// evaluation, e.g. while running ExecuteScript.
type HostEvalError struct {
	Message string
}

func (e *HostEvalError) Error() string { return "evaluation error: " + e.Message }

// IOError wraps an underlying filesystem failure with the path it happened
// on, via %w so errors.Is/As still reach the wrapped error.
func IOError(path string, err error) error {
	return fmt.Errorf("io error on %q: %w", path, err)
}
