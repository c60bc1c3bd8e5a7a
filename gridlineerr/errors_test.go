package gridlineerr

import (
	"errors"
	"os"
	"testing"
)

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{Line: 7, Message: "bad thing"}
	want := "parse error on line 7: bad thing"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrCircularDependencyMessage(t *testing.T) {
	err := &ErrCircularDependency{Cycle: []string{"A1", "B1", "A1"}}
	if err.Error() == "" {
		t.Error("expected a non-empty message")
	}
}

func TestIOErrorWrapsUnderlying(t *testing.T) {
	wrapped := IOError("missing.grd", os.ErrNotExist)
	if !errors.Is(wrapped, os.ErrNotExist) {
		t.Error("expected errors.Is to reach the wrapped os.ErrNotExist")
	}
}

func TestHostCompileErrorMessage(t *testing.T) {
	err := &HostCompileError{Message: "unexpected token"}
	want := "compile error: unexpected token"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
