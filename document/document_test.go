package document

import (
	"os"
	"testing"

	"gridline/engine"
	"gridline/gridlineerr"
)

func ref(t *testing.T, name string) engine.CellRef {
	t.Helper()
	r, ok := engine.ParseCellRef(name)
	if !ok {
		t.Fatalf("ParseCellRef(%q) failed", name)
	}
	return r
}

func TestSetCellFromInputNumberAndDisplay(t *testing.T) {
	d := New()
	if err := d.SetCellFromInput(ref(t, "A1"), "42"); err != nil {
		t.Fatalf("SetCellFromInput returned error: %v", err)
	}
	if got := d.Display(ref(t, "A1")); got != "42" {
		t.Errorf("Display(A1) = %q, want %q", got, "42")
	}
	if !d.Modified() {
		t.Error("expected Modified() to be true after an edit")
	}
}

func TestSetCellFromInputFormulaEvaluates(t *testing.T) {
	d := New()
	if err := d.SetCellFromInput(ref(t, "A1"), "2"); err != nil {
		t.Fatalf("SetCellFromInput(A1) returned error: %v", err)
	}
	if err := d.SetCellFromInput(ref(t, "B1"), "=A1+3"); err != nil {
		t.Fatalf("SetCellFromInput(B1) returned error: %v", err)
	}
	if got := d.Display(ref(t, "B1")); got != "5" {
		t.Errorf("Display(B1) = %q, want %q", got, "5")
	}
}

func TestSetCellFromInputPropagatesToDependents(t *testing.T) {
	d := New()
	d.SetCellFromInput(ref(t, "A1"), "2")
	d.SetCellFromInput(ref(t, "B1"), "=A1+1")
	d.SetCellFromInput(ref(t, "A1"), "10")
	if got := d.Display(ref(t, "B1")); got != "11" {
		t.Errorf("Display(B1) after A1 update = %q, want %q", got, "11")
	}
}

func TestSetCellFromInputRejectsCycle(t *testing.T) {
	d := New()
	d.SetCellFromInput(ref(t, "A1"), "=B1")
	err := d.SetCellFromInput(ref(t, "B1"), "=A1")

	var cycleErr *gridlineerr.ErrCircularDependency
	if err == nil {
		t.Fatal("expected a circular dependency error")
	}
	if ce, ok := err.(*gridlineerr.ErrCircularDependency); ok {
		cycleErr = ce
	} else {
		t.Fatalf("expected *gridlineerr.ErrCircularDependency, got %T", err)
	}
	if len(cycleErr.Cycle) == 0 {
		t.Error("expected a non-empty cycle path")
	}
	// The edit must be fully retracted: B1 should remain whatever it was
	// before the rejected write (empty).
	if got := d.Display(ref(t, "B1")); got != "" {
		t.Errorf("expected B1 to be retracted to empty, got %q", got)
	}
}

func TestUndoRedo(t *testing.T) {
	d := New()
	d.SetCellFromInput(ref(t, "A1"), "1")
	d.SetCellFromInput(ref(t, "A1"), "2")

	if err := d.Undo(); err != nil {
		t.Fatalf("Undo returned error: %v", err)
	}
	if got := d.Display(ref(t, "A1")); got != "1" {
		t.Errorf("after Undo, Display(A1) = %q, want %q", got, "1")
	}

	if err := d.Redo(); err != nil {
		t.Fatalf("Redo returned error: %v", err)
	}
	if got := d.Display(ref(t, "A1")); got != "2" {
		t.Errorf("after Redo, Display(A1) = %q, want %q", got, "2")
	}
}

func TestUndoNothingToUndo(t *testing.T) {
	d := New()
	if err := d.Undo(); err != gridlineerr.ErrNothingToUndo {
		t.Errorf("Undo() on fresh document = %v, want ErrNothingToUndo", err)
	}
}

func TestInsertRowShiftsFormula(t *testing.T) {
	d := New()
	d.SetCellFromInput(ref(t, "A5"), "9")
	d.SetCellFromInput(ref(t, "A10"), "=A5")

	if err := d.InsertRow(2); err != nil {
		t.Fatalf("InsertRow returned error: %v", err)
	}
	// A5 moved to A6, A10 moved to A11, and A11's formula should track A6.
	if got := d.Display(ref(t, "A11")); got != "9" {
		t.Errorf("Display(A11) after InsertRow = %q, want %q", got, "9")
	}
}

func TestDeleteRowCollapsesReferenceToText(t *testing.T) {
	d := New()
	d.SetCellFromInput(ref(t, "A2"), "5")
	d.SetCellFromInput(ref(t, "A3"), "=A2")

	if err := d.DeleteRow(1); err != nil {
		t.Fatalf("DeleteRow returned error: %v", err)
	}
	// The deleted row (index 1, i.e. row "2") was A2's own row, so the
	// formula that referenced it collapses.
	if got := d.Display(ref(t, "A2")); got != "=#REF!" {
		t.Errorf("Display(A2) after DeleteRow = %q, want %q", got, "=#REF!")
	}
}

func TestPasteCellsOffsetsFormula(t *testing.T) {
	d := New()
	d.SetCellFromInput(ref(t, "A1"), "7")
	d.SetCellFromInput(ref(t, "A2"), "8")
	d.SetCellFromInput(ref(t, "B1"), "=A1")

	// Drag-fill style: paste B1's formula one row down from itself, which
	// shifts both its target position and its formula reference by (0,1).
	clip := []ClipboardCell{
		{ColOffset: 0, RowOffset: 1, Cell: d.Grid().Get(ref(t, "B1"))},
	}
	if err := d.PasteCells(ref(t, "B1"), clip); err != nil {
		t.Fatalf("PasteCells returned error: %v", err)
	}
	if got := d.Display(ref(t, "B2")); got != "8" {
		t.Errorf("Display(B2) after paste = %q, want %q", got, "8")
	}
}

func TestPasteCellsIntroducingCycleDisplaysSentinelWithoutFailingWholeOp(t *testing.T) {
	d := New()
	d.SetCellFromInput(ref(t, "C1"), "5")

	// PasteCells has no cycle pre-check (unlike SetCellFromInput): paste a
	// self-referencing formula directly into A1.
	clip := []ClipboardCell{
		{ColOffset: 0, RowOffset: 0, Cell: engine.NewScriptCell("A1")},
	}
	if err := d.PasteCells(ref(t, "A1"), clip); err != nil {
		t.Fatalf("PasteCells returned error: %v, want nil (a residual cycle is an in-cell condition)", err)
	}
	if got := d.Display(ref(t, "A1")); got != "#CYCLE!" {
		t.Errorf("Display(A1) = %q, want %q", got, "#CYCLE!")
	}
	// The rest of the document must still be intact and evaluated.
	if got := d.Display(ref(t, "C1")); got != "5" {
		t.Errorf("Display(C1) = %q, want %q (unrelated cell must survive the cycle elsewhere)", got, "5")
	}
}

func TestLoadFileSucceedsWithResidualCycleInGrid(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/cyclic.grd"
	if err := os.WriteFile(path, []byte("A1: =B1\nB1: =A1\nC1: 9\n"), 0o644); err != nil {
		t.Fatalf("WriteFile setup failed: %v", err)
	}
	d, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v, want nil (a residual cycle must not discard the whole document)", err)
	}
	if got := d.Display(ref(t, "A1")); got != "#CYCLE!" {
		t.Errorf("Display(A1) = %q, want %q", got, "#CYCLE!")
	}
	if got := d.Display(ref(t, "C1")); got != "9" {
		t.Errorf("Display(C1) = %q, want %q", got, "9")
	}
}

func TestLoadFunctionsMakesFunctionVisibleToFormulas(t *testing.T) {
	d := New()
	source := "let double = (x) -> x * 2"
	if err := d.LoadFunctions("functions.karl", source); err != nil {
		t.Fatalf("LoadFunctions returned error: %v", err)
	}
	if err := d.SetCellFromInput(ref(t, "A1"), "=double(21)"); err != nil {
		t.Fatalf("SetCellFromInput returned error: %v", err)
	}
	if got := d.Display(ref(t, "A1")); got != "42" {
		t.Errorf("Display(A1) = %q, want %q", got, "42")
	}
}

func TestLoadFunctionsCompileErrorLeavesPreviousInPlace(t *testing.T) {
	d := New()
	if err := d.LoadFunctions("functions.karl", "let double = (x) -> x * 2"); err != nil {
		t.Fatalf("initial LoadFunctions returned error: %v", err)
	}
	err := d.LoadFunctions("functions.karl", "let (((")
	if err == nil {
		t.Fatal("expected a compile error for malformed source")
	}
	d.SetCellFromInput(ref(t, "A1"), "=double(5)")
	if got := d.Display(ref(t, "A1")); got != "10" {
		t.Errorf("expected previously loaded function to still work, Display(A1) = %q", got)
	}
}

func TestOnChangeNotifiesAfterCommit(t *testing.T) {
	d := New()
	var notified []string
	d.OnChange(func(r engine.CellRef, display string) {
		notified = append(notified, r.String()+"="+display)
	})
	d.SetCellFromInput(ref(t, "A1"), "5")
	if len(notified) != 1 || notified[0] != "A1=5" {
		t.Errorf("notified = %v, want [A1=5]", notified)
	}
}
