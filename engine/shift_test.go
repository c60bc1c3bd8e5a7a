package engine

import "testing"

func TestShiftFormulaReferencesInsertRow(t *testing.T) {
	got := ShiftFormulaReferences("A1+A5", ShiftOperation{Kind: InsertRow, Index: 2})
	want := "A1+A6"
	if got != want {
		t.Errorf("ShiftFormulaReferences = %q, want %q", got, want)
	}
}

func TestShiftFormulaReferencesDeleteRowCollapse(t *testing.T) {
	got := ShiftFormulaReferences("A3+1", ShiftOperation{Kind: DeleteRow, Index: 2})
	want := "#REF!+1"
	if got != want {
		t.Errorf("ShiftFormulaReferences = %q, want %q", got, want)
	}
}

func TestShiftFormulaReferencesRangeCollapsesWhole(t *testing.T) {
	got := ShiftFormulaReferences("SUM(A1:A3)", ShiftOperation{Kind: DeleteRow, Index: 0})
	want := "SUM(#REF!)"
	if got != want {
		t.Errorf("ShiftFormulaReferences = %q, want %q", got, want)
	}
}

func TestShiftFormulaReferencesIgnoresStrings(t *testing.T) {
	got := ShiftFormulaReferences(`CONCAT("A1", B5)`, ShiftOperation{Kind: InsertRow, Index: 0})
	want := `CONCAT("A1", B6)`
	if got != want {
		t.Errorf("ShiftFormulaReferences = %q, want %q", got, want)
	}
}

func TestOffsetFormulaReferences(t *testing.T) {
	got := OffsetFormulaReferences("A1+B2", 1, 2)
	want := "B3+C4"
	if got != want {
		t.Errorf("OffsetFormulaReferences = %q, want %q", got, want)
	}
}

func TestOffsetFormulaReferencesNegativeCollapse(t *testing.T) {
	got := OffsetFormulaReferences("A1", -1, 0)
	want := "#REF!"
	if got != want {
		t.Errorf("OffsetFormulaReferences = %q, want %q", got, want)
	}
}

func TestOffsetFormulaReferencesPreservesAtPrefix(t *testing.T) {
	got := OffsetFormulaReferences("@A1", 1, 0)
	want := "@B1"
	if got != want {
		t.Errorf("OffsetFormulaReferences = %q, want %q", got, want)
	}
}

func TestShiftInsertColumn(t *testing.T) {
	got := ShiftFormulaReferences("B1", ShiftOperation{Kind: InsertColumn, Index: 0})
	want := "C1"
	if got != want {
		t.Errorf("ShiftFormulaReferences = %q, want %q", got, want)
	}
}

func TestShiftDeleteColumnBelowIndexUnaffected(t *testing.T) {
	got := ShiftFormulaReferences("A1", ShiftOperation{Kind: DeleteColumn, Index: 5})
	want := "A1"
	if got != want {
		t.Errorf("ShiftFormulaReferences = %q, want %q", got, want)
	}
}
