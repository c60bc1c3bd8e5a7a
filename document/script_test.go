package document

import "testing"

func TestExecuteScriptSetsCellAndBatchesUndo(t *testing.T) {
	d := New()
	res, err := d.ExecuteScript(`SET_CELL("A1", 5)`, ScriptContext{})
	if err != nil {
		t.Fatalf("ExecuteScript returned error: %v", err)
	}
	if res.CellsModified != 1 {
		t.Errorf("CellsModified = %d, want 1", res.CellsModified)
	}
	if got := d.Display(ref(t, "A1")); got != "5" {
		t.Errorf("Display(A1) = %q, want %q", got, "5")
	}

	if err := d.Undo(); err != nil {
		t.Fatalf("Undo returned error: %v", err)
	}
	if got := d.Display(ref(t, "A1")); got != "" {
		t.Errorf("after Undo, Display(A1) = %q, want empty", got)
	}
}

func TestExecuteScriptPropagatesToDependentFormula(t *testing.T) {
	d := New()
	d.SetCellFromInput(ref(t, "B1"), "=A1+1")
	if _, err := d.ExecuteScript(`SET_CELL("A1", 9)`, ScriptContext{}); err != nil {
		t.Fatalf("ExecuteScript returned error: %v", err)
	}
	if got := d.Display(ref(t, "B1")); got != "10" {
		t.Errorf("Display(B1) = %q, want %q", got, "10")
	}
}

func TestExecuteScriptRollsBackPartialWritesOnError(t *testing.T) {
	d := New()
	d.SetCellFromInput(ref(t, "A1"), "1")
	_, err := d.ExecuteScript(`SET_CELL("A1", 99); fail("boom")`, ScriptContext{})
	if err == nil {
		t.Fatal("expected ExecuteScript to return an error")
	}
	if got := d.Display(ref(t, "A1")); got != "1" {
		t.Errorf("expected A1 to be rolled back to 1, got %q", got)
	}
}

func TestExecuteScriptExposesCursorAndSelection(t *testing.T) {
	d := New()
	ctx := ScriptContext{
		CursorRef:     ref(t, "C4"),
		HasSelection:  true,
		SelectionFrom: ref(t, "A1"),
		SelectionTo:   ref(t, "B2"),
	}
	res, err := d.ExecuteScript(`SET_CELL("A1", CURSOR_COL); SET_CELL("A2", CURSOR_ROW); SEL_END_COL + SEL_END_ROW`, ctx)
	if err != nil {
		t.Fatalf("ExecuteScript returned error: %v", err)
	}
	if got := d.Display(ref(t, "A1")); got != "2" {
		t.Errorf("CURSOR_COL written to A1 = %q, want %q", got, "2")
	}
	if got := d.Display(ref(t, "A2")); got != "3" {
		t.Errorf("CURSOR_ROW written to A2 = %q, want %q", got, "3")
	}
	if res.ReturnValue == nil || res.ReturnValue.Inspect() != "2" {
		t.Errorf("ReturnValue = %v, want 2 (SEL_END_COL=1 + SEL_END_ROW=1 for B2)", res.ReturnValue)
	}
}

func TestExecuteScriptContextConstantShadowedByScriptVariable(t *testing.T) {
	d := New()
	res, err := d.ExecuteScript(`let CURSOR_COL = 100; CURSOR_COL`, ScriptContext{CursorRef: ref(t, "A1")})
	if err != nil {
		t.Fatalf("ExecuteScript returned error: %v", err)
	}
	if res.ReturnValue.Inspect() != "100" {
		t.Errorf("ReturnValue = %v, want 100 (script-local shadow wins)", res.ReturnValue)
	}
}
