package storage

import (
	"strings"
	"testing"

	"gridline/engine"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	grid := engine.NewGrid()
	a1, _ := engine.ParseCellRef("A1")
	b1, _ := engine.ParseCellRef("B1")
	c1, _ := engine.ParseCellRef("C1")
	grid.Set(a1, engine.NewNumberCell(3.5))
	grid.Set(b1, engine.NewTextCell(`has "quotes" and\backslash`))
	grid.Set(c1, engine.NewScriptCell("A1*2"))

	var buf strings.Builder
	if err := Save(&buf, grid); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := Load(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cell := loaded.Get(a1); cell == nil || cell.Kind != engine.KindNumber || cell.Number != 3.5 {
		t.Errorf("A1 round trip = %+v", cell)
	}
	if cell := loaded.Get(b1); cell == nil || cell.Kind != engine.KindText || cell.Text != `has "quotes" and\backslash` {
		t.Errorf("B1 round trip = %+v", cell)
	}
	if cell := loaded.Get(c1); cell == nil || cell.Kind != engine.KindScript || cell.Script != "A1*2" {
		t.Errorf("C1 round trip = %+v", cell)
	}
}

func TestLoadSkipsBlankAndCommentLines(t *testing.T) {
	src := "# Gridline Spreadsheet\n\n# a comment\nA1: 1\n"
	grid, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if grid.Len() != 1 {
		t.Errorf("expected exactly 1 cell, got %d", grid.Len())
	}
}

func TestLoadRejectsMissingColon(t *testing.T) {
	_, err := Load(strings.NewReader("A1 1\n"))
	if err == nil {
		t.Error("expected a parse error for a line missing ':'")
	}
}

func TestLoadRejectsInvalidRef(t *testing.T) {
	_, err := Load(strings.NewReader("1A: 1\n"))
	if err == nil {
		t.Error("expected a parse error for an invalid cell reference")
	}
}

func TestQuoteUnquoteNewline(t *testing.T) {
	s := "line one\nline two"
	q := quote(s)
	got, err := unquote(q)
	if err != nil {
		t.Fatalf("unquote returned error: %v", err)
	}
	if got != s {
		t.Errorf("quote/unquote round trip = %q, want %q", got, s)
	}
}

func TestSaveSkipsEmptyCells(t *testing.T) {
	grid := engine.NewGrid()
	a1, _ := engine.ParseCellRef("A1")
	grid.Set(a1, engine.NewEmptyCell())

	var buf strings.Builder
	if err := Save(&buf, grid); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if strings.Contains(buf.String(), "A1") {
		t.Errorf("expected an Empty cell to be omitted from output, got %q", buf.String())
	}
}
