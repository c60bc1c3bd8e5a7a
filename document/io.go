package document

import (
	"encoding/csv"
	"os"
	"sort"

	"gridline/engine"
	"gridline/gridlineerr"
	"gridline/storage"
)

// LoadFile replaces the document's contents with the .grd file at path,
// clearing undo/redo history and any loaded custom functions (they must be
// reloaded explicitly, since a document file never embeds its own
// functions file path).
func LoadFile(path string) (*Document, error) {
	grid, err := storage.LoadFile(path)
	if err != nil {
		return nil, err
	}
	d := New()
	d.grid = grid
	d.filePath = path
	d.rebuildDependents()
	d.grid.Each(func(ref engine.CellRef, cell *engine.Cell) {
		if cell.Kind == engine.KindScript {
			cell.Dirty = true
		}
	})
	if err := d.evaluateAll(); err != nil {
		return nil, err
	}
	d.modified = false
	return d, nil
}

// SaveFile writes the document to path (or, if path is "", to its current
// FilePath, failing with gridlineerr.ErrNoFilePath if it has none).
func (d *Document) SaveFile(path string) error {
	if path == "" {
		path = d.filePath
	}
	if path == "" {
		return gridlineerr.ErrNoFilePath
	}
	if err := storage.SaveFile(path, d.grid); err != nil {
		return err
	}
	d.filePath = path
	d.modified = false
	return nil
}

// ExportCSV writes every populated row/column of the document's display
// values to path as CSV, covering the rectangle from A1 through the
// furthest populated cell. Returns gridlineerr.ErrEmptyCSV for an
// entirely empty document.
func (d *Document) ExportCSV(path string) error {
	refs := d.grid.Refs()
	if len(refs) == 0 {
		return gridlineerr.ErrEmptyCSV
	}

	var maxCol, maxRow uint32
	for _, ref := range refs {
		if ref.Col > maxCol {
			maxCol = ref.Col
		}
		if ref.Row > maxRow {
			maxRow = ref.Row
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return gridlineerr.IOError(path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for row := uint32(0); row <= maxRow; row++ {
		record := make([]string, maxCol+1)
		for col := uint32(0); col <= maxCol; col++ {
			record[col] = d.Display(engine.CellRef{Col: col, Row: row})
		}
		if err := w.Write(record); err != nil {
			return gridlineerr.IOError(path, err)
		}
	}
	w.Flush()
	return w.Error()
}

// SortedRefs returns every populated cell position in row-major order, a
// convenience for frontends rendering the whole grid.
func (d *Document) SortedRefs() []engine.CellRef {
	refs := d.grid.Refs()
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Row != refs[j].Row {
			return refs[i].Row < refs[j].Row
		}
		return refs[i].Col < refs[j].Col
	})
	return refs
}
