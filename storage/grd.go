// Package storage implements gridline's native line-oriented save format
// (".grd"): one "REF: VALUE" line per populated cell, with bare numbers,
// quoted-and-escaped text, and "=formula" scripts as the three VALUE forms.
package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"gridline/engine"
	"gridline/gridlineerr"
)

const header = "# Gridline Spreadsheet"

// Load reads a .grd document from r into a fresh Grid.
func Load(r io.Reader) (*engine.Grid, error) {
	grid := engine.NewGrid()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		colonIdx := strings.IndexByte(line, ':')
		if colonIdx < 0 {
			return nil, &gridlineerr.ParseError{Line: lineNo, Message: "missing ':' separator"}
		}
		refText := strings.TrimSpace(line[:colonIdx])
		valueText := strings.TrimSpace(line[colonIdx+1:])

		ref, ok := engine.ParseCellRef(refText)
		if !ok {
			return nil, &gridlineerr.ParseError{Line: lineNo, Message: fmt.Sprintf("invalid cell reference %q", refText)}
		}

		cell, err := parseCellValue(valueText)
		if err != nil {
			return nil, &gridlineerr.ParseError{Line: lineNo, Message: err.Error()}
		}
		grid.Set(ref, cell)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return grid, nil
}

func parseCellValue(text string) (*engine.Cell, error) {
	switch {
	case text == "":
		return engine.NewEmptyCell(), nil
	case strings.HasPrefix(text, "="):
		return engine.NewScriptCell(text[1:]), nil
	case strings.HasPrefix(text, `"`):
		s, err := unquote(text)
		if err != nil {
			return nil, err
		}
		return engine.NewTextCell(s), nil
	default:
		if n, err := strconv.ParseFloat(text, 64); err == nil {
			return engine.NewNumberCell(n), nil
		}
		return engine.NewTextCell(text), nil
	}
}

func unquote(text string) (string, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", fmt.Errorf("unterminated quoted text %q", text)
	}
	inner := text[1 : len(text)-1]
	var out strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 'n':
				out.WriteByte('\n')
			default:
				out.WriteByte(inner[i])
			}
			continue
		}
		out.WriteByte(inner[i])
	}
	return out.String(), nil
}

func quote(s string) string {
	var out strings.Builder
	out.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '"':
			out.WriteByte('\\')
			out.WriteByte(s[i])
		case '\n':
			out.WriteString(`\n`)
		default:
			out.WriteByte(s[i])
		}
	}
	out.WriteByte('"')
	return out.String()
}

// Save writes grid to w in .grd form: a header comment, then every
// non-empty cell sorted by (row, col), one per line, with a trailing
// newline.
func Save(w io.Writer, grid *engine.Grid) error {
	buf := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(buf, header); err != nil {
		return err
	}

	refs := grid.Refs()
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Row != refs[j].Row {
			return refs[i].Row < refs[j].Row
		}
		return refs[i].Col < refs[j].Col
	})

	for _, ref := range refs {
		cell := grid.Get(ref)
		if cell == nil || cell.Kind == engine.KindEmpty {
			continue
		}
		valueText, err := formatCellValue(cell)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(buf, "%s: %s\n", ref.String(), valueText); err != nil {
			return err
		}
	}

	return buf.Flush()
}

func formatCellValue(cell *engine.Cell) (string, error) {
	switch cell.Kind {
	case engine.KindNumber:
		return engine.FormatNumber(cell.Number), nil
	case engine.KindText:
		return quote(cell.Text), nil
	case engine.KindScript:
		return "=" + cell.Script, nil
	default:
		return "", fmt.Errorf("cannot format cell kind %d", cell.Kind)
	}
}

// LoadFile opens path and parses it as a .grd document.
func LoadFile(path string) (*engine.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, gridlineerr.IOError(path, err)
	}
	defer f.Close()
	grid, err := Load(f)
	if err != nil {
		if _, ok := err.(*gridlineerr.ParseError); ok {
			return nil, err
		}
		return nil, gridlineerr.IOError(path, err)
	}
	return grid, nil
}

// SaveFile writes grid to path in .grd form, truncating any existing file.
func SaveFile(path string, grid *engine.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return gridlineerr.IOError(path, err)
	}
	defer f.Close()
	if err := Save(f, grid); err != nil {
		return gridlineerr.IOError(path, err)
	}
	return nil
}
