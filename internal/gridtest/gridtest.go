// Package gridtest builds block layout grids and workbook files for tests.
package gridtest

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/tsawler/blockgrid/grid"
	"github.com/tsawler/blockgrid/layout"
	"github.com/xuri/excelize/v2"
)

// Values are the cell texts written into one record block.
type Values struct {
	// Totals maps a category name to its grand-total cell.
	Totals map[string]string
	// Periods maps a 1-based period to category cells.
	Periods map[int]map[string]string
	Before  string
	After   string
}

// Builder lays out groups and records on a template's strides.
type Builder struct {
	t      layout.Template
	cells  [][]string
	labels bool
}

// New returns an empty builder for t.
func New(t layout.Template) *Builder {
	return &Builder{t: t}
}

// Labels makes Record also write each category's label in the anchor
// column, the way real sheets show them.
func (b *Builder) Labels() *Builder {
	b.labels = true
	return b
}

// Set writes v at the 0-indexed row and column, growing the grid as needed.
func (b *Builder) Set(row, col int, v string) *Builder {
	for len(b.cells) <= row {
		b.cells = append(b.cells, nil)
	}
	for len(b.cells[row]) <= col {
		b.cells[row] = append(b.cells[row], "")
	}
	b.cells[row][col] = v
	return b
}

// GroupCol returns the anchor column of the gi-th group slot.
func (b *Builder) GroupCol(gi int) int {
	return b.t.FirstGroupCol + gi*b.t.GroupStride
}

// RecordRow returns the anchor row of the ri-th record slot.
func (b *Builder) RecordRow(ri int) int {
	return b.t.FirstRecordRow + ri*b.t.RecordStride
}

// Group writes a group label into slot gi.
func (b *Builder) Group(gi int, label string) *Builder {
	return b.Set(b.t.GroupAnchorRow, b.GroupCol(gi), label)
}

// Record writes a record label and its values into slot ri of group gi.
func (b *Builder) Record(gi, ri int, label string, v Values) *Builder {
	row, col := b.RecordRow(ri), b.GroupCol(gi)
	b.Set(row, col, label)
	for _, c := range b.t.Categories {
		if b.labels && c.Label != "" {
			b.Set(row+c.Row, col, c.Label)
		}
		if s, ok := v.Totals[c.Name]; ok {
			b.Set(row+c.Row, col+b.t.TotalCol, s)
		}
		for n, cats := range v.Periods {
			if s, ok := cats[c.Name]; ok {
				b.Set(row+c.Row, col+b.t.Periods.Start+n-1, s)
			}
		}
	}
	if v.Before != "" {
		b.Set(row+b.t.BeforeCutoff.Row, col+b.t.BeforeCutoff.Col, v.Before)
	}
	if v.After != "" {
		b.Set(row+b.t.AfterCutoff.Row, col+b.t.AfterCutoff.Col, v.After)
	}
	return b
}

// Strings returns a copy of the cell texts.
func (b *Builder) Strings() [][]string {
	out := make([][]string, len(b.cells))
	for i, row := range b.cells {
		out[i] = append([]string(nil), row...)
	}
	return out
}

// Grid returns the built grid.
func (b *Builder) Grid() *grid.Grid {
	return grid.FromStrings(b.cells)
}

// Sheet is one named sheet of a fixture workbook.
type Sheet struct {
	Name string
	Rows [][]string
}

// WriteXLSX saves sheets as an XLSX workbook at path. Cells that parse as
// numbers are written as numbers and cells starting with "=" as formulas.
func WriteXLSX(path string, sheets ...Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return err
		}

		for r, row := range s.Rows {
			for c, v := range row {
				if v == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					return err
				}
				if err := setCell(f, s.Name, cell, v); err != nil {
					return err
				}
			}
		}
	}
	return f.SaveAs(path)
}

func setCell(f *excelize.File, sheet, cell, v string) error {
	if len(v) > 1 && v[0] == '=' {
		return f.SetCellFormula(sheet, cell, v[1:])
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return f.SetCellFloat(sheet, cell, n, -1, 64)
	}
	return f.SetCellStr(sheet, cell, v)
}

// WriteCSV saves rows as a CSV file at path.
func WriteCSV(path string, rows [][]string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(out)
	if err := w.WriteAll(rows); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
