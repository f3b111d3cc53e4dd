package layout

import (
	"strings"

	"github.com/tsawler/blockgrid/grid"
	"github.com/tsawler/blockgrid/model"
)

// Group is one discovered group anchor.
type Group struct {
	Label string
	Col   int
}

// Groups returns the group anchors in column order. A column on the group
// stride counts as a group when its anchor-row cell is non-blank.
func Groups(g *grid.Grid, t Template) []Group {
	if t.GroupStride <= 0 {
		return nil
	}
	var groups []Group
	for col := t.FirstGroupCol; col < g.Width(); col += t.GroupStride {
		cell := g.At(t.GroupAnchorRow, col)
		if cell.IsBlank() {
			continue
		}
		groups = append(groups, Group{Label: cell.Label(), Col: col})
	}
	return groups
}

// Scan locates every record block in g. Blocks come back in group order,
// then row order, which is stable for a given grid. A group with no records
// contributes nothing.
func Scan(g *grid.Grid, t Template) []model.Block {
	if t.RecordStride <= 0 {
		return nil
	}
	var blocks []model.Block
	for _, grp := range Groups(g, t) {
		for row := t.FirstRecordRow; row < g.Height(); row += t.RecordStride {
			cell := g.At(row, grp.Col)
			if cell.IsBlank() {
				continue
			}
			label := cell.Label()
			if t.IsReserved(label) {
				continue
			}
			blocks = append(blocks, model.Block{
				Label: label,
				Group: grp.Label,
				Row:   row,
				Col:   grp.Col,
			})
		}
	}
	return blocks
}

// Matches reports whether g is laid out as t. At least one record block must
// sit on t's strides, and where the sheet labels the category rows in the
// anchor column those labels must be t's. Layouts that share a group anchor
// cell are told apart this way.
func Matches(g *grid.Grid, t Template) bool {
	for _, b := range Scan(g, t) {
		if t.labelsFit(g, b) {
			return true
		}
	}
	return false
}

func (t Template) labelsFit(g *grid.Grid, b model.Block) bool {
	for _, c := range t.Categories {
		cell := g.At(b.Row+c.Row, b.Col)
		if c.Label == "" || cell.IsBlank() {
			continue
		}
		if !strings.EqualFold(cell.Label(), c.Label) {
			return false
		}
	}
	return true
}
