package grid

// Grid is an immutable rectangular array of cells, 0-indexed. Rows shorter
// than Width read as blank past their end. A Grid must not be modified while
// a scan, extraction, or aggregation pass over it is in progress; the type
// offers no mutators, and its constructors copy their input.
type Grid struct {
	rows  [][]Cell
	width int
}

// New builds a Grid from rows of cells. The input is copied.
func New(rows [][]Cell) *Grid {
	g := &Grid{rows: make([][]Cell, len(rows))}
	for i, row := range rows {
		g.rows[i] = append([]Cell(nil), row...)
		if len(row) > g.width {
			g.width = len(row)
		}
	}
	return g
}

// FromStrings builds a Grid of string cells. Empty strings become blank
// cells. Numeric-looking strings stay strings; coercion happens on read.
func FromStrings(rows [][]string) *Grid {
	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, len(row))
		for j, s := range row {
			cells[i][j] = Str(s)
		}
	}
	return New(cells)
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	if g == nil {
		return 0
	}
	return len(g.rows)
}

// Width returns the number of columns of the widest row.
func (g *Grid) Width() int {
	if g == nil {
		return 0
	}
	return g.width
}

// At returns the cell at the 0-indexed row and column. Coordinates outside
// the grid yield a blank cell.
func (g *Grid) At(row, col int) Cell {
	if g == nil || row < 0 || row >= len(g.rows) {
		return Blank()
	}
	r := g.rows[row]
	if col < 0 || col >= len(r) {
		return Blank()
	}
	return r[col]
}

// AtCoord returns the cell at c.
func (g *Grid) AtCoord(c Coord) Cell {
	return g.At(c.Row, c.Col)
}

// Cell returns the cell at the 1-indexed row and column, the convention
// used by spreadsheet applications.
func (g *Grid) Cell(row, col int) Cell {
	return g.AtCoord(External(row, col))
}

// Contains reports whether c lies inside the grid.
func (g *Grid) Contains(c Coord) bool {
	return c.Row >= 0 && c.Row < g.Height() && c.Col >= 0 && c.Col < g.Width()
}
