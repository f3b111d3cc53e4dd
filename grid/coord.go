package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord is a 0-indexed cell coordinate. All block and offset arithmetic
// inside the module uses Coord; 1-indexed values only appear at the grid
// source boundary and are converted with External.
type Coord struct {
	Row int
	Col int
}

// External converts 1-indexed row and column numbers, as used by
// spreadsheet applications, into a 0-indexed Coord.
func External(row, col int) Coord {
	return Coord{Row: row - 1, Col: col - 1}
}

// External returns the 1-indexed row and column numbers of c.
func (c Coord) External() (row, col int) {
	return c.Row + 1, c.Col + 1
}

// Offset returns c shifted by the given row and column deltas.
func (c Coord) Offset(dRow, dCol int) Coord {
	return Coord{Row: c.Row + dRow, Col: c.Col + dCol}
}

// Ref returns the A1-style reference of c, e.g. {Row: 0, Col: 27} is "AB1".
func (c Coord) Ref() string {
	return fmt.Sprintf("%s%d", IndexToColumn(c.Col), c.Row+1)
}

// String implements fmt.Stringer.
func (c Coord) String() string {
	return c.Ref()
}

// ParseRef parses a cell reference like "A1" or "AA100" into a Coord.
func ParseRef(ref string) (Coord, error) {
	if ref == "" {
		return Coord{}, fmt.Errorf("empty cell reference")
	}

	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}
	if i == 0 {
		return Coord{}, fmt.Errorf("invalid cell reference %q: no column letters", ref)
	}
	if i == len(ref) {
		return Coord{}, fmt.Errorf("invalid cell reference %q: no row number", ref)
	}

	col := ColumnToIndex(ref[:i])
	if col < 0 {
		return Coord{}, fmt.Errorf("invalid column: %s", ref[:i])
	}

	rowNum, err := strconv.Atoi(ref[i:])
	if err != nil || rowNum < 1 {
		return Coord{}, fmt.Errorf("invalid row: %s", ref[i:])
	}

	return Coord{Row: rowNum - 1, Col: col}, nil
}

// ParseRange parses a range reference like "A1:D10".
func ParseRange(ref string) (start, end Coord, err error) {
	parts := strings.Split(ref, ":")
	if len(parts) != 2 {
		return Coord{}, Coord{}, fmt.Errorf("invalid range reference: %s", ref)
	}
	if start, err = ParseRef(parts[0]); err != nil {
		return Coord{}, Coord{}, fmt.Errorf("invalid start cell: %w", err)
	}
	if end, err = ParseRef(parts[1]); err != nil {
		return Coord{}, Coord{}, fmt.Errorf("invalid end cell: %w", err)
	}
	return start, end, nil
}

// ColumnToIndex converts column letters to a 0-indexed column number.
// A=0, B=1, ..., Z=25, AA=26. It returns -1 for anything that is not letters.
func ColumnToIndex(col string) int {
	if col == "" {
		return -1
	}
	result := 0
	for _, c := range strings.ToUpper(col) {
		if c < 'A' || c > 'Z' {
			return -1
		}
		result = result*26 + int(c-'A') + 1
	}
	return result - 1
}

// IndexToColumn converts a 0-indexed column number to column letters.
func IndexToColumn(index int) string {
	if index < 0 {
		return ""
	}

	result := ""
	index++
	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}
	return result
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
