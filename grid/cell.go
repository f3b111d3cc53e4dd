// Package grid provides the cell model shared by every grid source: typed
// cells, an immutable rectangular Grid, the Workbook capability that grid
// sources implement, and the conversions between A1 references, 1-indexed
// boundary coordinates, and the 0-indexed internal model.
package grid

import (
	"math"
	"strconv"
	"strings"
)

// CellType represents the type of data in a cell.
type CellType int

const (
	// CellTypeEmpty indicates a blank cell.
	CellTypeEmpty CellType = iota
	// CellTypeString indicates a string value.
	CellTypeString
	// CellTypeNumber indicates a numeric value.
	CellTypeNumber
	// CellTypeBoolean indicates a boolean value.
	CellTypeBoolean
	// CellTypeError indicates an error value such as #REF!.
	CellTypeError
)

// String returns the string representation of the cell type.
func (t CellType) String() string {
	switch t {
	case CellTypeEmpty:
		return "empty"
	case CellTypeString:
		return "string"
	case CellTypeNumber:
		return "number"
	case CellTypeBoolean:
		return "boolean"
	case CellTypeError:
		return "error"
	default:
		return "unknown"
	}
}

// Placeholder is the literal sheets use for "no value".
const Placeholder = "-"

// Cell is one raw cell value. Text always holds the display form; Number is
// only meaningful for CellTypeNumber.
type Cell struct {
	Type   CellType
	Text   string
	Number float64
}

// Blank returns an empty cell.
func Blank() Cell {
	return Cell{Type: CellTypeEmpty}
}

// Str returns a string cell. An empty string yields a blank cell.
func Str(s string) Cell {
	if s == "" {
		return Blank()
	}
	return Cell{Type: CellTypeString, Text: s}
}

// Num returns a numeric cell.
func Num(f float64) Cell {
	return Cell{Type: CellTypeNumber, Text: strconv.FormatFloat(f, 'f', -1, 64), Number: f}
}

// Bool returns a boolean cell rendered as TRUE or FALSE.
func Bool(b bool) Cell {
	if b {
		return Cell{Type: CellTypeBoolean, Text: "TRUE"}
	}
	return Cell{Type: CellTypeBoolean, Text: "FALSE"}
}

// Label returns the cell's text with surrounding whitespace removed.
func (c Cell) Label() string {
	return strings.TrimSpace(c.Text)
}

// IsBlank reports whether the cell carries no label once trimmed.
func (c Cell) IsBlank() bool {
	return c.Type == CellTypeEmpty || c.Label() == ""
}

// Float coerces the cell to a number. Blank cells, the placeholder "-",
// and anything that does not parse as a finite float all yield 0.
func (c Cell) Float() float64 {
	if c.Type == CellTypeNumber {
		return finite(c.Number)
	}
	s := c.Label()
	if s == "" || s == Placeholder {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
