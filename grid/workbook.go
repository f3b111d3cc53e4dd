package grid

import (
	"errors"
	"fmt"
)

// ErrSheetNotFound is returned by Workbook.Sheet for unknown sheet names.
var ErrSheetNotFound = errors.New("sheet not found")

// Workbook is the capability every grid source provides: the list of sheet
// names, in workbook order, and the materialised used range of one sheet.
type Workbook interface {
	SheetNames() []string
	Sheet(name string) (*Grid, error)
}

// MemWorkbook is an in-memory Workbook.
type MemWorkbook struct {
	names  []string
	sheets map[string]*Grid
}

// NewWorkbook returns an empty in-memory workbook.
func NewWorkbook() *MemWorkbook {
	return &MemWorkbook{sheets: make(map[string]*Grid)}
}

// Add appends a sheet, replacing any sheet with the same name in place.
func (w *MemWorkbook) Add(name string, g *Grid) *MemWorkbook {
	if _, ok := w.sheets[name]; !ok {
		w.names = append(w.names, name)
	}
	w.sheets[name] = g
	return w
}

// SheetNames returns the sheet names in insertion order.
func (w *MemWorkbook) SheetNames() []string {
	return append([]string(nil), w.names...)
}

// Sheet returns the named sheet.
func (w *MemWorkbook) Sheet(name string) (*Grid, error) {
	g, ok := w.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, name)
	}
	return g, nil
}
