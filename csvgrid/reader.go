// Package csvgrid reads a CSV file as a single-sheet workbook.
package csvgrid

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/blockgrid/grid"
)

// Reader is a one-sheet workbook backed by CSV data.
type Reader struct {
	name string
	grid *grid.Grid
}

// Open reads filename. The sheet is named after the file without its
// extension, so "PI15 - Capacity.csv" yields the sheet "PI15 - Capacity".
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	base := filepath.Base(filename)
	return OpenReader(f, strings.TrimSuffix(base, filepath.Ext(base)))
}

// OpenReader reads CSV data from r as the sheet name.
func OpenReader(r io.Reader, name string) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return &Reader{name: name, grid: grid.FromStrings(records)}, nil
}

// Close is a no-op; the data is read fully on open.
func (r *Reader) Close() error {
	return nil
}

// SheetNames returns the single sheet name.
func (r *Reader) SheetNames() []string {
	return []string{r.name}
}

// Sheet returns the grid when name matches the sheet name.
func (r *Reader) Sheet(name string) (*grid.Grid, error) {
	if name != r.name {
		return nil, fmt.Errorf("%w: %s", grid.ErrSheetNotFound, name)
	}
	return r.grid, nil
}

var _ grid.Workbook = (*Reader)(nil)
