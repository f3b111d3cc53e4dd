package xlsx

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/tsawler/blockgrid/grid"
)

// recalculate evaluates the formula cells that were saved without a cached
// value. Cells the calculation engine cannot evaluate stay blank.
func (r *Reader) recalculate(filename string) error {
	if r.Uncached() == 0 {
		return nil
	}

	f, err := excelize.OpenFile(filename)
	if err != nil {
		return fmt.Errorf("opening workbook for recalculation: %w", err)
	}
	defer f.Close()

	for _, s := range r.sheets {
		remaining := s.uncached[:0]
		for _, c := range s.uncached {
			v, err := f.CalcCellValue(s.name, c.Ref())
			if err != nil || v == "" {
				remaining = append(remaining, c)
				continue
			}
			s.cells[c.Row][c.Col] = calculatedCell(v)
		}
		s.uncached = remaining
	}
	return nil
}

func calculatedCell(v string) grid.Cell {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return grid.Num(n)
	}
	return grid.Str(v)
}
