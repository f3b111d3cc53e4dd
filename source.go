package blockgrid

import (
	"fmt"
	"io"
	"os"

	"github.com/tsawler/blockgrid/csvgrid"
	"github.com/tsawler/blockgrid/format"
	"github.com/tsawler/blockgrid/grid"
	"github.com/tsawler/blockgrid/htmlgrid"
	"github.com/tsawler/blockgrid/xlsx"
)

// source is an opened workbook file.
type source interface {
	grid.Workbook
	io.Closer
}

// sniff determines a file's format from its content, falling back to the
// extension for formats without a signature.
func sniff(filename string) (format.Format, error) {
	f, err := os.Open(filename)
	if err != nil {
		return format.Unknown, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return format.Unknown, err
	}

	detected, err := format.DetectFromReader(f, info.Size())
	if err != nil {
		return format.Unknown, fmt.Errorf("detecting format: %w", err)
	}
	if detected != format.Unknown {
		return detected, nil
	}
	return format.Detect(filename), nil
}

// openSource opens filename with the grid source for its format.
func openSource(filename string, recalculate bool) (source, error) {
	ft, err := sniff(filename)
	if err != nil {
		return nil, err
	}

	switch ft {
	case format.XLSX:
		r, err := xlsx.OpenWithOptions(filename, xlsx.Options{Recalculate: recalculate})
		if err != nil {
			return nil, fmt.Errorf("failed to open XLSX: %w", err)
		}
		return r, nil
	case format.HTML:
		r, err := htmlgrid.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open HTML: %w", err)
		}
		return r, nil
	case format.CSV:
		r, err := csvgrid.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV: %w", err)
		}
		return r, nil
	case format.XLS:
		return nil, fmt.Errorf("%s: %w", filename, format.ErrLegacyBinary)
	default:
		return nil, fmt.Errorf("%s: %w", filename, format.ErrUnsupported)
	}
}
