// Package blockgrid extracts records from spreadsheets that repeat a fixed
// block layout along a stride, with no machine-readable headers.
//
// Basic usage:
//
//	rec, ok, err := blockgrid.Open("capacity.xlsx").Record("Team-X")
//	if err != nil {
//	    // handle error
//	}
//	if !ok {
//	    // no such team
//	}
//
// With options:
//
//	agg, ok, err := blockgrid.Open("capacity.xlsx").
//	    Param("14").
//	    Group("Payments").
//	    Aggregate("Team-X", "Team-Y")
//
// The scanning, resolution, extraction and aggregation steps are available
// separately in the layout, resolver, record and aggregate packages.
package blockgrid

import (
	"github.com/tsawler/blockgrid/grid"
)

// Open returns an Extractor for the workbook at filename. The format is
// detected from the file content and extension. The file is opened by each
// terminal operation and closed before it returns.
//
// Example:
//
//	names, err := blockgrid.Open("capacity.xlsx").SheetNames()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromWorkbook creates an Extractor over an already-opened workbook. The
// caller keeps ownership of wb.
//
// Example:
//
//	wb := grid.NewWorkbook().Add("Capacity", g)
//	rec, ok, err := blockgrid.FromWorkbook(wb).Record("Team-X")
func FromWorkbook(wb grid.Workbook) *Extractor {
	return &Extractor{
		workbook: wb,
		options:  defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	names := blockgrid.Must(blockgrid.Open("capacity.xlsx").SheetNames())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustFound is like Must for lookups that also report NotFound. It discards
// the found flag, returning the zero value when nothing was found.
//
// Example:
//
//	rec := blockgrid.MustFound(blockgrid.Open("capacity.xlsx").Record("Team-X"))
func MustFound[T any](val T, _ bool, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
