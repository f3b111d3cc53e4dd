package blockgrid

import (
	"errors"
	"fmt"
	"log"

	"github.com/tsawler/blockgrid/grid"
	"github.com/tsawler/blockgrid/model"
)

// Extractor provides a fluent interface for reading records out of block
// layout workbooks. Each configuration method returns a new Extractor
// instance, making it safe for concurrent use and allowing method chaining.
//
// Every terminal operation reads the workbook afresh and rescans it; nothing
// is cached between calls.
type Extractor struct {
	// Source; exactly one is set
	filename string
	workbook grid.Workbook

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename: e.filename,
		workbook: e.workbook,
		options:  e.options.clone(),
		err:      e.err,
	}
}

// withWorkbook runs fn against the workbook, opening and closing the file
// when the Extractor was created with Open.
func (e *Extractor) withWorkbook(fn func(wb grid.Workbook) error) error {
	if e.err != nil {
		return e.err
	}
	if e.workbook != nil {
		return fn(e.workbook)
	}
	if e.filename == "" {
		return fmt.Errorf("no filename specified")
	}

	src, err := openSource(e.filename, e.options.recalculate)
	if err != nil {
		return err
	}
	defer src.Close()
	return fn(src)
}

// serve returns the first handler that locates its sheet in wb, with the
// sheet it read. ok is false when no handler recognises the workbook.
func (e *Extractor) serve(wb grid.Workbook, req Request) (Handler, *grid.Grid, bool, error) {
	for _, h := range e.options.handlers {
		g, ok, err := h.Locate(wb, req)
		if err != nil {
			return nil, nil, false, fmt.Errorf("%s: %w", h.Name(), err)
		}
		if ok {
			req.logf("serving with %s handler", h.Name())
			return h, g, true, nil
		}
		req.logf("%s handler not available", h.Name())
	}
	return nil, nil, false, nil
}

// ============================================================================
// Configuration Methods (return new Extractor instance)
// ============================================================================

// Group restricts lookups to groups whose label contains g, ignoring case.
// An empty g matches every group.
//
// Example:
//
//	rec, ok, err := blockgrid.Open("capacity.xlsx").Group("Payments").Record("Team-X")
func (e *Extractor) Group(g string) *Extractor {
	newExt := e.clone()
	newExt.options.group = g
	return newExt
}

// Param sets the value substituted into a handler's sheet name pattern, for
// example the planning increment number in "PI{PI_NUMBER} - Capacity".
//
// Example:
//
//	rec, ok, err := blockgrid.Open("capacity.xlsx").Param("14").Record("Team-X")
func (e *Extractor) Param(p string) *Extractor {
	newExt := e.clone()
	newExt.options.param = p
	return newExt
}

// Handlers replaces the ordered list of layout handlers. The first handler
// available for a workbook serves each request. The default list is
// Primary followed by Legacy.
//
// Example:
//
//	rec, ok, err := blockgrid.Open("old.xlsx").Handlers(blockgrid.Legacy()).Record("Team-X")
func (e *Extractor) Handlers(hs ...Handler) *Extractor {
	newExt := e.clone()
	if len(hs) == 0 {
		newExt.err = errors.New("at least one handler is required")
		return newExt
	}
	newExt.options.handlers = append([]Handler(nil), hs...)
	return newExt
}

// Logger directs diagnostics (handler selection, sheet resolution,
// unresolved identifiers) to l. By default they are discarded.
//
// Example:
//
//	ext := blockgrid.Open("capacity.xlsx").Logger(log.New(os.Stderr, "blockgrid: ", 0))
func (e *Extractor) Logger(l *log.Logger) *Extractor {
	newExt := e.clone()
	newExt.options.logger = l
	return newExt
}

// Recalculate evaluates XLSX formula cells saved without a cached value
// before reading them. It has no effect on other formats or on workbooks
// passed to FromWorkbook.
//
// Example:
//
//	rec, ok, err := blockgrid.Open("generated.xlsx").Recalculate().Record("Team-X")
func (e *Extractor) Recalculate() *Extractor {
	newExt := e.clone()
	newExt.options.recalculate = true
	return newExt
}

// ============================================================================
// Terminal Operations (read the workbook and return results)
// ============================================================================

// SheetNames returns the workbook's sheet names in workbook order.
//
// Example:
//
//	names, err := blockgrid.Open("capacity.xlsx").SheetNames()
func (e *Extractor) SheetNames() ([]string, error) {
	var names []string
	err := e.withWorkbook(func(wb grid.Workbook) error {
		names = wb.SheetNames()
		return nil
	})
	return names, err
}

// Available reports whether the primary (first) handler recognises the
// workbook: its sheet resolves and is laid out as its template.
//
// Example:
//
//	ok, err := blockgrid.Open("capacity.xlsx").Available()
func (e *Extractor) Available() (bool, error) {
	var ok bool
	err := e.withWorkbook(func(wb grid.Workbook) error {
		if len(e.options.handlers) == 0 {
			return nil
		}
		var err error
		_, ok, err = e.options.handlers[0].Locate(wb, e.options.request())
		return err
	})
	return ok, err
}

// Serving returns the name of the handler that would serve requests for the
// workbook. ok is false when no handler is available.
func (e *Extractor) Serving() (name string, ok bool, err error) {
	err = e.withWorkbook(func(wb grid.Workbook) error {
		h, _, found, err := e.serve(wb, e.options.request())
		if err != nil || !found {
			return err
		}
		name, ok = h.Name(), true
		return nil
	})
	return name, ok, err
}

// Blocks returns the located blocks of the workbook, in group then row
// order, restricted by Group.
//
// Example:
//
//	blocks, ok, err := blockgrid.Open("capacity.xlsx").Blocks()
func (e *Extractor) Blocks() ([]model.Block, bool, error) {
	var (
		blocks []model.Block
		ok     bool
	)
	err := e.withWorkbook(func(wb grid.Workbook) error {
		req := e.options.request()
		h, g, found, err := e.serve(wb, req)
		if err != nil || !found {
			return err
		}
		blocks, ok = h.Blocks(g, req), true
		return nil
	})
	return blocks, ok, err
}

// Record resolves id to a block and extracts it. Resolution tries an exact
// match of the normalized labels first, then containment either way. ok is
// false when no handler is available or id matches no block.
//
// Example:
//
//	rec, ok, err := blockgrid.Open("capacity.xlsx").Record("team x")
func (e *Extractor) Record(id string) (model.Record, bool, error) {
	var (
		rec model.Record
		ok  bool
	)
	err := e.withWorkbook(func(wb grid.Workbook) error {
		req := e.options.request()
		h, g, found, err := e.serve(wb, req)
		if err != nil || !found {
			return err
		}
		rec, ok = h.Record(g, id, req)
		return nil
	})
	return rec, ok, err
}

// Aggregate folds the records of every block that passes Group. With
// allowed identifiers, only matching records are kept and each is filed
// under the allowed identifier it matched; otherwise every record is kept
// under its own label. ok is false when no handler is available; the
// aggregate is then empty rather than nil.
//
// Example:
//
//	agg, ok, err := blockgrid.Open("capacity.xlsx").Group("Payments").Aggregate()
func (e *Extractor) Aggregate(allowed ...string) (model.Aggregate, bool, error) {
	var (
		agg model.Aggregate
		ok  bool
	)
	err := e.withWorkbook(func(wb grid.Workbook) error {
		req := e.options.request()
		h, g, found, err := e.serve(wb, req)
		if err != nil || !found {
			return err
		}
		agg, ok = h.Aggregate(g, allowed, req), true
		return nil
	})
	if !ok {
		agg = model.NewAggregate()
	}
	return agg, ok, err
}

// PeriodSlice returns the per-category values of period n (1-based) for the
// record matching id. ok is false when the record is not found or has no
// period n.
//
// Example:
//
//	slice, ok, err := blockgrid.Open("capacity.xlsx").PeriodSlice("Team-X", 3)
func (e *Extractor) PeriodSlice(id string, n int) (map[string]float64, bool, error) {
	rec, ok, err := e.Record(id)
	if err != nil || !ok {
		return nil, false, err
	}
	slice, ok := rec.Period(n)
	return slice, ok, nil
}

// Summary returns the before-cutoff or after-cutoff summary value of the
// record matching id. It returns 0 when the record is not found.
//
// Example:
//
//	before, err := blockgrid.Open("capacity.xlsx").Summary("Team-X", true)
func (e *Extractor) Summary(id string, beforeCutoff bool) (float64, error) {
	rec, ok, err := e.Record(id)
	if err != nil || !ok {
		return 0, err
	}
	return rec.Summary(beforeCutoff), nil
}
