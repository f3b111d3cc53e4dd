package blockgrid

import (
	"fmt"
	"log"

	"github.com/tsawler/blockgrid/aggregate"
	"github.com/tsawler/blockgrid/grid"
	"github.com/tsawler/blockgrid/layout"
	"github.com/tsawler/blockgrid/model"
	"github.com/tsawler/blockgrid/record"
	"github.com/tsawler/blockgrid/resolver"
)

// Request carries the per-call settings an Extractor hands to a Handler.
type Request struct {
	// Param is substituted into the sheet name pattern when set.
	Param string
	// Group restricts lookups to groups whose label contains it.
	Group string
	// Logger receives diagnostics. A nil Logger discards them.
	Logger *log.Logger
}

func (r Request) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

// Handler serves one physical workbook layout. An Extractor holds an
// ordered list of handlers and lets the first one that locates its sheet
// serve each request.
//
// Locate reads the data sheet once per request; the lookups then work on
// that grid. Lookups report NotFound through their bool result. Errors are
// reserved for failures of the underlying workbook.
type Handler interface {
	Name() string
	Locate(wb grid.Workbook, req Request) (*grid.Grid, bool, error)
	Blocks(g *grid.Grid, req Request) []model.Block
	Record(g *grid.Grid, id string, req Request) (model.Record, bool)
	Aggregate(g *grid.Grid, allowed []string, req Request) model.Aggregate
}

// Format is a Handler driven by a layout template and a sheet spec.
type Format struct {
	name     string
	template layout.Template
	sheet    resolver.SheetSpec
}

// NewFormat returns a Format after validating t.
func NewFormat(name string, t layout.Template, sheet resolver.SheetSpec) (*Format, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("format %s: %w", name, err)
	}
	return &Format{name: name, template: t.Clone(), sheet: sheet}, nil
}

// Primary returns the handler for the current layout.
func Primary() *Format {
	return &Format{
		name:     "primary",
		template: layout.Default(),
		sheet: resolver.SheetSpec{
			Pattern:   "PI{PI_NUMBER} - Capacity",
			Fallbacks: []string{"Capacity", "Team Capacity"},
		},
	}
}

// Legacy returns the handler for the layout used before the current one.
func Legacy() *Format {
	return &Format{
		name:     "legacy",
		template: layout.Legacy(),
		sheet: resolver.SheetSpec{
			Fallbacks: []string{"Capacity", "Capacity Plan"},
		},
	}
}

// Name returns the handler name.
func (f *Format) Name() string { return f.name }

// Template returns a copy of the format's offset table.
func (f *Format) Template() layout.Template { return f.template.Clone() }

// SheetSpec returns the rule used to find the data sheet.
func (f *Format) SheetSpec() resolver.SheetSpec {
	spec := f.sheet
	spec.Fallbacks = append([]string(nil), f.sheet.Fallbacks...)
	return spec
}

// Locate resolves and materialises the data sheet. ok is false when no sheet
// matches or the matching sheet is not laid out as the format's template.
func (f *Format) Locate(wb grid.Workbook, req Request) (*grid.Grid, bool, error) {
	spec := f.sheet
	spec.Param = req.Param

	m, ok := resolver.ResolveSheet(wb.SheetNames(), spec)
	if !ok {
		req.logf("%s: no sheet matches %q or fallbacks %q", f.name, spec.Pattern, spec.Fallbacks)
		return nil, false, nil
	}
	req.logf("%s: using sheet %q (%s)", f.name, m.Name, m.Tier)

	g, err := wb.Sheet(m.Name)
	if err != nil {
		return nil, false, fmt.Errorf("reading sheet %q: %w", m.Name, err)
	}
	if !layout.Matches(g, f.template) {
		req.logf("%s: sheet %q does not use the %s layout", f.name, m.Name, f.template.Version)
		return nil, false, nil
	}
	return g, true, nil
}

// Blocks scans g, keeping the blocks whose group passes req.Group.
func (f *Format) Blocks(g *grid.Grid, req Request) []model.Block {
	var kept []model.Block
	for _, b := range layout.Scan(g, f.template) {
		if resolver.GroupMatches(req.Group, b.Group) {
			kept = append(kept, b)
		}
	}
	return kept
}

// Record resolves id and extracts its block.
func (f *Format) Record(g *grid.Grid, id string, req Request) (model.Record, bool) {
	b, tier := resolver.ResolveIdentifierTier(layout.Scan(g, f.template), id, req.Group)
	if tier == resolver.TierNone {
		req.logf("%s: identifier %q not found", f.name, id)
		return model.Record{}, false
	}
	req.logf("%s: identifier %q resolved to %q at %s (%s)", f.name, id, b.Label, b.Anchor(), tier)
	return record.Extract(g, b, f.template), true
}

// Aggregate folds every record of g that passes allowed and req.Group.
func (f *Format) Aggregate(g *grid.Grid, allowed []string, req Request) model.Aggregate {
	return aggregate.Aggregate(g, layout.Scan(g, f.template), f.template, aggregate.Options{
		Group:   req.Group,
		Allowed: allowed,
	})
}

var _ Handler = (*Format)(nil)
