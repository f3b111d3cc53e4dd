package layout

import (
	"errors"
	"fmt"

	deepcopy "github.com/tiendc/go-deepcopy"
)

// ErrInvalidTemplate is wrapped by every error Validate returns.
var ErrInvalidTemplate = errors.New("invalid template")

// Offset is a row/column delta from a record anchor.
type Offset struct {
	Row int `yaml:"row" json:"row"`
	Col int `yaml:"col" json:"col"`
}

// ColRange is an inclusive run of relative columns.
type ColRange struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// Len returns the number of columns in the range.
func (r ColRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Category is one named category row of a block.
type Category struct {
	// Name is the key used in extracted records, e.g. "quality".
	Name string `yaml:"name" json:"name"`
	// Label is the text the sheet shows for the row in the anchor column.
	// Matches rejects a block whose non-blank label cells differ from it.
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
	// Row is the category row relative to the record anchor.
	Row int `yaml:"row" json:"row"`
}

// Template is the offset table of one block layout version.
type Template struct {
	Version string `yaml:"version" json:"version"`

	// Column distance between group anchors and row distance between
	// record anchors.
	GroupStride  int `yaml:"group_stride" json:"group_stride"`
	RecordStride int `yaml:"record_stride" json:"record_stride"`

	// Absolute, 0-indexed anchor positions.
	GroupAnchorRow int `yaml:"group_anchor_row" json:"group_anchor_row"`
	FirstGroupCol  int `yaml:"first_group_col" json:"first_group_col"`
	FirstRecordRow int `yaml:"first_record_row" json:"first_record_row"`

	// Relative offsets inside a block.
	Categories   []Category `yaml:"categories" json:"categories"`
	Periods      ColRange   `yaml:"periods" json:"periods"`
	TotalCol     int        `yaml:"total_col" json:"total_col"`
	BeforeCutoff Offset     `yaml:"before_cutoff" json:"before_cutoff"`
	AfterCutoff  Offset     `yaml:"after_cutoff" json:"after_cutoff"`

	// External names the categories summed into a record's External total.
	External []string `yaml:"external" json:"external"`

	// Reserved lists labels that sit on the record stride but are not records.
	Reserved []Reserved `yaml:"reserved" json:"reserved"`
}

// Default returns the current primary layout.
func Default() Template {
	return Template{
		Version:        "v2",
		GroupStride:    11,
		RecordStride:   25,
		GroupAnchorRow: 0,
		FirstGroupCol:  0,
		FirstRecordRow: 2,
		Categories: []Category{
			{Name: "features", Label: "Features", Row: 2},
			{Name: "enablers", Label: "Enablers", Row: 3},
			{Name: "quality", Label: "Quality", Row: 4},
			{Name: "support", Label: "Support", Row: 5},
			{Name: "unplanned", Label: "Unplanned", Row: 6},
		},
		Periods:      ColRange{Start: 1, End: 6},
		TotalCol:     7,
		BeforeCutoff: Offset{Row: 8, Col: 7},
		AfterCutoff:  Offset{Row: 9, Col: 7},
		External:     []string{"features", "support"},
		Reserved:     DefaultReserved(),
	}
}

// Legacy returns the layout used before the v2 sheet redesign.
func Legacy() Template {
	return Template{
		Version:        "v1",
		GroupStride:    10,
		RecordStride:   20,
		GroupAnchorRow: 0,
		FirstGroupCol:  0,
		FirstRecordRow: 1,
		Categories: []Category{
			{Name: "features", Label: "Features", Row: 2},
			{Name: "enablers", Label: "Enablers", Row: 3},
			{Name: "quality", Label: "Quality", Row: 4},
			{Name: "support", Label: "Support", Row: 5},
		},
		Periods:      ColRange{Start: 1, End: 5},
		TotalCol:     6,
		BeforeCutoff: Offset{Row: 7, Col: 6},
		AfterCutoff:  Offset{Row: 8, Col: 6},
		External:     []string{"features", "support"},
		Reserved:     DefaultReserved(),
	}
}

// Clone returns a deep copy of t.
func (t Template) Clone() Template {
	var out Template
	if err := deepcopy.Copy(&out, t); err != nil {
		// Template holds only plain values, slices and structs.
		panic(fmt.Sprintf("layout: cloning template: %v", err))
	}
	return out
}

// CategoryNames returns the category names in template order.
func (t Template) CategoryNames() []string {
	names := make([]string, len(t.Categories))
	for i, c := range t.Categories {
		names[i] = c.Name
	}
	return names
}

// PeriodCount returns the number of per-period columns.
func (t Template) PeriodCount() int {
	return t.Periods.Len()
}

// Validate checks the template for consistency. Every relative offset must
// fall inside one block, [0, RecordStride) x [0, GroupStride), so extraction
// can never read a neighbouring block.
func (t Template) Validate() error {
	if t.GroupStride <= 0 {
		return fmt.Errorf("%w: group stride must be positive, got %d", ErrInvalidTemplate, t.GroupStride)
	}
	if t.RecordStride <= 0 {
		return fmt.Errorf("%w: record stride must be positive, got %d", ErrInvalidTemplate, t.RecordStride)
	}
	if t.GroupAnchorRow < 0 || t.FirstGroupCol < 0 || t.FirstRecordRow < 0 {
		return fmt.Errorf("%w: anchor positions must not be negative", ErrInvalidTemplate)
	}
	if t.FirstRecordRow <= t.GroupAnchorRow {
		return fmt.Errorf("%w: first record row %d must be below group anchor row %d",
			ErrInvalidTemplate, t.FirstRecordRow, t.GroupAnchorRow)
	}
	if len(t.Categories) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidTemplate)
	}

	seen := make(map[string]bool, len(t.Categories))
	for _, c := range t.Categories {
		if c.Name == "" {
			return fmt.Errorf("%w: category with empty name", ErrInvalidTemplate)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidTemplate, c.Name)
		}
		seen[c.Name] = true
		if err := t.checkInBlock("category "+c.Name, Offset{Row: c.Row, Col: t.TotalCol}); err != nil {
			return err
		}
	}

	if t.Periods.Len() == 0 {
		return fmt.Errorf("%w: empty period range %d..%d", ErrInvalidTemplate, t.Periods.Start, t.Periods.End)
	}
	if err := t.checkInBlock("period start", Offset{Col: t.Periods.Start}); err != nil {
		return err
	}
	if err := t.checkInBlock("period end", Offset{Col: t.Periods.End}); err != nil {
		return err
	}
	if err := t.checkInBlock("before cutoff", t.BeforeCutoff); err != nil {
		return err
	}
	if err := t.checkInBlock("after cutoff", t.AfterCutoff); err != nil {
		return err
	}

	for _, name := range t.External {
		if !seen[name] {
			return fmt.Errorf("%w: external category %q is not declared", ErrInvalidTemplate, name)
		}
	}
	for _, r := range t.Reserved {
		if r.Token == "" {
			return fmt.Errorf("%w: empty reserved token", ErrInvalidTemplate)
		}
	}
	return nil
}

func (t Template) checkInBlock(what string, o Offset) error {
	if o.Row < 0 || o.Row >= t.RecordStride || o.Col < 0 || o.Col >= t.GroupStride {
		return fmt.Errorf("%w: %s offset (%d,%d) outside block %dx%d",
			ErrInvalidTemplate, what, o.Row, o.Col, t.RecordStride, t.GroupStride)
	}
	return nil
}
