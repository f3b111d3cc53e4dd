// Package layout describes where record blocks live in a grid and finds
// them.
//
// A [Template] is the versioned offset table for one physical sheet layout:
// group anchors repeat along the anchor row every GroupStride columns, and
// within each group record anchors repeat down the group's first column
// every RecordStride rows. Every field of a record is addressed relative to
// its anchor cell.
//
// # Scanning
//
// [Scan] walks the anchor positions only, never every cell:
//
//	tmpl := layout.Default()
//	for _, b := range layout.Scan(g, tmpl) {
//	    fmt.Println(b.Group, b.Label, b.Row, b.Col)
//	}
//
// Rows that share the record stride but are section headers are excluded
// through the template's reserved labels.
//
// # Versions
//
// [Default] and [Legacy] return the two shipped layouts. Templates are plain
// values, so several versions can be used side by side; [LoadTemplate]
// reads one from YAML.
package layout
