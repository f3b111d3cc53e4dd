package model

import "github.com/tsawler/blockgrid/grid"

// Block is one located record block. Row and Col are the 0-indexed
// coordinates of the record anchor cell, which held Label (trimmed) when the
// grid was scanned.
type Block struct {
	Label string `json:"label"`
	Group string `json:"group"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
}

// Anchor returns the block's anchor coordinate.
func (b Block) Anchor() grid.Coord {
	return grid.Coord{Row: b.Row, Col: b.Col}
}

// Less orders blocks canonically: by group, label, row, then column.
func (b Block) Less(o Block) bool {
	if b.Group != o.Group {
		return b.Group < o.Group
	}
	if b.Label != o.Label {
		return b.Label < o.Label
	}
	if b.Row != o.Row {
		return b.Row < o.Row
	}
	return b.Col < o.Col
}
