// Package record projects a layout template onto a located block.
package record

import (
	"github.com/tsawler/blockgrid/grid"
	"github.com/tsawler/blockgrid/layout"
	"github.com/tsawler/blockgrid/model"
)

// Extract reads the record anchored at b. Every value goes through
// grid.Cell.Float, so blanks, "-" placeholders and text that is not a
// number read as 0 and Extract never fails. Only cells inside the block's
// own span are read; offsets come from t, which is expected to have passed
// Validate.
func Extract(g *grid.Grid, b model.Block, t layout.Template) model.Record {
	anchor := b.Anchor()
	at := func(dRow, dCol int) float64 {
		return g.AtCoord(anchor.Offset(dRow, dCol)).Float()
	}

	rec := model.Record{
		Identifier: b.Label,
		Group:      b.Group,
		Categories: make(map[string]float64, len(t.Categories)),
		Periods:    make(map[int]map[string]float64, t.PeriodCount()),
	}

	for n := 1; n <= t.PeriodCount(); n++ {
		rec.Periods[n] = make(map[string]float64, len(t.Categories))
	}

	for _, c := range t.Categories {
		rec.Categories[c.Name] = at(c.Row, t.TotalCol)
		for n := 1; n <= t.PeriodCount(); n++ {
			rec.Periods[n][c.Name] = at(c.Row, t.Periods.Start+n-1)
		}
	}

	rec.BeforeCutoff = at(t.BeforeCutoff.Row, t.BeforeCutoff.Col)
	rec.AfterCutoff = at(t.AfterCutoff.Row, t.AfterCutoff.Col)

	// Sum in template order so the result does not depend on map iteration.
	for _, c := range t.Categories {
		rec.Total += rec.Categories[c.Name]
	}
	for _, name := range t.External {
		rec.External += rec.Categories[name]
	}

	return rec
}

// ExtractAll extracts every block in order.
func ExtractAll(g *grid.Grid, blocks []model.Block, t layout.Template) []model.Record {
	recs := make([]model.Record, len(blocks))
	for i, b := range blocks {
		recs[i] = Extract(g, b, t)
	}
	return recs
}
