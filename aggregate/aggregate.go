// Package aggregate folds extracted records into grouped summaries.
package aggregate

import (
	"sort"

	"github.com/tsawler/blockgrid/grid"
	"github.com/tsawler/blockgrid/layout"
	"github.com/tsawler/blockgrid/model"
	"github.com/tsawler/blockgrid/record"
	"github.com/tsawler/blockgrid/resolver"
)

// Options narrows an aggregation pass.
type Options struct {
	// Group keeps only blocks whose group label contains it, ignoring case.
	Group string
	// Allowed, when non-empty, keeps only records whose label matches one of
	// its entries; accepted records are filed under the matching entry.
	Allowed []string
}

// Aggregate extracts and folds every block that passes opts. Rejected
// records are dropped silently. Blocks are folded in canonical order, so the
// result is identical for any permutation of blocks.
func Aggregate(g *grid.Grid, blocks []model.Block, t layout.Template, opts Options) model.Aggregate {
	kept := make([]model.Block, 0, len(blocks))
	for _, b := range blocks {
		if resolver.GroupMatches(opts.Group, b.Group) {
			kept = append(kept, b)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Less(kept[j]) })

	agg := model.NewAggregate()
	for _, b := range kept {
		key := b.Label
		if len(opts.Allowed) > 0 {
			id, ok := resolver.Match(b.Label, opts.Allowed)
			if !ok {
				continue
			}
			key = id
		}
		Fold(&agg, key, record.Extract(g, b, t), t)
	}
	return agg
}

// Fold adds rec to agg under key. Categories are added in template order.
func Fold(agg *model.Aggregate, key string, rec model.Record, t layout.Template) {
	for _, name := range t.CategoryNames() {
		v := rec.Categories[name]
		agg.ByCategory[name] += v
		agg.Total += v
	}

	totals, ok := agg.ByIdentifier[key]
	if !ok {
		totals = model.NewTotals(key)
	}
	totals.Add(rec)
	agg.ByIdentifier[key] = totals
}
