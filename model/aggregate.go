package model

import "sort"

// Totals accumulates the records filed under one identifier.
type Totals struct {
	Identifier   string                     `json:"identifier"`
	Groups       []string                   `json:"groups"`
	Blocks       int                        `json:"blocks"`
	Categories   map[string]float64         `json:"categories"`
	Periods      map[int]map[string]float64 `json:"periods"`
	BeforeCutoff float64                    `json:"before_cutoff"`
	AfterCutoff  float64                    `json:"after_cutoff"`
	Total        float64                    `json:"total"`
	External     float64                    `json:"external"`
}

// NewTotals returns empty totals for id.
func NewTotals(id string) Totals {
	return Totals{
		Identifier: id,
		Categories: make(map[string]float64),
		Periods:    make(map[int]map[string]float64),
	}
}

// Add folds r into t. Groups stay sorted and unique.
func (t *Totals) Add(r Record) {
	t.Blocks++
	t.Groups = insertSorted(t.Groups, r.Group)
	for name, v := range r.Categories {
		t.Categories[name] += v
	}
	for n, values := range r.Periods {
		p, ok := t.Periods[n]
		if !ok {
			p = make(map[string]float64, len(values))
			t.Periods[n] = p
		}
		for name, v := range values {
			p[name] += v
		}
	}
	t.BeforeCutoff += r.BeforeCutoff
	t.AfterCutoff += r.AfterCutoff
	t.Total += r.Total
	t.External += r.External
}

func insertSorted(list []string, s string) []string {
	i := sort.SearchStrings(list, s)
	if i < len(list) && list[i] == s {
		return list
	}
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = s
	return list
}

// Aggregate is the result of one aggregation pass. ByIdentifier is keyed by
// the matched allowlist entry, or by the block's own label when no allowlist
// was given.
type Aggregate struct {
	ByIdentifier map[string]Totals  `json:"by_identifier"`
	ByCategory   map[string]float64 `json:"by_category"`
	Total        float64            `json:"total"`
}

// NewAggregate returns an empty aggregate.
func NewAggregate() Aggregate {
	return Aggregate{
		ByIdentifier: make(map[string]Totals),
		ByCategory:   make(map[string]float64),
	}
}

// Identifiers returns the keys of ByIdentifier in sorted order.
func (a Aggregate) Identifiers() []string {
	ids := make([]string, 0, len(a.ByIdentifier))
	for id := range a.ByIdentifier {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
