package model

// Record is the typed projection of one block.
//
// Categories maps a category name to its grand-total value. Periods maps a
// 1-based period number to the per-category values of that period. Total is
// the sum of all category totals and External the sum of the categories the
// template designates as externally facing work.
type Record struct {
	Identifier   string                     `json:"identifier"`
	Group        string                     `json:"group"`
	Categories   map[string]float64         `json:"categories"`
	Periods      map[int]map[string]float64 `json:"periods"`
	BeforeCutoff float64                    `json:"before_cutoff"`
	AfterCutoff  float64                    `json:"after_cutoff"`
	Total        float64                    `json:"total"`
	External     float64                    `json:"external"`
}

// Period returns a copy of the per-category values for period n.
func (r Record) Period(n int) (map[string]float64, bool) {
	p, ok := r.Periods[n]
	if !ok {
		return nil, false
	}
	out := make(map[string]float64, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out, true
}

// Summary returns the before-cutoff or after-cutoff summary value.
func (r Record) Summary(beforeCutoff bool) float64 {
	if beforeCutoff {
		return r.BeforeCutoff
	}
	return r.AfterCutoff
}
