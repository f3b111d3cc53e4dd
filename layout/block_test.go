package layout_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/blockgrid/grid"
	"github.com/tsawler/blockgrid/internal/gridtest"
	"github.com/tsawler/blockgrid/layout"
	"github.com/tsawler/blockgrid/model"
)

func TestScan(t *testing.T) {
	b := gridtest.New(layout.Default()).
		Group(0, "Alpha").
		Record(0, 0, "Team-X", gridtest.Values{}).
		Record(0, 1, " Team-Y ", gridtest.Values{}).
		Record(0, 3, "Allocation", gridtest.Values{}).
		Group(2, "Gamma").
		Record(2, 1, "Team-Z", gridtest.Values{})
	// Off-stride labels are never anchors.
	b.Set(3, 0, "Features").Set(0, 5, "Not a group")

	blocks := layout.Scan(b.Grid(), layout.Default())
	assert.Equal(t, []model.Block{
		{Label: "Team-X", Group: "Alpha", Row: 2, Col: 0},
		{Label: "Team-Y", Group: "Alpha", Row: 27, Col: 0},
		{Label: "Team-Z", Group: "Gamma", Row: 27, Col: 22},
	}, blocks)
}

func TestScan_EmptyGroup(t *testing.T) {
	b := gridtest.New(layout.Default()).
		Group(0, "Alpha").
		Group(1, "Empty").
		Record(0, 0, "Team-X", gridtest.Values{})

	groups := layout.Groups(b.Grid(), layout.Default())
	require.Len(t, groups, 2)
	assert.Equal(t, layout.Group{Label: "Empty", Col: 11}, groups[1])

	blocks := layout.Scan(b.Grid(), layout.Default())
	require.Len(t, blocks, 1)
	assert.Equal(t, "Alpha", blocks[0].Group)
}

func TestScan_Deterministic(t *testing.T) {
	g := randomGrid(rand.New(rand.NewPCG(7, 7)), 120, 60)
	first := layout.Scan(g, layout.Default())
	for range 3 {
		assert.Equal(t, first, layout.Scan(g, layout.Default()))
	}
}

func TestScan_SingleBlock(t *testing.T) {
	// One group, one record, quality total at the block's total column.
	b := gridtest.New(layout.Default()).
		Group(0, "Alpha").
		Record(0, 0, "Team-X", gridtest.Values{Totals: map[string]string{"quality": "5"}})
	g := b.Grid()

	require.Equal(t, 8, g.Width())
	require.Equal(t, 7, g.Height())
	assert.Len(t, layout.Scan(g, layout.Default()), 1)
}

func TestScan_Bounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, tmpl := range []layout.Template{layout.Default(), layout.Legacy()} {
		for i := 0; i < 200; i++ {
			g := randomGrid(rng, rng.IntN(130), rng.IntN(60))
			blocks := layout.Scan(g, tmpl)

			// A partial block at the right or bottom edge still has an anchor
			// cell, so the bound rounds up.
			maxBlocks := ceilDiv(g.Width(), tmpl.GroupStride) * ceilDiv(g.Height(), tmpl.RecordStride)
			assert.LessOrEqual(t, len(blocks), maxBlocks)

			for _, b := range blocks {
				assert.False(t, tmpl.IsReserved(b.Label), "reserved label %q", b.Label)
				assert.NotEmpty(t, b.Label)
				assert.Equal(t, b.Label, g.At(b.Row, b.Col).Label())
				assert.Zero(t, (b.Row-tmpl.FirstRecordRow)%tmpl.RecordStride)
				assert.Zero(t, (b.Col-tmpl.FirstGroupCol)%tmpl.GroupStride)
			}
		}
	}
}

func TestMatches(t *testing.T) {
	primary := func(labelled bool) *gridtest.Builder {
		b := gridtest.New(layout.Default())
		if labelled {
			b.Labels()
		}
		return b.Group(0, "Alpha").
			Record(0, 0, "Team-X", gridtest.Values{Totals: map[string]string{"features": "3"}})
	}
	legacy := func(labelled bool) *gridtest.Builder {
		b := gridtest.New(layout.Legacy())
		if labelled {
			b.Labels()
		}
		return b.Group(0, "Alpha").
			Record(0, 0, "Team-X", gridtest.Values{Totals: map[string]string{"features": "8"}})
	}

	tests := []struct {
		name string
		g    *grid.Grid
		tmpl layout.Template
		want bool
	}{
		{"empty", grid.FromStrings(nil), layout.Default(), false},
		{"anchor off stride", grid.FromStrings([][]string{{"", "Alpha"}}), layout.Default(), false},
		{"group without records", grid.FromStrings([][]string{{"Alpha"}}), layout.Default(), false},
		{"primary", primary(false).Grid(), layout.Default(), true},
		{"primary labelled", primary(true).Grid(), layout.Default(), true},
		{"primary as legacy", primary(true).Grid(), layout.Legacy(), false},
		{"legacy", legacy(false).Grid(), layout.Legacy(), true},
		{"legacy labelled", legacy(true).Grid(), layout.Legacy(), true},
		{"legacy as primary", legacy(false).Grid(), layout.Default(), false},
		{"legacy labelled as primary", legacy(true).Grid(), layout.Default(), false},
		{"wrong label", primary(false).Set(4, 0, "Support").Grid(), layout.Default(), false},
		{"label case", primary(false).Set(4, 0, " features ").Grid(), layout.Default(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, layout.Matches(tt.g, tt.tmpl))
		})
	}
}

func TestScan_InvalidStride(t *testing.T) {
	tmpl := layout.Default()
	tmpl.GroupStride = 0
	assert.Empty(t, layout.Scan(grid.FromStrings([][]string{{"Alpha"}}), tmpl))
}

var labels = []string{"", "", "", "Team-X", "Team-Y", "Allocation", "Total", "BE", "Summary", "-", "5", "  "}

func randomGrid(rng *rand.Rand, height, width int) *grid.Grid {
	rows := make([][]string, height)
	for r := range rows {
		rows[r] = make([]string, width)
		for c := range rows[r] {
			rows[r][c] = labels[rng.IntN(len(labels))]
		}
	}
	return grid.FromStrings(rows)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
