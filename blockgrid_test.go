package blockgrid

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/blockgrid/format"
	"github.com/tsawler/blockgrid/grid"
	"github.com/tsawler/blockgrid/internal/gridtest"
	"github.com/tsawler/blockgrid/layout"
)

// capacity builds a primary-layout sheet with two groups.
func capacity() *gridtest.Builder {
	b := gridtest.New(layout.Default())
	b.Group(0, "Alpha Stream").
		Record(0, 0, "Team-X", gridtest.Values{
			Totals: map[string]string{"features": "10", "enablers": "2", "quality": "5", "support": "3", "unplanned": "-"},
			Periods: map[int]map[string]string{
				1: {"features": "4", "quality": "1"},
				3: {"features": "6", "quality": "4"},
			},
			Before: "7",
			After:  "11",
		}).
		Record(0, 1, "Team-XYZ-Core", gridtest.Values{
			Totals: map[string]string{"features": "1"},
		}).
		Record(0, 2, "Allocation Summary", gridtest.Values{
			Totals: map[string]string{"features": "999"},
		})
	b.Group(1, "Beta Stream").
		Record(1, 0, "Team-X", gridtest.Values{
			Totals: map[string]string{"features": "20"},
		}).
		Record(1, 1, "Team-Y", gridtest.Values{
			Totals: map[string]string{"support": "4"},
		})
	return b
}

func primaryWorkbook() *grid.MemWorkbook {
	return grid.NewWorkbook().
		Add("Notes", grid.FromStrings([][]string{{"readme"}})).
		Add("PI14 - Capacity", capacity().Grid())
}

func TestRecord(t *testing.T) {
	rec, ok, err := FromWorkbook(primaryWorkbook()).Record("Team-X")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "Team-X", rec.Identifier)
	assert.Equal(t, "Alpha Stream", rec.Group)
	assert.Equal(t, 5.0, rec.Categories["quality"])
	assert.Equal(t, 0.0, rec.Categories["unplanned"], "placeholder reads as zero")
	assert.Equal(t, 20.0, rec.Total)
	assert.Equal(t, 13.0, rec.External)
	assert.Equal(t, 7.0, rec.BeforeCutoff)
	assert.Equal(t, 11.0, rec.AfterCutoff)
}

func TestRecord_NormalizedQuery(t *testing.T) {
	rec, ok, err := FromWorkbook(primaryWorkbook()).Record("team x")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Team-X", rec.Identifier)
	assert.Equal(t, "Alpha Stream", rec.Group)
}

func TestRecord_PartialQuery(t *testing.T) {
	rec, ok, err := FromWorkbook(primaryWorkbook()).Record("TeamXYZ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Team-XYZ-Core", rec.Identifier)
}

func TestRecord_Group(t *testing.T) {
	rec, ok, err := FromWorkbook(primaryWorkbook()).Group("beta").Record("Team-X")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Beta Stream", rec.Group)
	assert.Equal(t, 20.0, rec.Categories["features"])
}

func TestRecord_NotFound(t *testing.T) {
	tests := []struct {
		name  string
		ext   *Extractor
		query string
	}{
		{"unknown identifier", FromWorkbook(primaryWorkbook()), "Team-Q"},
		{"reserved label", FromWorkbook(primaryWorkbook()), "Allocation Summary"},
		{"empty query", FromWorkbook(primaryWorkbook()), "  "},
		{"group excludes", FromWorkbook(primaryWorkbook()).Group("gamma"), "Team-X"},
		{"no handler", FromWorkbook(grid.NewWorkbook().Add("Notes", grid.FromStrings(nil))), "Team-X"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := tt.ext.Record(tt.query)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestBlocks(t *testing.T) {
	blocks, ok, err := FromWorkbook(primaryWorkbook()).Blocks()
	require.NoError(t, err)
	require.True(t, ok)

	var labels []string
	for _, b := range blocks {
		labels = append(labels, b.Group+"/"+b.Label)
	}
	assert.Equal(t, []string{
		"Alpha Stream/Team-X",
		"Alpha Stream/Team-XYZ-Core",
		"Beta Stream/Team-X",
		"Beta Stream/Team-Y",
	}, labels)

	blocks, ok, err = FromWorkbook(primaryWorkbook()).Group("BETA").Blocks()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, blocks, 2)
}

func TestAggregate(t *testing.T) {
	agg, ok, err := FromWorkbook(primaryWorkbook()).Aggregate()
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []string{"Team-X", "Team-XYZ-Core", "Team-Y"}, agg.Identifiers())
	assert.Equal(t, 31.0, agg.ByCategory["features"])
	assert.Equal(t, 7.0, agg.ByCategory["support"])
	assert.Equal(t, 45.0, agg.Total)

	x := agg.ByIdentifier["Team-X"]
	assert.Equal(t, 2, x.Blocks)
	assert.Equal(t, []string{"Alpha Stream", "Beta Stream"}, x.Groups)
	assert.Equal(t, 30.0, x.Categories["features"])
}

func TestAggregate_Allowed(t *testing.T) {
	agg, ok, err := FromWorkbook(primaryWorkbook()).Group("alpha").Aggregate("team y", "TEAM X")
	require.NoError(t, err)
	require.True(t, ok)

	// Team-XYZ-Core contains TEAMX, so it is filed under "TEAM X" too.
	assert.Equal(t, []string{"TEAM X"}, agg.Identifiers())
	assert.Equal(t, 2, agg.ByIdentifier["TEAM X"].Blocks)
	assert.Equal(t, 21.0, agg.Total)
}

func TestAggregate_NoHandler(t *testing.T) {
	agg, ok, err := FromWorkbook(grid.NewWorkbook()).Aggregate()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotNil(t, agg.ByIdentifier)
	assert.Empty(t, agg.ByIdentifier)
}

func TestPeriodSlice(t *testing.T) {
	ext := FromWorkbook(primaryWorkbook())

	slice, ok, err := ext.PeriodSlice("Team-X", 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 6.0, slice["features"])
	assert.Equal(t, 4.0, slice["quality"])
	assert.Equal(t, 0.0, slice["support"])
	assert.Len(t, slice, 5)

	for _, n := range []int{0, 7, -1} {
		_, ok, err := ext.PeriodSlice("Team-X", n)
		require.NoError(t, err)
		assert.False(t, ok, "period %d", n)
	}

	_, ok, err = ext.PeriodSlice("Nobody", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSummary(t *testing.T) {
	ext := FromWorkbook(primaryWorkbook())

	before, err := ext.Summary("Team-X", true)
	require.NoError(t, err)
	assert.Equal(t, 7.0, before)

	after, err := ext.Summary("Team-X", false)
	require.NoError(t, err)
	assert.Equal(t, 11.0, after)

	missing, err := ext.Summary("Nobody", true)
	require.NoError(t, err)
	assert.Equal(t, 0.0, missing)
}

func TestParam(t *testing.T) {
	pi15 := gridtest.New(layout.Default()).
		Group(0, "Alpha Stream").
		Record(0, 0, "Team-X", gridtest.Values{Totals: map[string]string{"quality": "9"}})

	wb := primaryWorkbook().Add("PI15 - Capacity", pi15.Grid())

	rec, ok, err := FromWorkbook(wb).Param("15").Record("Team-X")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9.0, rec.Categories["quality"])

	// Without a param the first sheet matching the pattern wins.
	rec, ok, err = FromWorkbook(wb).Record("Team-X")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5.0, rec.Categories["quality"])

	// An unknown param falls through to the pattern scan.
	rec, ok, err = FromWorkbook(wb).Param("99").Record("Team-X")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5.0, rec.Categories["quality"])
}

func legacyWorkbook() *grid.MemWorkbook {
	b := gridtest.New(layout.Legacy()).
		Group(0, "Alpha Stream").
		Record(0, 0, "Team-X", gridtest.Values{
			Totals: map[string]string{"features": "8", "support": "1"},
			Before: "2",
		})
	return grid.NewWorkbook().Add("Capacity Plan", b.Grid())
}

func TestLegacyFallback(t *testing.T) {
	wb := legacyWorkbook()

	available, err := FromWorkbook(wb).Available()
	require.NoError(t, err)
	assert.False(t, available, "primary layout is absent")

	name, ok, err := FromWorkbook(wb).Serving()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "legacy", name)

	rec, ok, err := FromWorkbook(wb).Record("Team-X")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 8.0, rec.Categories["features"])
	assert.Equal(t, 9.0, rec.External)
	assert.Len(t, rec.Periods, 5)

	_, ok, err = FromWorkbook(wb).Handlers(Primary()).Record("Team-X")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLegacyFallback_SharedSheetName(t *testing.T) {
	for _, labelled := range []bool{false, true} {
		b := gridtest.New(layout.Legacy())
		if labelled {
			b.Labels()
		}
		b.Group(0, "Alpha Stream").
			Record(0, 0, "Team-X", gridtest.Values{Totals: map[string]string{"features": "8"}})
		wb := grid.NewWorkbook().Add("Capacity", b.Grid())

		name, ok, err := FromWorkbook(wb).Serving()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "legacy", name, "labelled=%v", labelled)

		rec, ok, err := FromWorkbook(wb).Record("Team-X")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 8.0, rec.Categories["features"])
	}

	// A labelled primary sheet under the shared name stays with primary.
	primary := gridtest.New(layout.Default()).Labels().
		Group(0, "Alpha Stream").
		Record(0, 0, "Team-X", gridtest.Values{Totals: map[string]string{"features": "3"}})
	wb := grid.NewWorkbook().Add("Capacity", primary.Grid())
	name, ok, err := FromWorkbook(wb).Serving()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "primary", name)
}

// countingWorkbook counts sheet reads.
type countingWorkbook struct {
	grid.Workbook
	reads int
}

func (w *countingWorkbook) Sheet(name string) (*grid.Grid, error) {
	w.reads++
	return w.Workbook.Sheet(name)
}

func TestSheetReadOncePerCall(t *testing.T) {
	tests := []struct {
		name string
		call func(e *Extractor) error
	}{
		{"record", func(e *Extractor) error { _, _, err := e.Record("Team-X"); return err }},
		{"blocks", func(e *Extractor) error { _, _, err := e.Blocks(); return err }},
		{"aggregate", func(e *Extractor) error { _, _, err := e.Aggregate(); return err }},
		{"period", func(e *Extractor) error { _, _, err := e.PeriodSlice("Team-X", 1); return err }},
		{"summary", func(e *Extractor) error { _, err := e.Summary("Team-X", true); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := &countingWorkbook{Workbook: primaryWorkbook()}
			require.NoError(t, tt.call(FromWorkbook(wb)))
			assert.Equal(t, 1, wb.reads)
		})
	}
}

func TestAvailable(t *testing.T) {
	ok, err := FromWorkbook(primaryWorkbook()).Available()
	require.NoError(t, err)
	assert.True(t, ok)

	// A matching sheet name without group anchors is not the layout.
	wb := grid.NewWorkbook().Add("Capacity", grid.FromStrings([][]string{{""}, {"stray"}}))
	ok, err = FromWorkbook(wb).Available()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandlers_Empty(t *testing.T) {
	_, _, err := FromWorkbook(primaryWorkbook()).Handlers().Record("Team-X")
	assert.Error(t, err)
}

func TestNewFormat(t *testing.T) {
	f, err := NewFormat("custom", layout.Legacy(), Legacy().SheetSpec())
	require.NoError(t, err)
	assert.Equal(t, "custom", f.Name())

	bad := layout.Default()
	bad.GroupStride = 0
	_, err = NewFormat("bad", bad, Primary().SheetSpec())
	assert.ErrorIs(t, err, layout.ErrInvalidTemplate)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&buf, "", 0)

	_, _, err := FromWorkbook(legacyWorkbook()).Logger(l).Record("Team-Q")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "primary handler not available")
	assert.Contains(t, out, "serving with legacy handler")
	assert.Contains(t, out, `identifier "Team-Q" not found`)
}

func TestChainImmutability(t *testing.T) {
	base := FromWorkbook(primaryWorkbook())
	withGroup := base.Group("beta")
	withParam := base.Param("15")

	assert.Empty(t, base.options.group)
	assert.Empty(t, base.options.param)
	assert.Equal(t, "beta", withGroup.options.group)
	assert.Equal(t, "15", withParam.options.param)

	legacyOnly := base.Handlers(Legacy())
	assert.Len(t, base.options.handlers, 2)
	assert.Len(t, legacyOnly.options.handlers, 1)
}

func TestOpen_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capacity.xlsx")
	require.NoError(t, gridtest.WriteXLSX(path,
		gridtest.Sheet{Name: "Notes", Rows: [][]string{{"readme"}}},
		gridtest.Sheet{Name: "PI14 - Capacity", Rows: capacity().Strings()},
	))

	names, err := Open(path).SheetNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Notes", "PI14 - Capacity"}, names)

	rec, ok, err := Open(path).Record("team x")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5.0, rec.Categories["quality"])
	assert.Equal(t, 20.0, rec.Total)
}

func TestOpen_XLSXRecalculate(t *testing.T) {
	b := capacity()
	b.Set(b.RecordRow(0)+4, b.GroupCol(0)+7, "=B7+D7")

	path := filepath.Join(t.TempDir(), "capacity.xlsx")
	require.NoError(t, gridtest.WriteXLSX(path, gridtest.Sheet{Name: "Capacity", Rows: b.Strings()}))

	rec, ok, err := Open(path).Record("Team-X")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.0, rec.Categories["quality"], "formula without cached value")

	rec, ok, err = Open(path).Recalculate().Record("Team-X")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5.0, rec.Categories["quality"])
}

func TestOpen_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Capacity.csv")
	require.NoError(t, gridtest.WriteCSV(path, capacity().Strings()))

	before, err := Open(path).Summary("Team-X", true)
	require.NoError(t, err)
	assert.Equal(t, 7.0, before)
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	xls := filepath.Join(dir, "old.xls")
	require.NoError(t, os.WriteFile(xls, []byte("not really a workbook"), 0o644))
	_, _, err := Open(xls).Record("Team-X")
	assert.ErrorIs(t, err, format.ErrLegacyBinary)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))
	_, _, err = Open(txt).Record("Team-X")
	assert.ErrorIs(t, err, format.ErrUnsupported)

	_, err = Open(filepath.Join(dir, "missing.xlsx")).SheetNames()
	assert.Error(t, err)

	_, err = Open("").SheetNames()
	assert.Error(t, err)
}

func TestMust(t *testing.T) {
	assert.Equal(t, "hello", Must("hello", nil))
	assert.Panics(t, func() { Must("", os.ErrNotExist) })

	rec := MustFound(FromWorkbook(primaryWorkbook()).Record("Team-Y"))
	assert.Equal(t, 4.0, rec.Categories["support"])
	assert.Panics(t, func() { MustFound(0, false, os.ErrNotExist) })
}
