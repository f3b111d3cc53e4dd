package xlsx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tsawler/blockgrid/grid"
)

// Options configures how a workbook is read.
type Options struct {
	// Recalculate evaluates formula cells that were saved without a cached
	// value. Workbooks written by scripts often lack cached results.
	Recalculate bool
}

// Reader provides access to the sheets of an XLSX workbook. All sheets are
// materialised when the workbook is opened; the Reader implements
// grid.Workbook.
type Reader struct {
	zipReader     *zip.Reader
	closer        io.Closer
	workbook      *workbookXML
	sharedStrings []string
	sheetRels     map[string]string // RID -> target path
	sheets        []*sheet
}

type sheet struct {
	name  string
	cells [][]grid.Cell

	// uncached lists formula cells saved without a value.
	uncached []grid.Coord
}

// Open opens an XLSX file for reading.
func Open(filename string) (*Reader, error) {
	return OpenWithOptions(filename, Options{})
}

// OpenWithOptions opens an XLSX file with the given options.
func OpenWithOptions(filename string, opts Options) (*Reader, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	r, err := newReader(&zr.Reader, zr)
	if err != nil {
		zr.Close()
		return nil, err
	}

	if opts.Recalculate {
		if err := r.recalculate(filename); err != nil {
			zr.Close()
			return nil, err
		}
	}
	return r, nil
}

// OpenReader reads an XLSX workbook from ra. Formula recalculation is not
// available for in-memory workbooks.
func OpenReader(ra io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	return newReader(zr, nil)
}

func newReader(zr *zip.Reader, closer io.Closer) (*Reader, error) {
	r := &Reader{
		zipReader: zr,
		closer:    closer,
		sheetRels: make(map[string]string),
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	if err := r.parseRelationships(); err != nil {
		return nil, fmt.Errorf("parsing relationships: %w", err)
	}
	if err := r.parseWorkbook(); err != nil {
		return nil, fmt.Errorf("parsing workbook: %w", err)
	}

	// Shared strings are optional.
	_ = r.parseSharedStrings()

	if err := r.parseWorksheets(); err != nil {
		return nil, fmt.Errorf("parsing worksheets: %w", err)
	}
	return r, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}

// validate checks that required XLSX files exist.
func (r *Reader) validate() error {
	required := []string{
		"[Content_Types].xml",
		"xl/workbook.xml",
	}

	fileMap := make(map[string]bool)
	for _, f := range r.zipReader.File {
		fileMap[f.Name] = true
	}

	for _, name := range required {
		if !fileMap[name] {
			return fmt.Errorf("missing required file: %s", name)
		}
	}
	return nil
}

// getFileContent reads the content of a file from the ZIP archive.
func (r *Reader) getFileContent(name string) ([]byte, error) {
	for _, f := range r.zipReader.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

// parseRelationships parses the workbook relationships file.
func (r *Reader) parseRelationships() error {
	data, err := r.getFileContent("xl/_rels/workbook.xml.rels")
	if err != nil {
		data, err = r.getFileContent("xl/_rels/workbook.rels")
		if err != nil {
			return nil // Relationships are optional
		}
	}

	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return err
	}
	for _, rel := range rels.Relationship {
		r.sheetRels[rel.ID] = rel.Target
	}
	return nil
}

// parseWorkbook parses the main workbook file.
func (r *Reader) parseWorkbook() error {
	data, err := r.getFileContent("xl/workbook.xml")
	if err != nil {
		return err
	}

	r.workbook = &workbookXML{}
	return xml.Unmarshal(data, r.workbook)
}

// parseSharedStrings parses the shared strings table.
func (r *Reader) parseSharedStrings() error {
	data, err := r.getFileContent("xl/sharedStrings.xml")
	if err != nil {
		return err
	}

	var sst sharedStringsXML
	if err := xml.Unmarshal(data, &sst); err != nil {
		return err
	}

	r.sharedStrings = make([]string, len(sst.SI))
	for i, si := range sst.SI {
		r.sharedStrings[i] = joinRuns(si.T, si.R)
	}
	return nil
}

// joinRuns returns plain text, or the concatenated rich text runs.
func joinRuns(plain string, runs []runXML) string {
	if plain != "" || len(runs) == 0 {
		return plain
	}
	var text strings.Builder
	for _, run := range runs {
		text.WriteString(run.T)
	}
	return text.String()
}

// parseWorksheets parses all worksheet files in workbook order.
func (r *Reader) parseWorksheets() error {
	if r.workbook == nil {
		return fmt.Errorf("workbook not parsed")
	}

	r.sheets = make([]*sheet, 0, len(r.workbook.Sheets))

	for i, sheetRef := range r.workbook.Sheets {
		target := r.sheetRels[sheetRef.RID]
		if target == "" {
			target = fmt.Sprintf("worksheets/sheet%d.xml", i+1)
		}

		if !strings.HasPrefix(target, "xl/") && !strings.HasPrefix(target, "/") {
			target = "xl/" + target
		}
		target = strings.TrimPrefix(target, "/")

		data, err := r.getFileContent(target)
		if err != nil {
			continue // Skip sheets we can't read
		}

		s, err := r.parseWorksheet(data, sheetRef.Name)
		if err != nil {
			continue // Skip sheets that fail to parse
		}
		r.sheets = append(r.sheets, s)
	}

	if len(r.sheets) == 0 {
		return fmt.Errorf("no worksheets found")
	}
	return nil
}

// parseWorksheet parses a single worksheet into rows of cells covering the
// used range from A1. Rows and cells may omit their r attribute; they then
// follow the previous row or cell.
func (r *Reader) parseWorksheet(data []byte, name string) (*sheet, error) {
	var ws worksheetXML
	if err := xml.Unmarshal(data, &ws); err != nil {
		return nil, err
	}

	type placed struct {
		at grid.Coord
		c  cellXML
	}

	// First pass: resolve positions and find dimensions
	var cells []placed
	maxRow := -1
	widths := map[int]int{}
	prevRow := -1
	for _, row := range ws.Rows {
		rowIdx := prevRow + 1
		if row.R > 0 {
			rowIdx = row.R - 1
		}
		prevRow = rowIdx

		prevCol := -1
		for _, c := range row.Cells {
			col := prevCol + 1
			if c.R != "" {
				ref, err := grid.ParseRef(c.R)
				if err != nil {
					continue
				}
				col = ref.Col
			}
			prevCol = col

			cells = append(cells, placed{at: grid.Coord{Row: rowIdx, Col: col}, c: c})
			widths[rowIdx] = max(widths[rowIdx], col+1)
		}
		maxRow = max(maxRow, rowIdx)
	}

	s := &sheet{name: name, cells: make([][]grid.Cell, maxRow+1)}
	for i, w := range widths {
		s.cells[i] = make([]grid.Cell, w)
	}

	// Second pass: populate cells
	for _, p := range cells {
		cell, uncached := r.convertCell(p.c)
		s.cells[p.at.Row][p.at.Col] = cell
		if uncached {
			s.uncached = append(s.uncached, p.at)
		}
	}

	return s, nil
}

// convertCell maps an XML cell to a grid cell. uncached reports a formula
// saved without a result.
func (r *Reader) convertCell(c cellXML) (cell grid.Cell, uncached bool) {
	switch c.T {
	case "s": // Shared string
		idx, err := strconv.Atoi(c.V)
		if err == nil && idx >= 0 && idx < len(r.sharedStrings) {
			return grid.Str(r.sharedStrings[idx]), false
		}
		return grid.Blank(), false
	case "b":
		return grid.Bool(c.V == "1"), false
	case "e":
		return grid.Cell{Type: grid.CellTypeError, Text: c.V}, false
	case "str": // Formula string result
		if c.V == "" && c.F != "" {
			return grid.Blank(), true
		}
		return grid.Str(c.V), false
	case "inlineStr":
		if c.Is != nil {
			return grid.Str(joinRuns(c.Is.T, c.Is.R)), false
		}
		return grid.Blank(), false
	default: // Number or empty
		if c.V == "" {
			return grid.Blank(), c.F != ""
		}
		f, err := strconv.ParseFloat(c.V, 64)
		if err != nil {
			return grid.Str(c.V), false
		}
		return grid.Num(f), false
	}
}

// SheetCount returns the number of sheets in the workbook.
func (r *Reader) SheetCount() int {
	return len(r.sheets)
}

// SheetNames returns the names of all sheets in workbook order.
func (r *Reader) SheetNames() []string {
	names := make([]string, len(r.sheets))
	for i, s := range r.sheets {
		names[i] = s.name
	}
	return names
}

// Sheet returns the named sheet as a grid.
func (r *Reader) Sheet(name string) (*grid.Grid, error) {
	for _, s := range r.sheets {
		if s.name == name {
			return grid.New(s.cells), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", grid.ErrSheetNotFound, name)
}

// Uncached returns the number of formula cells still lacking a value.
func (r *Reader) Uncached() int {
	n := 0
	for _, s := range r.sheets {
		n += len(s.uncached)
	}
	return n
}

var _ grid.Workbook = (*Reader)(nil)
