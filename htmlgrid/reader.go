// Package htmlgrid reads HTML table exports into grids. Every <table> in
// the document becomes one sheet.
package htmlgrid

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/blockgrid/grid"
)

// Reader provides access to the tables of an HTML document as sheets.
type Reader struct {
	names  []string
	sheets map[string]*grid.Grid
}

// Open opens an HTML file for reading.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return OpenReader(f)
}

// OpenReader parses HTML from an io.Reader.
func OpenReader(r io.Reader) (*Reader, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	reader := &Reader{sheets: make(map[string]*grid.Grid)}
	var tables []*html.Node
	collectTables(doc, &tables)
	for i, t := range tables {
		rows := stripSpreadsheetHeaders(parseTable(t))
		reader.add(tableName(t, i), grid.New(rows))
	}

	if len(reader.names) == 0 {
		return nil, fmt.Errorf("no tables found")
	}
	return reader, nil
}

func (r *Reader) add(name string, g *grid.Grid) {
	unique := name
	for n := 2; r.sheets[unique] != nil; n++ {
		unique = fmt.Sprintf("%s (%d)", name, n)
	}
	r.names = append(r.names, unique)
	r.sheets[unique] = g
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	// Nothing to close for HTML (no file handles kept)
	return nil
}

// SheetNames returns one name per table, in document order.
func (r *Reader) SheetNames() []string {
	return append([]string(nil), r.names...)
}

// Sheet returns the named table as a grid.
func (r *Reader) Sheet(name string) (*grid.Grid, error) {
	g, ok := r.sheets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", grid.ErrSheetNotFound, name)
	}
	return g, nil
}

// collectTables finds top-level tables; tables nested in a cell are part
// of that cell's text.
func collectTables(n *html.Node, out *[]*html.Node) {
	if n.Type == html.ElementNode && n.Data == "table" {
		*out = append(*out, n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectTables(c, out)
	}
}

// tableName prefers the caption, then the id attribute, then the closest
// preceding heading, then "Sheet<n>".
func tableName(t *html.Node, index int) string {
	for c := t.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "caption" {
			if text := getTextContent(c); text != "" {
				return text
			}
		}
	}
	for _, attr := range t.Attr {
		if attr.Key == "id" && strings.TrimSpace(attr.Val) != "" {
			return strings.TrimSpace(attr.Val)
		}
	}
	for n := t.PrevSibling; n != nil; n = n.PrevSibling {
		if n.Type != html.ElementNode {
			continue
		}
		if isHeading(n.Data) {
			if text := getTextContent(n); text != "" {
				return text
			}
		}
		if n.Data == "table" {
			break
		}
	}
	return fmt.Sprintf("Sheet%d", index+1)
}

func isHeading(tag string) bool {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

type htmlCell struct {
	text     string
	isHeader bool
}

// parseTable lays the table's rows out on a grid, expanding rowspan and
// colspan. Covered positions are blank; the spanning cell keeps its text at
// its top-left position.
func parseTable(table *html.Node) [][]htmlCell {
	var trs []*html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "thead", "tbody", "tfoot":
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if r.Type == html.ElementNode && r.Data == "tr" {
					trs = append(trs, r)
				}
			}
		case "tr":
			trs = append(trs, c)
		}
	}

	// covered[col] is the first row at or after which col is free again.
	var rows [][]htmlCell
	var covered []int
	for rowIdx, tr := range trs {
		for len(rows) <= rowIdx {
			rows = append(rows, nil)
		}
		col := 0
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
				continue
			}
			for col < len(covered) && covered[col] > rowIdx {
				col++
			}
			if col >= maxCols {
				break
			}
			rowSpan, colSpan := spans(c)
			colSpan = min(colSpan, maxCols-col)
			for len(covered) < col+colSpan {
				covered = append(covered, 0)
			}
			for dc := 0; dc < colSpan; dc++ {
				covered[col+dc] = rowIdx + rowSpan
			}
			rows[rowIdx] = place(rows[rowIdx], col, htmlCell{
				text:     getTextContent(c),
				isHeader: c.Data == "th",
			})
			col += colSpan
		}
	}
	return rows
}

func place(row []htmlCell, col int, cell htmlCell) []htmlCell {
	for len(row) <= col {
		row = append(row, htmlCell{})
	}
	row[col] = cell
	return row
}

// Span limits follow the HTML table model; cells past the widest XLSX sheet
// are dropped.
const (
	maxRowSpan = 65534
	maxColSpan = 1000
	maxCols    = 16384
)

// spans returns the cell's rowspan and colspan, clamped to the HTML limits.
func spans(n *html.Node) (rowSpan, colSpan int) {
	rowSpan, colSpan = 1, 1
	for _, attr := range n.Attr {
		v, err := strconv.Atoi(strings.TrimSpace(attr.Val))
		if err != nil || v < 1 {
			continue
		}
		switch attr.Key {
		case "rowspan":
			rowSpan = min(v, maxRowSpan)
		case "colspan":
			colSpan = min(v, maxColSpan)
		}
	}
	return rowSpan, colSpan
}

// stripSpreadsheetHeaders removes the column-letter row and row-number
// column that spreadsheet HTML exports add around the data, then converts
// the remaining cells.
func stripSpreadsheetHeaders(rows [][]htmlCell) [][]grid.Cell {
	if len(rows) > 0 && isColumnLetterRow(rows[0]) {
		rows = rows[1:]
		numbered := true
		for i, row := range rows {
			if len(row) == 0 || !row[0].isHeader || row[0].text != strconv.Itoa(i+1) {
				numbered = false
				break
			}
		}
		if numbered {
			for i := range rows {
				rows[i] = rows[i][1:]
			}
		}
	}

	out := make([][]grid.Cell, len(rows))
	for i, row := range rows {
		out[i] = make([]grid.Cell, len(row))
		for j, c := range row {
			out[i][j] = grid.Str(c.text)
		}
	}
	return out
}

// isColumnLetterRow reports whether row is a header row reading A, B, C...,
// optionally preceded by one empty corner cell.
func isColumnLetterRow(row []htmlCell) bool {
	start := 0
	if len(row) > 0 && row[0].isHeader && row[0].text == "" {
		start = 1
	}
	if len(row)-start < 1 {
		return false
	}
	for i, c := range row[start:] {
		if !c.isHeader || c.text != grid.IndexToColumn(i) {
			return false
		}
	}
	return true
}

// getTextContent extracts all text content from a node and its descendants.
func getTextContent(n *html.Node) string {
	var result strings.Builder
	getTextContentRecursive(n, &result)
	return strings.Join(strings.Fields(result.String()), " ")
}

func getTextContentRecursive(n *html.Node, result *strings.Builder) {
	if n.Type == html.TextNode {
		result.WriteString(n.Data)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		case "br":
			result.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		getTextContentRecursive(c, result)
	}
}

var _ grid.Workbook = (*Reader)(nil)
