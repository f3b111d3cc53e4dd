// Package xlsx reads Office Open XML workbooks (.xlsx) into grids.
package xlsx

import "encoding/xml"

// Only the parts of the SpreadsheetML schema needed to recover cell values
// are decoded. Styles, dimensions and sheet IDs are ignored.

// workbookXML is xl/workbook.xml: the sheet list in workbook order.
type workbookXML struct {
	XMLName xml.Name `xml:"workbook"`
	Sheets  []struct {
		Name string `xml:"name,attr"`
		RID  string `xml:"id,attr"` // r:id, resolved through workbook.xml.rels
	} `xml:"sheets>sheet"`
}

// worksheetXML is one xl/worksheets/sheetN.xml part.
type worksheetXML struct {
	XMLName xml.Name `xml:"worksheet"`
	Rows    []rowXML `xml:"sheetData>row"`
}

type rowXML struct {
	R     int       `xml:"r,attr"` // 1-indexed
	Cells []cellXML `xml:"c"`
}

// cellXML is a <c> element. T is "s" (shared string), "b", "str",
// "inlineStr", "e" or empty for numbers.
type cellXML struct {
	R  string     `xml:"r,attr"`
	T  string     `xml:"t,attr"`
	V  string     `xml:"v"`
	F  string     `xml:"f"`
	Is *stringXML `xml:"is"`
}

// stringXML holds either plain text or rich text runs.
type stringXML struct {
	T string   `xml:"t"`
	R []runXML `xml:"r"`
}

type runXML struct {
	T string `xml:"t"`
}

// sharedStringsXML is xl/sharedStrings.xml.
type sharedStringsXML struct {
	XMLName xml.Name    `xml:"sst"`
	SI      []stringXML `xml:"si"`
}

// relationshipsXML is a .rels part.
type relationshipsXML struct {
	XMLName      xml.Name `xml:"Relationships"`
	Relationship []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}
