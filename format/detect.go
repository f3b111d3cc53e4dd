// Package format provides workbook format detection.
package format

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/richardlehane/mscfb"
)

// ErrUnsupported is returned for files no grid source can read.
var ErrUnsupported = errors.New("unsupported workbook format")

// ErrLegacyBinary is returned for binary BIFF workbooks (.xls). They are
// recognised so callers get a clear message, but not read.
var ErrLegacyBinary = errors.New("legacy binary workbook (.xls) not supported; save as .xlsx")

// Format represents a supported workbook format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// XLSX indicates an Office Open XML workbook.
	XLSX
	// HTML indicates an HTML table export.
	HTML
	// CSV indicates comma-separated values.
	CSV
	// XLS indicates a legacy binary workbook in an OLE2 compound file.
	XLS
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case XLSX:
		return "XLSX"
	case HTML:
		return "HTML"
	case CSV:
		return "CSV"
	case XLS:
		return "XLS"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case XLSX:
		return ".xlsx"
	case HTML:
		return ".html"
	case CSV:
		return ".csv"
	case XLS:
		return ".xls"
	default:
		return ""
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return XLSX
	case ".html", ".htm":
		return HTML
	case ".csv":
		return CSV
	case ".xls":
		return XLS
	default:
		return Unknown
	}
}

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFromMagic checks magic bytes. ZIP and OLE2 containers need their
// contents inspected and report Unknown here; use DetectFromReader.
func DetectFromMagic(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}
	if bytes.HasPrefix(data, zipMagic) || bytes.HasPrefix(data, oleMagic) {
		return Unknown
	}
	if detectHTMLMagic(data) {
		return HTML
	}
	return Unknown
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return false
	}

	upper := strings.ToUpper(string(data[:min(len(data), 512)]))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") || strings.HasPrefix(upper, "<HTML") {
		return true
	}
	if strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML") {
		return true
	}
	return strings.HasPrefix(upper, "<TABLE")
}

// DetectFromReader inspects the content to determine format. It can tell
// an XLSX workbook from other ZIP archives and a legacy workbook from other
// OLE2 compound files.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	switch {
	case bytes.HasPrefix(magic, zipMagic):
		return detectZIPFormat(r, size)
	case bytes.HasPrefix(magic, oleMagic):
		return detectOLEFormat(r)
	case detectHTMLMagic(magic):
		return HTML, nil
	}
	return Unknown, nil
}

// detectZIPFormat reports XLSX for archives with a workbook part.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}
	for _, f := range zr.File {
		if f.Name == "xl/workbook.xml" {
			return XLSX, nil
		}
	}
	return Unknown, nil
}

// detectOLEFormat reports XLS for compound files holding a workbook stream
// ("Workbook" for BIFF8, "Book" for BIFF5).
func detectOLEFormat(r io.ReaderAt) (Format, error) {
	doc, err := mscfb.New(r)
	if err != nil {
		return Unknown, err
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if entry.Name == "Workbook" || entry.Name == "Book" {
			return XLS, nil
		}
	}
	return Unknown, nil
}
