// Package extract turns uploaded document bytes into plain text suitable
// for scanning. One extractor per supported format; multi-part documents
// (PDF pages, workbook sheets) come back as ordered units so downstream
// output can preserve the boundaries.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a supported input document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatXlsx Format = "xlsx"
	FormatText Format = "txt"
)

// Unit is one independently scannable part of a document: a PDF page, a
// workbook sheet, or the whole body for single-part formats.
type Unit struct {
	Name string `json:"name"`
	Text string `json:"-"`
}

// UnsupportedFormatError is returned when a file's type is outside the
// supported set. The request is rejected before any extraction happens.
type UnsupportedFormatError struct {
	Filename string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %q (supported: pdf, docx, xlsx, txt)", e.Filename)
}

// ExtractionError is a format-specific parsing failure: corrupt bytes,
// password protection, unreadable structure. No partial text is ever
// returned alongside it.
type ExtractionError struct {
	Format Format
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s content: %v", e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// FormatFromFilename infers the document format from the file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDocx, nil
	case ".xlsx":
		return FormatXlsx, nil
	case ".txt":
		return FormatText, nil
	default:
		return "", &UnsupportedFormatError{Filename: name}
	}
}

// Extract returns the plain-text units of the document, in original
// order. On failure the returned error is an *ExtractionError and no
// units are returned.
func Extract(data []byte, format Format) ([]Unit, error) {
	switch format {
	case FormatPDF:
		return extractPDF(data)
	case FormatDocx:
		return extractDocx(data)
	case FormatXlsx:
		return extractXlsx(data)
	case FormatText:
		return extractText(data)
	default:
		return nil, &UnsupportedFormatError{Filename: string(format)}
	}
}

// JoinUnits concatenates unit texts in order, one unit per block. Used
// when the caller needs a single buffer (the analyze step).
func JoinUnits(units []Unit) string {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = u.Text
	}
	return strings.Join(parts, "\n")
}
