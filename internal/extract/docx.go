package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

const docxDocumentPath = "word/document.xml"

// extractDocx pulls the paragraph text out of word/document.xml, one
// paragraph per line, matching what a Word user sees as body text.
// Tables are part of the same document stream, so their cell text comes
// along in document order.
func extractDocx(data []byte) ([]Unit, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ExtractionError{Format: FormatDocx, Err: err}
	}

	doc, err := openZipEntry(zr, docxDocumentPath)
	if err != nil {
		return nil, &ExtractionError{Format: FormatDocx, Err: err}
	}
	defer doc.Close()

	text, err := docxPlainText(doc)
	if err != nil {
		return nil, &ExtractionError{Format: FormatDocx, Err: err}
	}

	return []Unit{{Name: "document", Text: text}}, nil
}

// docxPlainText walks the WordprocessingML token stream collecting the
// character data inside <w:t> runs. Paragraph ends become newlines, tabs
// become tabs.
func docxPlainText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var b strings.Builder
	inRun := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inRun = true
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRun = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inRun {
				b.Write(t)
			}
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

// openZipEntry opens a named entry of the archive.
func openZipEntry(zr *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, errors.New("missing archive entry: " + name)
}
