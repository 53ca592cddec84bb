package extract

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF returns one unit per page with extractable text. Image-only
// or unparseable pages are skipped rather than failing the document.
func extractPDF(data []byte) ([]Unit, error) {
	rdr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ExtractionError{Format: FormatPDF, Err: err}
	}

	n := rdr.NumPage()
	units := make([]Unit, 0, n)

	for i := 1; i <= n; i++ {
		page := rdr.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		units = append(units, Unit{
			Name: "Page " + strconv.Itoa(i),
			Text: text,
		})
	}

	return units, nil
}
