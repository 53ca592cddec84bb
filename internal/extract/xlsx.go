package extract

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXlsx returns one unit per worksheet. Cells in a row are joined
// with single spaces, rows with newlines; empty cells are skipped.
func extractXlsx(data []byte) ([]Unit, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ExtractionError{Format: FormatXlsx, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	units := make([]Unit, 0, len(sheets))

	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &ExtractionError{Format: FormatXlsx, Err: err}
		}

		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			for _, cell := range row {
				if cell != "" {
					cells = append(cells, cell)
				}
			}
			lines = append(lines, strings.Join(cells, " "))
		}

		units = append(units, Unit{
			Name: sheet,
			Text: strings.Join(lines, "\n"),
		})
	}

	return units, nil
}
