package rewrite

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

// rewriteXlsx walks every cell of every sheet and replaces values that
// maskFn changes. Untouched cells keep their original representation.
func rewriteXlsx(data []byte, maskFn func(string) string) ([]byte, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, err
		}

		for ri, row := range rows {
			for ci, cell := range row {
				if cell == "" {
					continue
				}
				masked := maskFn(cell)
				if masked == cell {
					continue
				}

				name, err := excelize.CoordinatesToCellName(ci+1, ri+1)
				if err != nil {
					return nil, err
				}
				if err := f.SetCellStr(sheet, name, masked); err != nil {
					return nil, err
				}
			}
		}
	}

	var out bytes.Buffer
	if err := f.Write(&out); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}
