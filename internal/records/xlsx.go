package records

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// loadXLSX reads the first sheet of an XLSX workbook. The first row is the
// header.
func loadXLSX(path string) ([]map[string]interface{}, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file %s has no sheets", path)
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var (
		header []string
		out    []map[string]interface{}
	)
	for rows.Next() {
		cells, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read row from sheet %s: %w", sheet, err)
		}
		if header == nil {
			header = cells
			trimBOM(header)
			continue
		}
		if isBlank(cells) {
			continue
		}
		out = append(out, rowFromCells(header, cells))
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate sheet %s: %w", sheet, err)
	}
	if header == nil {
		return nil, fmt.Errorf("sheet %s has no header row", sheet)
	}
	return out, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
