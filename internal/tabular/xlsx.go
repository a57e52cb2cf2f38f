package tabular

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ParseXLSX decodes the first sheet of an XLSX workbook into its header
// row and data rows. An empty sheet yields a nil header and no rows.
func ParseXLSX(data []byte) ([]string, [][]string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, nil, eris.Wrapf(ErrMalformedInput, "xlsx: open workbook: %v", err)
	}
	if len(f.Sheets) == 0 {
		return nil, nil, eris.Wrap(ErrMalformedInput, "xlsx: workbook has no sheets")
	}

	var header []string
	var rows [][]string
	for i, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if i == 0 {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}

	return header, rows, nil
}
