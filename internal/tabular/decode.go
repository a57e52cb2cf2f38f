package tabular

import "context"

// Decode runs the extract and parse steps for an uploaded file: ZIP
// archives are unwrapped to their CSV entry first, then the payload is
// decoded by format. The header row comes back separately from the data
// rows; row order is preserved.
func Decode(ctx context.Context, data []byte, filename string) ([]string, [][]string, error) {
	payload, err := Extract(data, filename)
	if err != nil {
		return nil, nil, err
	}
	if hasExt(filename, ".xlsx") {
		return ParseXLSX(payload)
	}
	return ParseCSV(ctx, payload)
}
