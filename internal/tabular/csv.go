package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// StreamCSV reads CSV rows and sends them to a channel. The first row is
// delivered on headerCh (if non-nil) and not on the row channel. A UTF-8
// BOM ahead of the header is stripped so the first column name matches
// cleanly. Both channels are closed when processing completes; errors are
// sent on the error channel.
//
// Rows are allowed to have a field count different from the header:
// short rows leave trailing fields absent and extra cells are dropped by
// the consumer. Broken quoting still fails the whole parse.
func StreamCSV(ctx context.Context, r io.Reader, headerCh chan<- []string) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(transform.NewReader(r, unicode.UTF8BOM.NewDecoder()))
		reader.FieldsPerRecord = -1 // variable field counts allowed

		first := true
		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrapf(ErrMalformedInput, "csv: read row: %v", err)
				return
			}

			if first {
				first = false
				if headerCh != nil {
					select {
					case headerCh <- record:
					case <-ctx.Done():
						errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled sending header")
						return
					}
				}
				continue
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// ParseCSV decodes a CSV payload into its header row and data rows,
// preserving row order. An empty payload yields a nil header and no rows.
func ParseCSV(ctx context.Context, data []byte) ([]string, [][]string, error) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(ctx, bytes.NewReader(data), headerCh)

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, nil, err
	}

	var header []string
	select {
	case header = <-headerCh:
	default:
	}
	return header, rows, nil
}
