// Package tabular extracts and decodes uploaded tabular payloads: flat
// CSV and XLSX files, and ZIP archives containing a CSV.
package tabular

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrUnsupportedFileType is returned when the filename is neither a
	// supported flat tabular file nor a ZIP archive.
	ErrUnsupportedFileType = eris.New("tabular: unsupported file type (want .csv, .xlsx, or .zip)")
	// ErrNoTabularEntry is returned when a ZIP archive holds no CSV entry.
	ErrNoTabularEntry = eris.New("tabular: no csv entry in archive")
	// ErrMalformedInput is returned when a payload cannot be decoded.
	ErrMalformedInput = eris.New("tabular: malformed tabular input")
)

// Extract returns the tabular payload for an uploaded file. ZIP archives
// are searched for a CSV entry; flat CSV and XLSX files pass through
// unchanged. Extraction is fully in-memory, so no scratch files are left
// behind on any path.
func Extract(data []byte, filename string) ([]byte, error) {
	switch {
	case hasExt(filename, ".zip"):
		return extractZip(data)
	case hasExt(filename, ".csv"), hasExt(filename, ".xlsx"):
		return data, nil
	default:
		return nil, eris.Wrapf(ErrUnsupportedFileType, "%q", filepath.Base(filename))
	}
}

// extractZip returns the decompressed bytes of the first CSV entry in
// central-directory order. Entry names match case-insensitively. The
// first-entry tie-break is deliberate: archives with several CSVs pick
// the one listed first, not an arbitrary one.
func extractZip(data []byte) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, eris.Wrapf(ErrMalformedInput, "tabular: open zip: %v", err)
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !hasExt(f.Name, ".csv") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, eris.Wrapf(ErrMalformedInput, "tabular: open zip entry %q: %v", f.Name, err)
		}
		payload, err := io.ReadAll(rc)
		rc.Close() //nolint:errcheck
		if err != nil {
			return nil, eris.Wrapf(ErrMalformedInput, "tabular: read zip entry %q: %v", f.Name, err)
		}
		return payload, nil
	}

	return nil, ErrNoTabularEntry
}

func hasExt(name, ext string) bool {
	return strings.EqualFold(filepath.Ext(name), ext)
}
