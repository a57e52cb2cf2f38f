// Package normalize maps raw tabular rows onto the fixed contact schema.
package normalize

import (
	"strings"

	"github.com/sells-group/audience-cli/internal/model"
)

// AllowedFields is the fixed set of recognized contact fields. Headers
// outside this set are dropped during normalization.
var AllowedFields = []string{"email", "name", "website", "company", "status"}

// Normalizer restricts rows to an allowed field set using
// case-insensitive header matching.
type Normalizer struct {
	allowed map[string]struct{}
}

// New builds a Normalizer for the given fields, defaulting to
// AllowedFields when none are passed.
func New(fields ...string) *Normalizer {
	if len(fields) == 0 {
		fields = AllowedFields
	}
	allowed := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		allowed[strings.ToLower(f)] = struct{}{}
	}
	return &Normalizer{allowed: allowed}
}

// Record maps one data row onto the allowed schema. Each header is
// lower-cased and, if recognized, its cell value is kept under the
// lower-cased key. A row shorter than the header leaves the trailing
// fields absent; extra cells with no header are dropped. When two
// headers case-fold to the same allowed key, the later column wins.
// Never fails: a row with no recognized fields normalizes to an empty
// record.
func (n *Normalizer) Record(headers, cells []string) model.Record {
	out := make(model.Record)
	for i, h := range headers {
		if i >= len(cells) {
			break
		}
		key := strings.ToLower(h)
		if _, ok := n.allowed[key]; ok {
			out[key] = cells[i]
		}
	}
	return out
}

// Records normalizes a batch of rows, preserving order.
func (n *Normalizer) Records(headers []string, rows [][]string) []model.Record {
	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, n.Record(headers, row))
	}
	return records
}
