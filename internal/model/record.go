// Package model defines the shared data types for the overlap service.
package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Source identifies which logical dataset an upload belongs to.
type Source string

const (
	// SourceSubstack is the audience list exported from Substack.
	SourceSubstack Source = "substack"
	// SourceCRM is the CRM contact export.
	SourceCRM Source = "crm"
)

// ErrInvalidSource is returned for source tags outside the known set.
var ErrInvalidSource = eris.New(`model: invalid source (use "substack" or "crm")`)

// ParseSource validates a raw source tag. Tags are lower-cased before
// matching; anything outside the two-member enumeration, including an
// empty tag, is rejected.
func ParseSource(raw string) (Source, error) {
	switch Source(strings.ToLower(raw)) {
	case SourceSubstack:
		return SourceSubstack, nil
	case SourceCRM:
		return SourceCRM, nil
	default:
		return "", eris.Wrapf(ErrInvalidSource, "%q", raw)
	}
}

// Record is a normalized contact row. Only fields present in the source
// row appear as keys; absent fields are omitted rather than empty-filled.
type Record map[string]string

// Email returns the record's email field, or "" if absent.
func (r Record) Email() string {
	return r["email"]
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// CloneRecords deep-copies a record slice so callers never alias
// stored state.
func CloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// Snapshot describes the persisted dataset for one source: the capped
// record set most recently saved, replacing any prior version.
type Snapshot struct {
	ID       string    `json:"id"`
	Source   Source    `json:"source"`
	RowCount int       `json:"row_count"`
	SavedAt  time.Time `json:"saved_at"`
}

// UploadResult is the response body for a successful upload.
type UploadResult struct {
	Source   Source   `json:"source"`
	Count    int      `json:"count"`
	Saved    int      `json:"saved"`
	Snapshot string   `json:"snapshot"`
	Sample   []Record `json:"sample"`
}

// OverlapContact is one overlapping contact in the report sample, with
// display fallbacks already applied.
type OverlapContact struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Company string `json:"company"`
}

// OverlapReport summarizes the email intersection between the substack
// and CRM snapshots. Derived on demand, never persisted.
type OverlapReport struct {
	SubstackCount int              `json:"substackCount"`
	CRMCount      int              `json:"crmCount"`
	OverlapCount  int              `json:"overlapCount"`
	OverlapRate   int              `json:"overlapRate"`
	SampleOverlap []OverlapContact `json:"sampleOverlap"`
}
