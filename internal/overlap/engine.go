// Package overlap computes the email intersection between the substack
// and CRM snapshots.
package overlap

import (
	"context"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/audience-cli/internal/model"
	"github.com/sells-group/audience-cli/internal/snapshot"
)

// SampleSize bounds how many overlapping contacts the report includes.
const SampleSize = 5

// Engine derives overlap reports from the snapshot store. Compute is a
// pure read; missing snapshots degrade to empty datasets rather than
// failing.
type Engine struct {
	store      snapshot.Store
	sampleSize int
}

// New creates an Engine over the given store.
func New(store snapshot.Store) *Engine {
	return &Engine{store: store, sampleSize: SampleSize}
}

// Compute loads both snapshots and builds the overlap report. Emails
// compare case-insensitively; rows without an email never match
// anything, not even each other. The rate denominator is always the
// substack (audience) email set, and is guarded to 0 when that set is
// empty. The two loads are independent reads: a save landing between
// them is visible, which callers accept as the consistency model.
func (e *Engine) Compute(ctx context.Context) (*model.OverlapReport, error) {
	substack, err := e.store.Load(ctx, model.SourceSubstack)
	if err != nil {
		return nil, eris.Wrap(err, "overlap: load substack snapshot")
	}
	crm, err := e.store.Load(ctx, model.SourceCRM)
	if err != nil {
		return nil, eris.Wrap(err, "overlap: load crm snapshot")
	}

	substackEmails := emailSet(substack)
	crmEmails := emailSet(crm)

	matched := make(map[string]struct{})
	for email := range substackEmails {
		if _, ok := crmEmails[email]; ok {
			matched[email] = struct{}{}
		}
	}

	rate := 0
	if len(substackEmails) > 0 {
		rate = int(math.Round(float64(len(matched)) / float64(len(substackEmails)) * 100))
	}

	// Sample follows substack dataset order so it is deterministic for a
	// given pair of snapshots.
	sample := make([]model.OverlapContact, 0, e.sampleSize)
	for _, r := range substack {
		if len(sample) == e.sampleSize {
			break
		}
		email := strings.ToLower(r.Email())
		if email == "" {
			continue
		}
		if _, ok := matched[email]; !ok {
			continue
		}
		sample = append(sample, contactFor(r))
	}

	return &model.OverlapReport{
		SubstackCount: len(substack),
		CRMCount:      len(crm),
		OverlapCount:  len(matched),
		OverlapRate:   rate,
		SampleOverlap: sample,
	}, nil
}

// contactFor applies the display fallback chain: name defaults to
// "Unknown"; company falls back to website, then "Not provided". The
// company-before-website priority is a fixed display policy.
func contactFor(r model.Record) model.OverlapContact {
	c := model.OverlapContact{
		Email:   r.Email(),
		Name:    r["name"],
		Company: r["company"],
	}
	if c.Name == "" {
		c.Name = "Unknown"
	}
	if c.Company == "" {
		c.Company = r["website"]
	}
	if c.Company == "" {
		c.Company = "Not provided"
	}
	return c
}

// emailSet collects the lower-cased, non-empty emails of a dataset.
func emailSet(records []model.Record) map[string]struct{} {
	set := make(map[string]struct{}, len(records))
	for _, r := range records {
		if email := strings.ToLower(r.Email()); email != "" {
			set[email] = struct{}{}
		}
	}
	return set
}
