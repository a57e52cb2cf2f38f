// Package ingest runs the upload pipeline: extract, parse, normalize,
// cap, and persist.
package ingest

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/audience-cli/internal/model"
	"github.com/sells-group/audience-cli/internal/normalize"
	"github.com/sells-group/audience-cli/internal/snapshot"
	"github.com/sells-group/audience-cli/internal/tabular"
)

// DefaultSampleSize bounds the preview rows returned after an upload.
const DefaultSampleSize = 5

// Pipeline ingests uploaded files into the snapshot store. One pipeline
// serves every source; the source tag is a per-call parameter, so the
// substack and CRM paths cannot drift apart.
type Pipeline struct {
	store      snapshot.Store
	norm       *normalize.Normalizer
	sampleSize int
}

// New creates a Pipeline over the given store with the default schema
// and sample size.
func New(store snapshot.Store) *Pipeline {
	return &Pipeline{
		store:      store,
		norm:       normalize.New(),
		sampleSize: DefaultSampleSize,
	}
}

// Run ingests one uploaded file for a source. Count reports every
// decoded row; Saved reflects the persisted snapshot after the row cap.
// The sample holds the first rows of the capped set.
func (p *Pipeline) Run(ctx context.Context, source model.Source, filename string, data []byte) (*model.UploadResult, error) {
	header, rows, err := tabular.Decode(ctx, data, filename)
	if err != nil {
		return nil, err
	}

	records := p.norm.Records(header, rows)

	snap, err := p.store.Save(ctx, source, records)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: save %s snapshot", source)
	}

	sampleLen := p.sampleSize
	if sampleLen > snap.RowCount {
		sampleLen = snap.RowCount
	}
	sample := model.CloneRecords(records[:sampleLen])
	if sample == nil {
		sample = []model.Record{}
	}

	zap.L().Info("upload ingested",
		zap.String("source", string(source)),
		zap.String("file", filename),
		zap.Int("count", len(records)),
		zap.Int("saved", snap.RowCount),
	)

	return &model.UploadResult{
		Source:   source,
		Count:    len(records),
		Saved:    snap.RowCount,
		Snapshot: snap.ID,
		Sample:   sample,
	}, nil
}
