package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/audience-cli/internal/ingest"
	"github.com/sells-group/audience-cli/internal/model"
)

var uploadConcurrency int

var uploadCmd = &cobra.Command{
	Use:   "upload source=file [source=file...]",
	Short: "Ingest local files into the snapshot store",
	Long:  `Ingests one file per source without going through the HTTP server, e.g.: audience-cli upload substack=subscribers.zip crm=contacts.csv`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		uploads, err := parseUploadArgs(args)
		if err != nil {
			return err
		}

		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		return runUploads(ctx, ingest.New(store), uploads, uploadConcurrency)
	},
}

func init() {
	uploadCmd.Flags().IntVar(&uploadConcurrency, "concurrency", 2, "max concurrent file ingests")
	rootCmd.AddCommand(uploadCmd)
}

// fileUpload pairs a source tag with a local file path.
type fileUpload struct {
	source model.Source
	path   string
}

// parseUploadArgs validates source=path pairs before any file is read.
func parseUploadArgs(args []string) ([]fileUpload, error) {
	uploads := make([]fileUpload, 0, len(args))
	for _, arg := range args {
		tag, path, ok := strings.Cut(arg, "=")
		if !ok || path == "" {
			return nil, eris.Errorf("invalid argument %q (want source=file)", arg)
		}
		source, err := model.ParseSource(tag)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, fileUpload{source: source, path: path})
	}
	return uploads, nil
}

// runUploads ingests each file concurrently. Sources are independent
// snapshots, so the fan-out never races against itself unless the same
// source is given twice — in which case the last writer wins, same as
// over HTTP.
func runUploads(ctx context.Context, pipeline *ingest.Pipeline, uploads []fileUpload, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, u := range uploads {
		g.Go(func() error {
			data, err := os.ReadFile(u.path)
			if err != nil {
				return eris.Wrapf(err, "read %s", u.path)
			}

			result, err := pipeline.Run(gctx, u.source, filepath.Base(u.path), data)
			if err != nil {
				return eris.Wrapf(err, "ingest %s", u.path)
			}

			zap.L().Info("file ingested",
				zap.String("source", string(result.Source)),
				zap.String("file", u.path),
				zap.Int("count", result.Count),
				zap.Int("saved", result.Saved),
				zap.String("snapshot", result.Snapshot),
			)
			return nil
		})
	}

	return g.Wait()
}
