package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/audience-cli/internal/overlap"
)

var overlapCmd = &cobra.Command{
	Use:   "overlap",
	Short: "Print the email overlap report as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		report, err := overlap.New(store).Compute(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(report), "encode report")
	},
}

func init() {
	rootCmd.AddCommand(overlapCmd)
}
