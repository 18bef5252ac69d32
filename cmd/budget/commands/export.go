package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"budget/internal/storage"
	"budget/internal/worker"
)

// export sqlite [--db path]: mirror the JSON history into SQLite.
func exportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the expense history to other formats",
	}
	cmd.AddCommand(exportSQLiteCmd(opts))
	return cmd
}

func exportSQLiteCmd(opts *rootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "sqlite",
		Short: "Replace the SQLite archive with the current history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := opts.app
			if dbPath == "" {
				dbPath = app.cfg.SQLiteDBPath
			}

			archive, err := storage.NewSQLiteArchive(dbPath, app.logger)
			if err != nil {
				return err
			}
			defer archive.Close()

			ctx := commandContext(cmd)
			n, err := worker.NewArchiveWorker(app.store, archive, app.logger).Sync(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Exported %d expenses to %s\n", n, dbPath)

			// Read back from the archive, not the store, so the output
			// reflects what was written.
			totals, err := archive.CategoryTotals(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, ct := range totals {
				fmt.Fprintf(tw, "  %s\t%s\n", ct.Category, ct.Total.Format(app.cfg.CurrencySymbol))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default $SQLITE_DB_PATH)")
	return cmd
}
