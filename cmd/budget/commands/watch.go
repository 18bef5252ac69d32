package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"budget/internal/amqp"
	"budget/internal/cli"
	"budget/internal/storage"
	"budget/internal/worker"
)

// watch [--archive]: print expense.added events as they arrive.
func watchCmd(opts *rootOptions) *cobra.Command {
	var archive bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow expense.added events from AMQP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := opts.app
			if app.cfg.AMQPURL == "" {
				return fmt.Errorf("AMQP is not configured: set AMQP_URL")
			}

			ctx, stop := cli.SignalContext(commandContext(cmd))
			defer stop()

			var archiver *worker.ArchiveWorker
			if archive {
				db, err := storage.NewSQLiteArchive(app.cfg.SQLiteDBPath, app.logger)
				if err != nil {
					return err
				}
				defer db.Close()

				archiver = worker.NewArchiveWorker(app.store, db, app.logger)
				if err := archiver.StartupSyncCheck(ctx); err != nil {
					return err
				}
			}

			client, err := amqp.NewClient(app.cfg.AMQPURL, app.cfg.AMQPExchange, app.cfg.AMQPQueue, app.logger)
			if err != nil {
				return err
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			symbol := app.cfg.CurrencySymbol
			err = client.ConsumeExpenseAdded(ctx, func(msg *amqp.ExpenseAddedMessage) error {
				e := msg.Expense()
				fmt.Fprintf(out, "%s  %s  %s  %s\n",
					msg.Timestamp.Local().Format("15:04:05"), e.Date, e.Category, e.Amount.Format(symbol))
				if archiver == nil {
					return nil
				}
				return archiver.HandleExpenseAdded(ctx, msg)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&archive, "archive", false, "refresh the SQLite archive after each event")
	return cmd
}
