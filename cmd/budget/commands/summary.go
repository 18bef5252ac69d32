package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"budget/internal/core"
)

// summary [--month YYYY-MM]: print the dashboard views as text.
func summaryCmd(opts *rootOptions) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print spending by category, top categories and spending over time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter *time.Time
			if month != "" {
				t, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("invalid month %q: want YYYY-MM", month)
				}
				filter = &t
			}

			svc := opts.newService(false)
			report, err := svc.Summary(commandContext(cmd), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printWarning(cmd.ErrOrStderr(), report.Warning)
			if report.Summary.Count == 0 {
				fmt.Fprintln(out, "No expenses available for analysis!")
				return nil
			}
			return writeSummary(out, report.Summary, opts.app.cfg.CurrencySymbol)
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "restrict to one calendar month (YYYY-MM)")
	return cmd
}

func writeSummary(w io.Writer, s core.Summary, symbol string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Expenses:\t%d\n", s.Count)
	fmt.Fprintf(tw, "Total:\t%s\n\n", s.Total.Format(symbol))

	fmt.Fprintln(tw, "Spending by Category")
	for _, share := range s.Shares {
		fmt.Fprintf(tw, "  %s\t%s\t%s%%\n", share.Category, share.Total.Format(symbol), share.Percent.StringFixed(1))
	}

	fmt.Fprintln(tw, "\nTop 3 Spending Categories")
	for i, top := range s.TopCategories {
		fmt.Fprintf(tw, "  %d. %s\t%s\n", i+1, top.Category, top.Total.Format(symbol))
	}

	fmt.Fprintln(tw, "\nSpending Over Time")
	for _, e := range s.OverTime {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", e.Date, e.Category, e.Amount.Format(symbol))
	}
	return tw.Flush()
}
