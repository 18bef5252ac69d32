package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"budget/internal/analytics"
)

// list: print the history in entry order.
func listCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the expense history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := opts.newService(false)
			listing, err := svc.List(commandContext(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printWarning(cmd.ErrOrStderr(), listing.Warning)
			if len(listing.Expenses) == 0 {
				fmt.Fprintln(out, "No expenses recorded yet!")
				return nil
			}

			symbol := opts.app.cfg.CurrencySymbol
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			t := listing.Table
			fmt.Fprintf(tw, "%s\t%s\t%s\t\n", t.Columns[0], t.Columns[1], t.Columns[2])
			for i := 0; i < t.Len(); i++ {
				fmt.Fprintf(tw, "%s\t%s\t%s\t\n", t.Date[i], t.Category[i], t.Amount[i].Format(symbol))
			}
			fmt.Fprintf(tw, "\t%s\t%s\t\n", "total", analytics.Total(listing.Expenses).Format(symbol))
			return tw.Flush()
		},
	}
}
