package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"budget/internal/core"
)

// add --amount 12.50 --category Shopping [--date 2024-03-01]
func addCmd(opts *rootOptions) *cobra.Command {
	var amount, category, date string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := core.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("amount %q: %w", amount, err)
			}
			c, err := core.ParseCategory(category)
			if err != nil {
				return err
			}
			d := core.DateOf(time.Now())
			if date != "" {
				if d, err = core.ParseDate(date); err != nil {
					return err
				}
			}

			svc := opts.newService(true)
			defer svc.Close()

			e, err := svc.Add(commandContext(cmd), a, c, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expense added: %s %s %s\n",
				e.Amount.Format(opts.app.cfg.CurrencySymbol), e.Category, e.Date)
			return nil
		},
	}
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount, e.g. 12.50 (must be positive)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "one of Food, Transport, Shopping, Bills, Other")
	cmd.Flags().StringVarP(&date, "date", "d", "", "date as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}
