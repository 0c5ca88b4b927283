package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newBalanceCmd(a *app) *cobra.Command {
	var adjust int64
	cmd := &cobra.Command{
		Use:   "balance <character-id>",
		Short: "Show or adjust a character's currency balance",
		Long:  `Balances live in PostgreSQL and are only available with adventure.store set to postgres.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context()
			defer cancel()
			if _, err := a.service(ctx); err != nil {
				return err
			}
			if a.balances == nil {
				return errors.New("balances require the postgres store")
			}

			var (
				amount int64
				err    error
			)
			if adjust != 0 {
				amount, err = a.balances.Adjust(ctx, args[0], adjust)
			} else {
				amount, err = a.balances.Balance(ctx, args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), amount)
			return nil
		},
	}
	cmd.Flags().Int64Var(&adjust, "adjust", 0, "add this amount (negative to spend)")
	return cmd
}
