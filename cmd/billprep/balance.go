package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RocketCaptain/BillPrepared/internal/cli"
)

func balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the current balance and upcoming transactions",
		RunE:  runBalance,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <amount>",
		Short: "Set the current balance",
		Args:  cobra.ExactArgs(1),
		RunE:  runBalanceSet,
	})

	return cmd
}

func runBalance(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	env, err := newRefreshedEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	balance, err := env.store.Balance(ctx)
	if err != nil {
		return err
	}

	upcoming, err := env.store.Upcoming(ctx, 5)
	if err != nil {
		return err
	}

	fmt.Println(cli.RenderBox("Current balance", cli.BoldStyle.Render(fmt.Sprintf("%.2f", balance))))
	fmt.Println(cli.FormatTitle("Upcoming"))
	fmt.Println(cli.UpcomingList(upcoming, env.settings.DateFormat))
	return nil
}

func runBalanceSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[0], err)
	}

	env, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.client.SetBalance(ctx, amount); err != nil {
		return err
	}
	if err := env.store.Refresh(ctx); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Balance set to %.2f", amount)))
	return nil
}
