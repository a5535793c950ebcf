package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RocketCaptain/BillPrepared/internal/cli"
	"github.com/RocketCaptain/BillPrepared/internal/common"
	"github.com/RocketCaptain/BillPrepared/internal/model"
	"github.com/RocketCaptain/BillPrepared/internal/reconcile"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List the transaction window",
		RunE:    runTransactionsList,
	}
	cmd.Flags().Bool("hide-confirmed", false, "hide confirmed transactions")

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction",
		RunE:  runTransactionsAdd,
	}
	addCmd.Flags().String("description", "", "transaction description")
	addCmd.Flags().Float64("amount", 0, "amount (negative for expenses)")
	addCmd.Flags().String("date", "", "date (YYYY-MM-DD)")
	addCmd.Flags().String("label", "", "optional label")
	addCmd.Flags().Bool("confirmed", false, "create as confirmed")
	_ = addCmd.MarkFlagRequired("description")
	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("date")

	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a transaction",
		Args:  cobra.ExactArgs(1),
		RunE:  runTransactionsEdit,
	}
	editCmd.Flags().String("description", "", "new description")
	editCmd.Flags().Float64("amount", 0, "new amount")
	editCmd.Flags().String("date", "", "new date (YYYY-MM-DD)")
	editCmd.Flags().String("label", "", "new label")
	editCmd.Flags().Bool("future", false, "apply to this and future occurrences of the series")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE:  runTransactionsDelete,
	}
	deleteCmd.Flags().Bool("future", false, "delete this and future occurrences of the series")

	cmd.AddCommand(addCmd)
	cmd.AddCommand(editCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "confirm <id>",
		Short: "Mark a transaction as confirmed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetConfirmed(cmd, args, true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "unconfirm <id>",
		Short: "Mark a transaction as unconfirmed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetConfirmed(cmd, args, false)
		},
	})
	cmd.AddCommand(deleteCmd)

	return cmd
}

func runTransactionsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	hideConfirmed, _ := cmd.Flags().GetBool("hide-confirmed")

	env, err := newRefreshedEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	txs, err := env.store.Window(ctx)
	if err != nil {
		return err
	}
	balance, err := env.store.Balance(ctx)
	if err != nil {
		return err
	}

	fmt.Println(cli.TransactionsTable(txs, balance, env.settings.DateFormat, hideConfirmed))
	return nil
}

func runTransactionsAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	dateStr, _ := cmd.Flags().GetString("date")
	date, err := model.ParseDate(dateStr)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", dateStr, err)
	}

	description, _ := cmd.Flags().GetString("description")
	amount, _ := cmd.Flags().GetFloat64("amount")
	label, _ := cmd.Flags().GetString("label")
	confirmed, _ := cmd.Flags().GetBool("confirmed")

	env, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	created, err := env.client.CreateTransaction(ctx, model.Transaction{
		Description: description,
		Amount:      amount,
		Date:        date,
		Label:       label,
		IsConfirmed: confirmed,
	})
	if err != nil {
		return err
	}
	if err := env.store.Refresh(ctx); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added transaction %d", created.ID)))
	return nil
}

func runTransactionsEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	env, err := newRefreshedEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	tx, err := findTransaction(cmd, env, id)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("description") {
		tx.Description, _ = cmd.Flags().GetString("description")
	}
	if cmd.Flags().Changed("amount") {
		tx.Amount, _ = cmd.Flags().GetFloat64("amount")
	}
	if cmd.Flags().Changed("date") {
		dateStr, _ := cmd.Flags().GetString("date")
		date, parseErr := model.ParseDate(dateStr)
		if parseErr != nil {
			return fmt.Errorf("invalid date %q: %w", dateStr, parseErr)
		}
		tx.Date = date
	}
	if cmd.Flags().Changed("label") {
		tx.Label, _ = cmd.Flags().GetString("label")
	}

	editType := model.EditSingle
	if future, _ := cmd.Flags().GetBool("future"); future {
		editType = model.EditFuture
	}

	coordinator := reconcile.NewCoordinator(env.client, env.store)
	if err := coordinator.Edit(ctx, tx, editType); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated transaction %d", id)))
	return nil
}

func runSetConfirmed(cmd *cobra.Command, args []string, confirmed bool) error {
	ctx := cmd.Context()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	env, err := newRefreshedEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	coordinator := reconcile.NewCoordinator(env.client, env.store)
	if err := coordinator.SetConfirmed(ctx, id, confirmed); err != nil {
		return err
	}

	verb := "confirmed"
	if !confirmed {
		verb = "unconfirmed"
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Transaction %d %s", id, verb)))
	return nil
}

func runTransactionsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	deleteType := model.DeleteSingle
	if future, _ := cmd.Flags().GetBool("future"); future {
		deleteType = model.DeleteFuture
	}

	env, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	coordinator := reconcile.NewCoordinator(env.client, env.store)
	if err := coordinator.Delete(ctx, id, deleteType); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted transaction %d", id)))
	return nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid transaction id %q: %w", arg, err)
	}
	return id, nil
}

func findTransaction(cmd *cobra.Command, env *env, id int64) (model.Transaction, error) {
	txs, err := env.store.Window(cmd.Context())
	if err != nil {
		return model.Transaction{}, err
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return model.Transaction{}, fmt.Errorf("transaction %d is not in the current window: %w", id, common.ErrNotFound)
}
