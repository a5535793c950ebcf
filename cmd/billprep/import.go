package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/RocketCaptain/BillPrepared/internal/cli"
	"github.com/RocketCaptain/BillPrepared/internal/reconcile"
	"github.com/RocketCaptain/BillPrepared/internal/tui"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a bank statement CSV",
		Long: `Upload a bank statement CSV to the ledger service.

"import recurring" asks the service to detect recurring payment patterns
and opens an interactive review to approve them. "import confirm" matches
statement rows against forecast transactions, confirming exact matches
and queueing amount changes for a decision.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "recurring <file.csv>",
		Short: "Detect and review recurring payments",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportRecurring,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "confirm <file.csv>",
		Short: "Match statement rows against the ledger",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportConfirm,
	})

	return cmd
}

// openUpload opens the statement and wraps it in an upload progress bar.
func openUpload(path string) (io.ReadCloser, io.Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open statement: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("failed to stat statement: %w", err)
	}

	bar := progressbar.DefaultBytes(info.Size(), "uploading")
	return file, io.TeeReader(file, bar), nil
}

func runImportRecurring(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	file, reader, err := openUpload(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	candidates, err := env.client.DetectRecurring(ctx, filepath.Base(args[0]), reader)
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		fmt.Println(cli.FormatInfo("No recurring patterns detected in this statement."))
		return nil
	}

	reviewer := reconcile.NewReviewer(env.client, env.store, candidates)
	return tui.Run(ctx, reviewer)
}

func runImportConfirm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	file, reader, err := openUpload(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	result, err := env.client.MatchTransactions(ctx, filepath.Base(args[0]), reader)
	if err != nil {
		return err
	}

	if err := env.store.Refresh(ctx); err != nil {
		return err
	}

	fmt.Println(cli.ConfirmedTable(result.ConfirmedTransactions, env.settings.DateFormat))

	if len(result.PotentialUpdates) == 0 {
		return nil
	}

	queue := reconcile.NewUpdateQueue(env.client, env.store)
	queue.Load(result.PotentialUpdates)

	prompter := cli.NewPrompter(os.Stdin, os.Stdout, env.settings.DateFormat)
	return prompter.ResolveUpdates(ctx, queue)
}
