package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/RocketCaptain/BillPrepared/internal/cli"
	"github.com/RocketCaptain/BillPrepared/internal/forecast"
)

func forecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project the balance month by month",
		RunE:  runForecast,
	}
	cmd.Flags().Int("months", 0, "forecast horizon in months (default: the forecast_period setting)")
	return cmd
}

func runForecast(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	env, err := newRefreshedEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	months, _ := cmd.Flags().GetInt("months")
	if months <= 0 {
		months = env.settings.ForecastPeriod
	}

	balance, err := env.store.Balance(ctx)
	if err != nil {
		return err
	}
	txs, err := env.store.Window(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	projections := forecast.Project(balance, txs, months, now)
	summary := forecast.Summarize(balance, txs, months, now)

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Forecast, next %d month(s)", months)))
	fmt.Println(cli.ForecastTable(projections))
	fmt.Println(cli.ForecastSummary(summary, months))
	return nil
}
