package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RocketCaptain/BillPrepared/internal/cli"
	"github.com/RocketCaptain/BillPrepared/internal/model"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change ledger settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current settings",
		RunE:  runSettingsShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long: `Change one setting. Keys:
  date_format               display format for dates
  forecast_period           months to forecast (1-120)
  recurring_sensitivity     recurring detection threshold (0.0-1.0)
  auto_confirm_sensitivity  auto-confirm matching threshold (0.0-1.0)`,
		Args: cobra.ExactArgs(2),
		RunE: runSettingsSet,
	})

	return cmd
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	env, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	s := env.settings
	content := fmt.Sprintf(
		"date_format:              %s\nforecast_period:          %d\nrecurring_sensitivity:    %.2f\nauto_confirm_sensitivity: %.2f",
		s.DateFormat, s.ForecastPeriod, s.RecurringSensitivity, s.AutoConfirmSensitivity)
	fmt.Println(cli.RenderBox("Settings", content))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	key, value := args[0], args[1]

	env, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	settings := env.settings
	if err := applySetting(&settings, key, value); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := env.client.UpdateSettings(ctx, settings); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Set %s to %s", key, value)))
	return nil
}

func applySetting(settings *model.Settings, key, value string) error {
	switch key {
	case "date_format":
		settings.DateFormat = value
	case "forecast_period":
		period, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("forecast_period must be a whole number: %w", err)
		}
		settings.ForecastPeriod = period
	case "recurring_sensitivity":
		sensitivity, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("recurring_sensitivity must be a number: %w", err)
		}
		settings.RecurringSensitivity = sensitivity
	case "auto_confirm_sensitivity":
		sensitivity, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("auto_confirm_sensitivity must be a number: %w", err)
		}
		settings.AutoConfirmSensitivity = sensitivity
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
