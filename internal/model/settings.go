package model

import (
	"encoding/json"
	"fmt"
)

// Date formats the Ledger Service accepts for display preferences.
var validDateFormats = []string{
	"MM/DD/YYYY",
	"DD/MM/YYYY",
	"YYYY-MM-DD",
	"DD-MM-YYYY",
	"MMM DD, YYYY",
	"DD-MMMM-YYYY",
	"DD-MMM-YY",
}

// Settings holds server-owned application settings. This client reads
// date_format for display and forecast_period for the fetch window and
// projection horizon; the sensitivity and algorithm knobs belong to the
// server-side detector and matcher.
type Settings struct {
	DateFormat                 string          `json:"date_format"`
	ForecastPeriod             int             `json:"forecast_period"`
	RecurringSensitivity       float64         `json:"recurring_sensitivity"`
	AutoConfirmSensitivity     float64         `json:"auto_confirm_sensitivity"`
	CustomRecurringAlgorithm   json.RawMessage `json:"custom_recurring_algorithm,omitempty"`
	CustomAutoConfirmAlgorithm json.RawMessage `json:"custom_auto_confirm_algorithm,omitempty"`
}

// DefaultSettings mirrors the server defaults, used when the settings
// endpoint is unreachable.
func DefaultSettings() Settings {
	return Settings{
		DateFormat:             "DD-MMMM-YYYY",
		ForecastPeriod:         12,
		RecurringSensitivity:   0.8,
		AutoConfirmSensitivity: 0.7,
	}
}

// Validate applies the same rules the server enforces, so bad values are
// rejected before any network call.
func (s *Settings) Validate() error {
	if s.ForecastPeriod < 1 || s.ForecastPeriod > 120 {
		return fmt.Errorf("forecast_period must be between 1 and 120, got %d", s.ForecastPeriod)
	}
	if s.RecurringSensitivity < 0 || s.RecurringSensitivity > 1 {
		return fmt.Errorf("recurring_sensitivity must be between 0.0 and 1.0, got %.2f", s.RecurringSensitivity)
	}
	if s.AutoConfirmSensitivity < 0 || s.AutoConfirmSensitivity > 1 {
		return fmt.Errorf("auto_confirm_sensitivity must be between 0.0 and 1.0, got %.2f", s.AutoConfirmSensitivity)
	}
	if !ValidDateFormat(s.DateFormat) {
		return fmt.Errorf("date_format must be one of %v, got %q", validDateFormats, s.DateFormat)
	}
	return nil
}

// ValidDateFormat reports whether the format is one the server accepts.
func ValidDateFormat(format string) bool {
	for _, f := range validDateFormats {
		if f == format {
			return true
		}
	}
	return false
}

// FormatDate renders a date according to the configured display format.
func (s *Settings) FormatDate(d Date) string {
	return FormatDate(d, s.DateFormat)
}

// FormatDate renders a date in one of the supported display formats.
// Unknown formats fall back to DD-MMMM-YYYY, matching the server default.
func FormatDate(d Date, format string) string {
	t := d.Time()
	switch format {
	case "MM/DD/YYYY":
		return t.Format("01/02/2006")
	case "DD/MM/YYYY":
		return t.Format("02/01/2006")
	case "YYYY-MM-DD":
		return t.Format("2006-01-02")
	case "DD-MM-YYYY":
		return t.Format("02-01-2006")
	case "MMM DD, YYYY":
		return t.Format("Jan 02, 2006")
	case "DD-MMMM-YYYY":
		return t.Format("02-January-2006")
	case "DD-MMM-YY":
		return t.Format("02-Jan-06")
	default:
		return t.Format("02-January-2006")
	}
}
