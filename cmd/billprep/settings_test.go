package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RocketCaptain/BillPrepared/internal/model"
)

func TestApplySetting(t *testing.T) {
	tests := []struct {
		check   func(t *testing.T, s model.Settings)
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{
			name:  "date format",
			key:   "date_format",
			value: "YYYY-MM-DD",
			check: func(t *testing.T, s model.Settings) {
				assert.Equal(t, "YYYY-MM-DD", s.DateFormat)
			},
		},
		{
			name:  "forecast period",
			key:   "forecast_period",
			value: "24",
			check: func(t *testing.T, s model.Settings) {
				assert.Equal(t, 24, s.ForecastPeriod)
			},
		},
		{
			name:  "recurring sensitivity",
			key:   "recurring_sensitivity",
			value: "0.9",
			check: func(t *testing.T, s model.Settings) {
				assert.InDelta(t, 0.9, s.RecurringSensitivity, 0.001)
			},
		},
		{
			name:    "non-numeric period",
			key:     "forecast_period",
			value:   "soon",
			wantErr: true,
		},
		{
			name:    "unknown key",
			key:     "theme",
			value:   "dark",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := model.DefaultSettings()
			err := applySetting(&settings, tt.key, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, settings)
		})
	}
}

func TestApplySetting_OutOfRangeFailsValidation(t *testing.T) {
	settings := model.DefaultSettings()
	require.NoError(t, applySetting(&settings, "forecast_period", "500"))
	assert.Error(t, settings.Validate())
}
