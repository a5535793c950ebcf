package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCandidate() RecurringCandidate {
	return RecurringCandidate{
		Description: "Netflix Subscription",
		Amount:      -15.99,
		Frequency:   FrequencyMonthly,
		Interval:    1,
		StartDate:   NewDate(2025, time.January, 5),
		LastDate:    NewDate(2025, time.April, 5),
		Occurrences: 4,
	}
}

func TestRecurringCandidate_Validate(t *testing.T) {
	tests := []struct {
		mutate  func(*RecurringCandidate)
		name    string
		errMsg  string
		wantErr bool
	}{
		{
			name:   "valid candidate",
			mutate: func(_ *RecurringCandidate) {},
		},
		{
			name:    "missing description",
			mutate:  func(c *RecurringCandidate) { c.Description = "" },
			wantErr: true,
			errMsg:  "description is required",
		},
		{
			name:    "NaN amount",
			mutate:  func(c *RecurringCandidate) { c.Amount = math.NaN() },
			wantErr: true,
			errMsg:  "amount must be a valid number",
		},
		{
			name:    "unknown frequency",
			mutate:  func(c *RecurringCandidate) { c.Frequency = "fortnightly" },
			wantErr: true,
			errMsg:  `invalid frequency "fortnightly"`,
		},
		{
			name:    "zero interval",
			mutate:  func(c *RecurringCandidate) { c.Interval = 0 },
			wantErr: true,
			errMsg:  "interval must be at least 1",
		},
		{
			name: "last date before start date",
			mutate: func(c *RecurringCandidate) {
				c.LastDate = NewDate(2024, time.December, 1)
			},
			wantErr: true,
			errMsg:  "precedes start date",
		},
		{
			name:    "zero occurrences",
			mutate:  func(c *RecurringCandidate) { c.Occurrences = 0 },
			wantErr: true,
			errMsg:  "occurrences must be at least 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCandidate()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRecurringCandidate_Rule(t *testing.T) {
	c := validCandidate()
	rule := c.Rule()

	// The rule anchors at the last observed occurrence, not the first.
	assert.Equal(t, c.LastDate, rule.StartDate)
	assert.Equal(t, c.Description, rule.Description)
	assert.Equal(t, c.Amount, rule.Amount)
	assert.Equal(t, c.Frequency, rule.Frequency)
	assert.Equal(t, c.Interval, rule.Interval)
	assert.Nil(t, rule.EndDate)
}

func TestRecurringCandidate_AnchorTransaction(t *testing.T) {
	c := validCandidate()
	tx := c.AnchorTransaction()

	assert.Equal(t, c.LastDate, tx.Date)
	assert.True(t, tx.IsConfirmed)
	assert.False(t, tx.IsRecurring)
	assert.Nil(t, tx.RecurringID)
}
