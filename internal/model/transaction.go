// Package model defines the domain types shared across the application.
package model

import (
	"fmt"
	"math"
	"strings"
)

// Transaction represents a single ledger transaction, confirmed or forecast.
// Recurring instances are materialized server-side from a recurring rule;
// the client never fabricates RecurringID.
type Transaction struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        Date    `json:"date"`
	Label       string  `json:"label,omitempty"`
	IsRecurring bool    `json:"is_recurring"`
	RecurringID *int64  `json:"recurring_id,omitempty"`
	IsConfirmed bool    `json:"is_confirmed"`
}

// Validate checks the fields a client-side mutation is allowed to set.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("description is required")
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return nil
}

// ValidateAmount rejects NaN and infinite amounts before they reach the wire.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("amount must be a valid number")
	}
	return nil
}

// EditType selects how an edit to a recurring instance propagates.
type EditType string

// Edit type constants understood by the Ledger Service.
const (
	EditSingle EditType = "single"
	EditFuture EditType = "future"
)

// DeleteType selects how a delete of a recurring instance propagates.
type DeleteType string

// Delete type constants understood by the Ledger Service.
const (
	DeleteSingle DeleteType = "single"
	DeleteFuture DeleteType = "future"
)
