package model

import "fmt"

// Frequency is the cadence of a recurring rule.
type Frequency string

// Frequencies supported by the Ledger Service.
const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether the frequency is one the server understands.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// RecurringCandidate is a detected-but-unconfirmed recurring pattern from a
// CSV import. It is transient: it exists only between the import response
// and the user's approval, and has no server identity until converted.
type RecurringCandidate struct {
	Description         string    `json:"description"`
	Amount              float64   `json:"amount"`
	Frequency           Frequency `json:"frequency"`
	Interval            int       `json:"interval"`
	StartDate           Date      `json:"start_date"`
	LastDate            Date      `json:"last_date"`
	Label               string    `json:"label,omitempty"`
	Occurrences         int       `json:"occurrences"`
	UniqueDescriptions  int       `json:"unique_descriptions,omitempty"`
	DescriptionExamples []string  `json:"description_examples,omitempty"`
}

// Validate checks a candidate at approval time. Server-emitted candidates
// are not re-validated on arrival; free-form edits make this necessary
// before the two create calls are issued.
func (c *RecurringCandidate) Validate() error {
	if c.Description == "" {
		return fmt.Errorf("description is required")
	}
	if err := ValidateAmount(c.Amount); err != nil {
		return err
	}
	if !c.Frequency.Valid() {
		return fmt.Errorf("invalid frequency %q", c.Frequency)
	}
	if c.Interval < 1 {
		return fmt.Errorf("interval must be at least 1, got %d", c.Interval)
	}
	if c.LastDate.Before(c.StartDate) {
		return fmt.Errorf("last date %s precedes start date %s", c.LastDate, c.StartDate)
	}
	if c.Occurrences < 1 {
		return fmt.Errorf("occurrences must be at least 1, got %d", c.Occurrences)
	}
	return nil
}

// RecurringRule is the payload for creating or updating a server-side
// recurring rule. Future occurrences are materialized by the server.
type RecurringRule struct {
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	StartDate   Date      `json:"start_date"`
	Label       string    `json:"label,omitempty"`
	Frequency   Frequency `json:"frequency"`
	Interval    int       `json:"interval"`
	EndDate     *Date     `json:"end_date,omitempty"`
}

// Rule converts an approved candidate into a forward-projecting recurring
// rule. The rule is anchored at the candidate's last observed occurrence,
// not its first: materialization should continue from the most recent real
// event.
func (c *RecurringCandidate) Rule() RecurringRule {
	return RecurringRule{
		Description: c.Description,
		Amount:      c.Amount,
		StartDate:   c.LastDate,
		Label:       c.Label,
		Frequency:   c.Frequency,
		Interval:    c.Interval,
	}
}

// AnchorTransaction builds the confirmed transaction created alongside the
// rule, dated at the candidate's last observed occurrence.
func (c *RecurringCandidate) AnchorTransaction() Transaction {
	return Transaction{
		Description: c.Description,
		Amount:      c.Amount,
		Date:        c.LastDate,
		Label:       c.Label,
		IsConfirmed: true,
	}
}
