// Package forecast projects the cached transaction window into a
// month-by-month balance outlook. Projection is pure: it never touches
// the network or the cache, it only folds over what it is given.
package forecast

import (
	"time"

	"github.com/RocketCaptain/BillPrepared/internal/model"
)

// MonthProjection is one forecast row. Balance is the running balance
// after applying every transaction dated in this month.
type MonthProjection struct {
	Label   string
	Month   model.Date
	Total   float64
	Balance float64
}

// Summary aggregates the projection for display.
type Summary struct {
	EndBalance       float64
	AvgMonthlyChange float64
	HasRecurring     bool
}

// Project builds one row per forecast month, starting at the calendar
// month after now. Anchoring at the first of the current month keeps the
// month sequence strictly increasing even when now falls on day 29..31.
func Project(balance float64, txs []model.Transaction, months int, now time.Time) []MonthProjection {
	if months <= 0 {
		return nil
	}

	anchor := model.NewDate(now.Year(), now.Month(), 1)
	running := balance

	projections := make([]MonthProjection, 0, months)
	for i := 0; i < months; i++ {
		month := anchor.AddMonths(i + 1)

		var total float64
		for _, tx := range txs {
			if tx.Date.InMonth(month.Year(), month.Month()) {
				total += tx.Amount
			}
		}

		running += total
		projections = append(projections, MonthProjection{
			Label:   month.Time().Format("Jan 2006"),
			Month:   month,
			Total:   total,
			Balance: running,
		})
	}

	return projections
}

// Summarize recomputes the end-of-period balance from scratch rather
// than reading it off the last projection row. The average monthly
// change divides the sum of every supplied transaction by the forecast
// length, so amounts dated outside the forecast months still count.
func Summarize(balance float64, txs []model.Transaction, months int, now time.Time) Summary {
	var summary Summary
	if months <= 0 {
		return Summary{EndBalance: balance}
	}

	anchor := model.NewDate(now.Year(), now.Month(), 1)
	end := balance
	for i := 0; i < months; i++ {
		month := anchor.AddMonths(i + 1)
		for _, tx := range txs {
			if tx.Date.InMonth(month.Year(), month.Month()) {
				end += tx.Amount
			}
		}
	}
	summary.EndBalance = end

	var totalChange float64
	for _, tx := range txs {
		totalChange += tx.Amount
		if tx.IsRecurring {
			summary.HasRecurring = true
		}
	}
	summary.AvgMonthlyChange = totalChange / float64(months)

	return summary
}
