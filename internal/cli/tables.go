package cli

import (
	"fmt"
	"strings"

	"github.com/RocketCaptain/BillPrepared/internal/forecast"
	"github.com/RocketCaptain/BillPrepared/internal/model"
)

func formatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

// TransactionsTable renders the cached window as a table. The running
// column is a cumulative total seeded by the current balance and
// advanced by unconfirmed rows only: confirmed rows are already part of
// the balance.
func TransactionsTable(txs []model.Transaction, balance float64, dateFormat string, hideConfirmed bool) string {
	var b strings.Builder

	header := fmt.Sprintf("%-6s %-14s %-32s %-12s %12s %12s  %s",
		"ID", "Date", "Description", "Label", "Amount", "Running", "")
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")

	running := balance
	for _, tx := range txs {
		if !tx.IsConfirmed {
			running += tx.Amount
		}
		if hideConfirmed && tx.IsConfirmed {
			continue
		}

		runningCell := formatMoney(running)
		if tx.IsConfirmed {
			runningCell = ""
		}

		var marks []string
		if tx.IsConfirmed {
			marks = append(marks, SuccessStyle.Render(SuccessIcon))
		}
		if tx.IsRecurring {
			marks = append(marks, RepeatIcon)
		}

		b.WriteString(fmt.Sprintf("%-6d %-14s %-32s %-12s %12s %12s  %s\n",
			tx.ID,
			model.FormatDate(tx.Date, dateFormat),
			truncate(tx.Description, 32),
			truncate(tx.Label, 12),
			FormatAmount(tx.Amount),
			runningCell,
			strings.Join(marks, " ")))
	}

	return b.String()
}

// UpcomingList renders the short unconfirmed preview shown under the
// balance.
func UpcomingList(txs []model.Transaction, dateFormat string) string {
	if len(txs) == 0 {
		return SubtleStyle.Render("No upcoming transactions")
	}

	var b strings.Builder
	for _, tx := range txs {
		b.WriteString(fmt.Sprintf("  %s  %-32s %12s\n",
			model.FormatDate(tx.Date, dateFormat),
			truncate(tx.Description, 32),
			FormatAmount(tx.Amount)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// ForecastTable renders one row per projected month.
func ForecastTable(projections []forecast.MonthProjection) string {
	var b strings.Builder

	header := fmt.Sprintf("%-10s %14s %14s", "Month", "Change", "Balance")
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")

	for _, p := range projections {
		b.WriteString(fmt.Sprintf("%-10s %14s %14s\n",
			p.Label,
			FormatAmount(p.Total),
			formatMoney(p.Balance)))
	}

	return b.String()
}

// ForecastSummary renders the end-of-period boxes under the forecast
// table, plus a hint when no recurring transactions exist to project.
func ForecastSummary(summary forecast.Summary, months int) string {
	boxes := []string{
		RenderBox("End balance", BoldStyle.Render(formatMoney(summary.EndBalance))),
		RenderBox(fmt.Sprintf("Avg change over %d month(s)", months), FormatAmount(summary.AvgMonthlyChange)),
	}

	out := strings.Join(boxes, "\n")
	if !summary.HasRecurring {
		out += "\n" + FormatInfo("No recurring transactions found. Import a statement or add recurring rules to improve the projection.")
	}
	return out
}

// ConfirmedTable renders the auto-confirmed report after a statement
// import.
func ConfirmedTable(txs []model.Transaction, dateFormat string) string {
	if len(txs) == 0 {
		return SubtleStyle.Render("No transactions were auto-confirmed")
	}

	var b strings.Builder
	b.WriteString(FormatSuccess(fmt.Sprintf("%d transaction(s) auto-confirmed", len(txs))))
	b.WriteString("\n")
	for _, tx := range txs {
		b.WriteString(fmt.Sprintf("  %s  %-32s %12s\n",
			model.FormatDate(tx.Date, dateFormat),
			truncate(tx.Description, 32),
			FormatAmount(tx.Amount)))
	}
	return strings.TrimRight(b.String(), "\n")
}
