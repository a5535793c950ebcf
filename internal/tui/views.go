package tui

import (
	"fmt"
	"strings"

	"github.com/RocketCaptain/BillPrepared/internal/cli"
	"github.com/RocketCaptain/BillPrepared/internal/model"
)

var fieldLabels = [fieldCount]string{
	"Description",
	"Amount",
	"Label",
	"Frequency",
	"Interval",
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	candidates := m.reviewer.Candidates()
	if len(candidates) == 0 {
		return cli.FormatInfo("No recurring candidates were detected in this statement.") + "\n"
	}

	var b strings.Builder
	b.WriteString(cli.FormatTitle(fmt.Sprintf("Recurring candidates (%d to review)", m.reviewer.Pending())))
	b.WriteString("\n\n")

	for i, candidate := range candidates {
		b.WriteString(m.renderRow(i, candidate))
		b.WriteString("\n")
	}

	switch m.state {
	case StateEditing:
		b.WriteString("\n")
		b.WriteString(m.renderEditForm())
	case StateApproving:
		b.WriteString("\n")
		b.WriteString(m.spin.View() + " Adding recurring transaction...")
	case StateBrowsing:
	}

	if m.lastErr != nil {
		b.WriteString("\n")
		b.WriteString(cli.FormatError(m.lastErr.Error()))
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderHelp())
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderRow(i int, candidate model.RecurringCandidate) string {
	marker := "  "
	if i == m.cursor {
		marker = cli.PromptStyle.Render("▸ ")
	}

	line := fmt.Sprintf("%s%-28s %10s  every %d %s  last %s  seen %d time(s)",
		marker,
		candidate.Description,
		fmt.Sprintf("%.2f", candidate.Amount),
		candidate.Interval,
		frequencyNoun(candidate.Frequency, candidate.Interval),
		candidate.LastDate,
		candidate.Occurrences)

	if candidate.UniqueDescriptions > 1 {
		line += cli.SubtleStyle.Render(fmt.Sprintf("  (%d variants)", candidate.UniqueDescriptions))
	}

	if m.reviewer.Added(i) {
		line += "  " + cli.SuccessStyle.Render(cli.SuccessIcon+" added")
	}

	if i == m.cursor {
		return cli.BoldStyle.Render(line)
	}
	return line
}

func (m Model) renderEditForm() string {
	var b strings.Builder
	b.WriteString(cli.PromptStyle.Render("Edit candidate"))
	b.WriteString("\n")
	for i, input := range m.inputs {
		cursor := "  "
		if i == m.field {
			cursor = cli.PromptStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%-12s %s\n", cursor, fieldLabels[i], input.View()))
	}
	b.WriteString(cli.SubtleStyle.Render("Tab: next field · Enter: save · Esc: discard"))
	return b.String()
}

func (m Model) renderHelp() string {
	switch m.state {
	case StateBrowsing:
		return cli.SubtleStyle.Render("↑/↓: move · e: edit · a/Enter: approve · q: quit")
	case StateApproving:
		return cli.SubtleStyle.Render("Waiting for the ledger...")
	default:
		return ""
	}
}

func frequencyNoun(f model.Frequency, interval int) string {
	noun := map[model.Frequency]string{
		model.FrequencyDaily:   "day",
		model.FrequencyWeekly:  "week",
		model.FrequencyMonthly: "month",
	}[f]
	if noun == "" {
		noun = string(f)
	}
	if interval != 1 {
		noun += "s"
	}
	return noun
}
