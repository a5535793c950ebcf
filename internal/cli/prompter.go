package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/RocketCaptain/BillPrepared/internal/common"
	"github.com/RocketCaptain/BillPrepared/internal/model"
)

// decisionQueue is the slice of the update queue the prompter drives.
type decisionQueue interface {
	Current() (model.PotentialUpdate, error)
	Resolve(ctx context.Context, updateFuture bool) error
	Len() int
	Drained() bool
}

// Prompter walks the user through pending statement updates one at a
// time on the terminal.
type Prompter struct {
	writer     io.Writer
	reader     *NonBlockingReader
	dateFormat string
}

// NewPrompter creates a prompter with the given reader and writer.
// dateFormat selects how dates are rendered, per the ledger settings.
func NewPrompter(reader io.Reader, writer io.Writer, dateFormat string) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader:     NewNonBlockingReader(reader),
		writer:     writer,
		dateFormat: dateFormat,
	}
}

// ResolveUpdates drains the queue interactively. Each update is shown
// with its statement and ledger sides; the user picks whether the whole
// series or only this occurrence is amended, or stops early. A failed
// decision leaves the update at the head and offers a retry.
func (p *Prompter) ResolveUpdates(ctx context.Context, queue decisionQueue) error {
	total := queue.Len()
	if total == 0 {
		return nil
	}

	fmt.Fprintln(p.writer, FormatTitle(fmt.Sprintf("%d potential update(s) need review", total)))

	for !queue.Drained() {
		update, err := queue.Current()
		if err != nil {
			return err
		}

		position := total - queue.Len() + 1
		title := fmt.Sprintf("Update %d of %d", position, total)
		fmt.Fprintln(p.writer, RenderBox(title, p.formatUpdate(update)))

		fmt.Fprintln(p.writer, "  [f] Update this and future occurrences")
		fmt.Fprintln(p.writer, "  [o] Update only this transaction")
		fmt.Fprintln(p.writer, "  [q] Stop reviewing")
		fmt.Fprintln(p.writer)

		choice, err := p.promptChoice(ctx, "Decision", []string{"f", "o", "q"})
		if err != nil {
			return err
		}
		if choice == "q" {
			fmt.Fprintln(p.writer, FormatInfo(fmt.Sprintf("%d update(s) left unresolved", queue.Len())))
			return nil
		}

		if err := queue.Resolve(ctx, choice == "f"); err != nil {
			// The ledger took the decision; only the local view is behind.
			// Retrying would target the next update, not this one.
			if errors.Is(err, common.ErrStaleCache) {
				slog.Warn("Cache refresh failed after update", "transaction_id", update.TransactionID, "error", err)
				fmt.Fprintln(p.writer, FormatWarning(fmt.Sprintf(
					"Updated %q, but refreshing the local view failed", update.DBDescription)))
				continue
			}

			slog.Warn("Update decision failed", "transaction_id", update.TransactionID, "error", err)
			fmt.Fprintln(p.writer, FormatError(fmt.Sprintf("Could not apply update: %v", err)))

			retry, retryErr := p.promptChoice(ctx, "Try again? [r]etry / [q]uit", []string{"r", "q"})
			if retryErr != nil {
				return retryErr
			}
			if retry == "q" {
				return nil
			}
			continue
		}

		fmt.Fprintln(p.writer, FormatSuccess(fmt.Sprintf("Updated %q", update.DBDescription)))
	}

	fmt.Fprintln(p.writer, FormatSuccess("All updates resolved"))
	return nil
}

func (p *Prompter) formatUpdate(update model.PotentialUpdate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Statement: %-30s %12s  %s\n",
		update.CSVDescription,
		formatMoney(update.NewAmount),
		model.FormatDate(update.CSVDate, p.dateFormat))
	fmt.Fprintf(&b, "Ledger:    %-30s %12s  %s\n",
		update.DBDescription,
		formatMoney(update.OldAmount),
		model.FormatDate(update.DBDate, p.dateFormat))
	fmt.Fprintf(&b, "Match: %.0f%% similar, amount differs by %.1f%%",
		update.SimilarityScore*100,
		update.AmountDifference*100)

	if update.RecurringID != nil {
		b.WriteString("\n" + RepeatIcon + " Part of a recurring series")
	}

	return b.String()
}

func (p *Prompter) promptChoice(ctx context.Context, label string, valid []string) (string, error) {
	for {
		fmt.Fprint(p.writer, FormatPrompt(label))

		line, err := p.reader.ReadLine(ctx)
		if err != nil {
			return "", err
		}

		choice := strings.ToLower(strings.TrimSpace(line))
		for _, v := range valid {
			if choice == v {
				return choice, nil
			}
		}

		fmt.Fprintln(p.writer, SubtleStyle.Render(
			fmt.Sprintf("Please enter one of: %s", strings.Join(valid, ", "))))
	}
}
