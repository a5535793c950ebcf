package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the candidate review and blocks until the user quits or
// ctx is canceled.
func Run(ctx context.Context, r reviewer) error {
	program := tea.NewProgram(newModel(ctx, r), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("candidate review failed: %w", err)
	}
	return nil
}
