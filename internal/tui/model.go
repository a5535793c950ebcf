// Package tui implements the interactive review of detected recurring
// candidates.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/RocketCaptain/BillPrepared/internal/model"
)

// State represents the current state of the review.
type State int

// Review states.
const (
	StateBrowsing State = iota
	StateEditing
	StateApproving
)

// Edit form field order.
const (
	fieldDescription = iota
	fieldAmount
	fieldLabel
	fieldFrequency
	fieldInterval
	fieldCount
)

// reviewer is the slice of the candidate workflow the TUI drives.
type reviewer interface {
	Candidates() []model.RecurringCandidate
	Edit(i int, candidate model.RecurringCandidate) error
	Approve(ctx context.Context, i int) error
	Added(i int) bool
	Pending() int
}

type approveDoneMsg struct {
	err   error
	index int
}

// Model holds the review TUI state.
type Model struct {
	ctx      context.Context
	reviewer reviewer
	lastErr  error
	inputs   []textinput.Model
	keymap   KeyMap
	spin     spinner.Model
	cursor   int
	field    int
	width    int
	state    State
	quitting bool
}

func newModel(ctx context.Context, r reviewer) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].CharLimit = 64
	}
	inputs[fieldDescription].Placeholder = "Description"
	inputs[fieldAmount].Placeholder = "Amount"
	inputs[fieldLabel].Placeholder = "Label (optional)"
	inputs[fieldFrequency].Placeholder = "daily / weekly / monthly"
	inputs[fieldInterval].Placeholder = "Interval"

	return Model{
		ctx:      ctx,
		reviewer: r,
		keymap:   DefaultKeyMap(),
		spin:     sp,
		inputs:   inputs,
		state:    StateBrowsing,
		width:    100,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}

	case approveDoneMsg:
		m.state = StateBrowsing
		m.lastErr = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.state == StateApproving {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch m.state {
	case StateBrowsing:
		return m.updateBrowsing(msg)
	case StateEditing:
		return m.updateEditing(msg)
	case StateApproving:
		// Input is ignored while the two create calls are in flight.
		return m, nil
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	candidates := m.reviewer.Candidates()

	switch {
	case key.Matches(keyMsg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, m.keymap.Down):
		if m.cursor < len(candidates)-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, m.keymap.Edit):
		if len(candidates) == 0 || m.reviewer.Added(m.cursor) {
			return m, nil
		}
		m.beginEdit(candidates[m.cursor])
		m.state = StateEditing
		m.lastErr = nil
		return m, textinput.Blink

	case key.Matches(keyMsg, m.keymap.Approve):
		if len(candidates) == 0 || m.reviewer.Added(m.cursor) {
			return m, nil
		}
		m.state = StateApproving
		m.lastErr = nil
		index := m.cursor
		return m, tea.Batch(m.spin.Tick, func() tea.Msg {
			return approveDoneMsg{index: index, err: m.reviewer.Approve(m.ctx, index)}
		})
	}

	return m, nil
}

func (m Model) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keymap.Cancel):
			m.state = StateBrowsing
			return m, nil

		case key.Matches(keyMsg, m.keymap.Confirm):
			if err := m.commitEdit(); err != nil {
				m.lastErr = err
				return m, nil
			}
			m.state = StateBrowsing
			m.lastErr = nil
			return m, nil

		case key.Matches(keyMsg, m.keymap.NextField):
			m.focusField((m.field + 1) % fieldCount)
			return m, textinput.Blink

		case key.Matches(keyMsg, m.keymap.PrevField):
			m.focusField((m.field + fieldCount - 1) % fieldCount)
			return m, textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
	return m, cmd
}

func (m *Model) beginEdit(candidate model.RecurringCandidate) {
	m.inputs[fieldDescription].SetValue(candidate.Description)
	m.inputs[fieldAmount].SetValue(strconv.FormatFloat(candidate.Amount, 'f', -1, 64))
	m.inputs[fieldLabel].SetValue(candidate.Label)
	m.inputs[fieldFrequency].SetValue(string(candidate.Frequency))
	m.inputs[fieldInterval].SetValue(strconv.Itoa(candidate.Interval))
	m.focusField(fieldDescription)
}

func (m *Model) focusField(i int) {
	m.inputs[m.field].Blur()
	m.field = i
	m.inputs[m.field].Focus()
}

// commitEdit writes the form back onto the candidate. Only the numeric
// fields can fail here; everything else stays free-form until approval.
func (m *Model) commitEdit() error {
	candidate := m.reviewer.Candidates()[m.cursor]

	amount, err := strconv.ParseFloat(strings.TrimSpace(m.inputs[fieldAmount].Value()), 64)
	if err != nil {
		return fmt.Errorf("amount must be a number")
	}
	interval, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldInterval].Value()))
	if err != nil {
		return fmt.Errorf("interval must be a whole number")
	}

	candidate.Description = strings.TrimSpace(m.inputs[fieldDescription].Value())
	candidate.Amount = amount
	candidate.Label = strings.TrimSpace(m.inputs[fieldLabel].Value())
	candidate.Frequency = model.Frequency(strings.ToLower(strings.TrimSpace(m.inputs[fieldFrequency].Value())))
	candidate.Interval = interval

	return m.reviewer.Edit(m.cursor, candidate)
}
