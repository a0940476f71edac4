package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smritirangarajan/spenderella/internal/analytics"
)

// RangeSelectedMsg is emitted when the user has picked a valid date range.
type RangeSelectedMsg struct {
	Range analytics.Range
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// RangePicker cycles through the relative presets and accepts a custom from/to pair.
type RangePicker struct {
	state  timeframeState
	preset int
	now    func() time.Time

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	custom *analytics.Range
	err    error
}

func NewRangePicker() RangePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "From: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "To:   "

	return RangePicker{
		state:      timeframeStateSelect,
		now:        time.Now,
		startInput: si,
		endInput:   ei,
	}
}

// Current resolves the range the picker is showing.
func (m RangePicker) Current() (analytics.Range, error) {
	if m.custom != nil {
		return *m.custom, nil
	}

	return analytics.Resolve(analytics.Presets[m.preset], nil, nil, m.now())
}

func (m RangePicker) Label() string {
	if m.custom != nil {
		return fmt.Sprintf("%s to %s", FormatDate(m.custom.From), FormatDate(m.custom.To))
	}

	return analytics.Presets[m.preset].Label()
}

func (m RangePicker) selected() tea.Cmd {
	r, err := m.Current()
	if err != nil {
		return nil
	}

	return func() tea.Msg { return RangeSelectedMsg{Range: r} }
}

func (m RangePicker) Update(msg tea.Msg) (RangePicker, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(msg)
		case timeframeStateCustom:
			return m.updateCustom(msg)
		}
	}

	if m.state == timeframeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m RangePicker) updateSelect(msg tea.KeyMsg) (RangePicker, tea.Cmd) {
	n := len(analytics.Presets)

	switch msg.String() {
	case "left", "h":
		m.custom = nil
		m.preset = (m.preset - 1 + n) % n

		return m, m.selected()
	case "right", "l":
		m.custom = nil
		m.preset = (m.preset + 1) % n

		return m, m.selected()
	case "c":
		m.state = timeframeStateCustom
		m.focusIndex = 0
		m.endInput.Blur()
		m.startInput.Focus()

		return m, textinput.Blink
	}

	return m, nil
}

func (m RangePicker) updateCustom(msg tea.KeyMsg) (RangePicker, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
			return m, textinput.Blink
		}

		m.endInput.Focus()

		return m, textinput.Blink

	case "enter":
		from, err := time.Parse(time.DateOnly, m.startInput.Value())
		if err != nil {
			m.err = errors.New("invalid start date (YYYY-MM-DD)")
			return m, nil
		}

		to, err := time.Parse(time.DateOnly, m.endInput.Value())
		if err != nil {
			m.err = errors.New("invalid end date (YYYY-MM-DD)")
			return m, nil
		}

		r, err := analytics.Resolve(analytics.PresetCustom, &from, &to, m.now())
		if err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil
		m.custom = &r
		m.state = timeframeStateSelect

		return m, m.selected()

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil
	}

	return m.updateInputs(msg)
}

func (m RangePicker) updateInputs(msg tea.Msg) (RangePicker, tea.Cmd) {
	var cmds []tea.Cmd

	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func (m RangePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = "\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to cancel)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	return fmt.Sprintf("Period: ← %s →  (c: custom range)%s", activeStyle(m.Label()), errStr)
}

// IsSelecting reports whether the picker is cycling presets rather than taking custom input.
func (m RangePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}
