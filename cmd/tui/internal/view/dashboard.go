package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/smritirangarajan/spenderella/internal/analytics"
)

type DashboardModel struct {
	CommonModel
	analytics *analytics.Service

	picker    RangePicker
	summary   *analytics.Summary
	breakdown *analytics.Breakdown
	loading   bool
	err       error
}

func NewDashboardModel(svc *analytics.Service, userID uuid.UUID) DashboardModel {
	return DashboardModel{
		CommonModel: CommonModel{UserID: userID},
		analytics:   svc,
		picker:      NewRangePicker(),
		loading:     true,
	}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	return "←/→: period | c: custom range | r: refresh | Esc: back"
}

func (m DashboardModel) Init() tea.Cmd {
	r, err := m.picker.Current()
	if err != nil {
		return nil
	}

	return m.loadCmd(r)
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.summary = msg.summary
		m.breakdown = msg.breakdown

		return m, nil

	case RangeSelectedMsg:
		m.loading = true
		return m, m.loadCmd(msg.Range)

	case tea.KeyMsg:
		if m.picker.IsSelecting() {
			switch msg.String() {
			case "esc":
				return m, Back
			case "r":
				m.loading = true
				return m, m.Init()
			}
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m DashboardModel) View() string {
	var b strings.Builder

	b.WriteString(m.picker.View() + "\n\n")

	switch {
	case m.loading:
		b.WriteString("Loading...")
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.summary != nil:
		b.WriteString(m.viewSummary())

		if m.breakdown != nil {
			b.WriteString("\n\n" + m.viewBreakdown())
		}
	}

	b.WriteString("\n\n" + faintStyle.Render(m.ShortHelp()))

	return padded.Render(b.String())
}

func (m DashboardModel) viewSummary() string {
	s := m.summary

	card := lipgloss.NewStyle().
		Padding(0, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63"))

	tile := func(label string, value float64, change *float64) string {
		body := fmt.Sprintf("%s\n%s", faintStyle.Render(label), FormatUnits(value))
		if change != nil && s.PreviousPeriod != nil {
			body += "\n" + changeLabel(*change)
		}

		return card.Render(body)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Balance", s.AvailableBalance, &s.PercentageChange.Balance),
		tile("Income", s.TotalIncome, &s.PercentageChange.Income),
		tile("Expenses", s.TotalExpenses, &s.PercentageChange.Expenses),
		card.Render(fmt.Sprintf("%s\n%.2f%%\n%s",
			faintStyle.Render("Saving rate"),
			s.SavingRate.Percentage,
			faintStyle.Render(fmt.Sprintf("%d transactions", s.TransactionCount)),
		)),
	)
}

func changeLabel(pct float64) string {
	label := fmt.Sprintf("%+.2f%%", pct)
	if pct < 0 {
		return errorStyle.Render(label)
	}

	return okStyle.Render(label)
}

func (m DashboardModel) viewBreakdown() string {
	bd := m.breakdown
	if len(bd.Breakdown) == 0 {
		return faintStyle.Render("No expenses in this period.")
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Spending by category (total %s)\n\n", FormatUnits(bd.TotalSpent))

	for _, c := range bd.Breakdown {
		bar := strings.Repeat("█", int(c.Percentage/5))
		fmt.Fprintf(&b, "  %-16s %10s  %6.2f%%  %s\n", c.Name, FormatUnits(c.Value), c.Percentage, activeStyle(bar))
	}

	return b.String()
}

type dashboardLoadedMsg struct {
	summary   *analytics.Summary
	breakdown *analytics.Breakdown
	err       error
}

func (m DashboardModel) loadCmd(r analytics.Range) tea.Cmd {
	svc, userID := m.analytics, m.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		summary, err := svc.Summary(ctx, userID, r)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}

		breakdown, err := svc.ExpenseBreakdown(ctx, userID, r)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}

		return dashboardLoadedMsg{summary: summary, breakdown: breakdown}
	}
}
