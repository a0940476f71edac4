package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/smritirangarajan/spenderella/internal/matching"
	"github.com/smritirangarajan/spenderella/internal/transaction"
)

const listPageSize = 20

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
)

var (
	typeFilterLabels      = []string{"All", "Income", "Expense"}
	recurringFilterLabels = []string{"All", "Recurring", "One-off"}
)

type editFields struct {
	title    string
	category string
	remember bool
}

type ListModel struct {
	CommonModel
	txService       *transaction.Service
	matchingService *matching.Service

	state      listState
	table      table.Model
	txs        []*transaction.Transaction
	pagination transaction.Pagination
	form       *huh.Form
	fields     *editFields

	typeFilterIdx      int
	recurringFilterIdx int

	filter  transaction.ListFilter
	loading bool
	err     error
	status  string
}

func NewListModel(txSvc *transaction.Service, matchSvc *matching.Service, userID uuid.UUID) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 8},
		{Title: "Amount", Width: 12},
		{Title: "Category", Width: 16},
		{Title: "Title", Width: 32},
		{Title: "Repeats", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return ListModel{
		CommonModel:     CommonModel{UserID: userID},
		txService:       txSvc,
		matchingService: matchSvc,
		table:           t,
		loading:         true,
		filter: transaction.ListFilter{
			UserID:     userID,
			PageSize:   listPageSize,
			PageNumber: 1,
		},
	}
}

func (m ListModel) Title() string { return "Transactions" }

func (m ListModel) ShortHelp() string {
	if m.state == listStateEdit {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: edit | d: duplicate | x: delete | t: type | c: recurring | n/p: page | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.txs = msg.result.Transactions
		m.pagination = msg.result.Pagination
		m.refreshTable()

		return m, nil

	case listActionMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "e":
			return m.enterEditMode()
		case "d":
			if tx := m.selected(); tx != nil {
				return m, m.duplicateCmd(tx.ID)
			}
		case "x":
			if tx := m.selected(); tx != nil {
				return m, m.deleteCmd(tx.ID)
			}
		case "t":
			m.typeFilterIdx = (m.typeFilterIdx + 1) % len(typeFilterLabels)
			m.applyFilter()

			return m, m.loadTxsCmd()
		case "c":
			m.recurringFilterIdx = (m.recurringFilterIdx + 1) % len(recurringFilterLabels)
			m.applyFilter()

			return m, m.loadTxsCmd()
		case "n":
			if m.filter.PageNumber < m.pagination.TotalPages {
				m.filter.PageNumber++
				return m, m.loadTxsCmd()
			}
		case "p":
			if m.filter.PageNumber > 1 {
				m.filter.PageNumber--
				return m, m.loadTxsCmd()
			}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.fields = &editFields{title: tx.Title, category: tx.Category}

	notEmpty := func(label string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s cannot be empty", label)
			}

			return nil
		}
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("title").
				Title("Title").
				Value(&m.fields.title).
				Validate(notEmpty("title")),
			huh.NewInput().
				Key("category").
				Title("Category").
				Value(&m.fields.category).
				Validate(notEmpty("category")),
			huh.NewConfirm().
				Key("remember").
				Title("Use this category for similar titles?").
				Value(&m.fields.remember),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m ListModel) View() string {
	if m.loading {
		return padded.Render("Loading transactions...")
	}

	if m.err != nil {
		return padded.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	header := fmt.Sprintf(
		"Filter: [t] Type: %s | [c] Recurring: %s | Page %d of %d (%d total)",
		activeStyle(typeFilterLabels[m.typeFilterIdx]),
		activeStyle(recurringFilterLabels[m.recurringFilterIdx]),
		m.pagination.PageNumber,
		max(m.pagination.TotalPages, 1),
		m.pagination.TotalCount,
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
		faintStyle.Render(m.ShortHelp()),
	)

	if m.state == listStateEdit && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Edit Transaction\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ListModel) applyFilter() {
	m.filter.PageNumber = 1

	switch m.typeFilterIdx {
	case 1:
		m.filter.Type = new(transaction.TypeIncome)
	case 2:
		m.filter.Type = new(transaction.TypeExpense)
	default:
		m.filter.Type = nil
	}

	switch m.recurringFilterIdx {
	case 1:
		m.filter.Recurring = new(true)
	case 2:
		m.filter.Recurring = new(false)
	default:
		m.filter.Recurring = nil
	}
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))

	for _, tx := range m.txs {
		repeats := ""
		if tx.Recurrence.IsRecurring && tx.Recurrence.Frequency != nil {
			repeats = strings.ToLower(string(*tx.Recurrence.Frequency))
		}

		amount := FormatAmount(tx.Amount)
		if tx.Type == transaction.TypeExpense {
			amount = "-" + amount
		}

		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			string(tx.Type),
			amount,
			tx.Category,
			tx.Title,
			repeats,
		})
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Messages

type loadListMsg struct {
	result *transaction.ListResult
	err    error
}

func (m ListModel) loadTxsCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.txService.List(ctx, filter)

		return loadListMsg{result: res, err: err}
	}
}

type listActionMsg struct {
	status string
	err    error
}

func (m ListModel) saveCmd() tea.Cmd {
	tx := m.selected()
	if tx == nil {
		return nil
	}

	id, userID := tx.ID, m.UserID
	title := strings.TrimSpace(m.fields.title)
	category := strings.TrimSpace(m.fields.category)
	remember := m.fields.remember

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.txService.Update(ctx, userID, id, transaction.UpdateParams{
			Title:    &title,
			Category: &category,
		}); err != nil {
			return listActionMsg{err: err}
		}

		if remember {
			if err := m.matchingService.Learn(ctx, userID, title, category); err != nil {
				return listActionMsg{err: err}
			}

			return listActionMsg{status: fmt.Sprintf("Saved. %q will now suggest %s.", title, category)}
		}

		return listActionMsg{status: "Saved."}
	}
}

func (m ListModel) duplicateCmd(id uuid.UUID) tea.Cmd {
	userID := m.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		dup, err := m.txService.Duplicate(ctx, userID, id)
		if err != nil {
			return listActionMsg{err: err}
		}

		return listActionMsg{status: fmt.Sprintf("Created %q.", dup.Title)}
	}
}

func (m ListModel) deleteCmd(id uuid.UUID) tea.Cmd {
	userID := m.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.txService.Delete(ctx, userID, id); err != nil {
			return listActionMsg{err: err}
		}

		return listActionMsg{status: "Transaction deleted."}
	}
}
