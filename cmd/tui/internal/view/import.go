package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/smritirangarajan/spenderella/internal/importer"
	"github.com/smritirangarajan/spenderella/internal/transaction"
)

const (
	importTimeout  = 2 * time.Minute
	maxShownErrors = 8
)

type ImportModel struct {
	CommonModel
	txService *transaction.Service

	session    *importer.Session
	filePicker filepicker.Model

	column    int
	ready     int
	rowErrors []importer.RowError
	busy      bool
	status    string
	err       error
}

func NewImportModel(txSvc *transaction.Service, session *importer.Session, userID uuid.UUID) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		CommonModel: CommonModel{UserID: userID},
		txService:   txSvc,
		session:     session,
		filePicker:  fp,
	}
}

func (m ImportModel) Title() string { return "Import CSV" }

func (m ImportModel) ShortHelp() string {
	switch m.session.State() {
	case importer.StateAwaitingMapping:
		return "↑/↓: column | ←/→: field | s: suggest | Enter: continue | Esc: cancel"
	case importer.StateAwaitingConfirmation:
		return "Enter: import | e: edit mapping | Esc: cancel"
	case importer.StateDone:
		return "Enter: import another | Esc: back"
	}

	return "Enter: select | Esc: back"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case uploadResultMsg:
		m.busy = false
		m.err = msg.err

		if msg.err == nil {
			m.column = 0
			m.status = fmt.Sprintf("Loaded %s", filepath.Base(msg.path))
		}

		return m, nil

	case confirmResultMsg:
		m.busy = false

		if msg.err != nil {
			m.err = msg.err
			m.refreshCheck()

			return m, nil
		}

		m.err = nil
		m.status = fmt.Sprintf("Imported %d transactions.", msg.count)

		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}

		switch m.session.State() {
		case importer.StateAwaitingMapping:
			return m.updateMapping(msg)
		case importer.StateAwaitingConfirmation:
			return m.updateConfirmation(msg)
		case importer.StateDone:
			return m.updateDone(msg)
		}

		if msg.Type == tea.KeyEsc {
			m.err = nil
			return m, Back
		}
	}

	if m.busy || m.session.State() != importer.StateAwaitingFile {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.busy = true
		m.err = nil
		m.status = fmt.Sprintf("Reading %s...", path)

		return m, m.uploadCmd(path)
	}

	return m, cmd
}

func (m ImportModel) updateMapping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.session.Snapshot()

	switch msg.String() {
	case "esc":
		return m.cancel()
	case "up", "k":
		if m.column > 0 {
			m.column--
		}
	case "down", "j":
		if m.column < len(snap.Columns)-1 {
			m.column++
		}
	case "left", "h":
		m.err = m.cycleField(snap, -1)
	case "right", "l":
		m.err = m.cycleField(snap, 1)
	case "s":
		m.err = m.session.Suggest()
	case "enter":
		if err := m.session.SubmitMapping(); err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil
		m.refreshCheck()
	}

	return m, nil
}

// cycleField moves the highlighted column to the next field it may still take.
func (m ImportModel) cycleField(snap importer.Snapshot, step int) error {
	if m.column >= len(snap.Columns) {
		return nil
	}

	column := snap.Columns[m.column]
	options := snap.Available[column]

	if len(options) == 0 {
		return nil
	}

	i := slices.Index(options, snap.Mapping[column])
	i = (i + step + len(options)) % len(options)

	return m.session.Assign(column, options[i])
}

func (m *ImportModel) refreshCheck() {
	records, rowErrors, err := m.session.Check()
	if err != nil {
		return
	}

	m.ready = len(records)
	m.rowErrors = rowErrors
}

func (m ImportModel) updateConfirmation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.cancel()
	case "e":
		m.err = m.session.EditMapping()
		m.rowErrors = nil
	case "enter":
		if len(m.rowErrors) > 0 {
			m.err = errors.New("fix the rows listed below before importing")
			return m, nil
		}

		m.busy = true
		m.err = nil
		m.status = fmt.Sprintf("Importing %d transactions...", m.ready)

		return m, m.confirmCmd()
	}

	return m, nil
}

func (m ImportModel) updateDone(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.err = m.session.Reset()
		m.status = ""

		return m, m.filePicker.Init()
	case "esc":
		m.err = m.session.Reset()
		m.status = ""

		return m, Back
	}

	return m, nil
}

func (m ImportModel) cancel() (tea.Model, tea.Cmd) {
	m.err = m.session.Cancel()
	m.rowErrors = nil
	m.status = "Import cancelled."

	return m, m.filePicker.Init()
}

func (m ImportModel) View() string {
	snap := m.session.Snapshot()

	var body string

	switch {
	case m.busy:
		body = m.status
	case snap.State == importer.StateAwaitingMapping:
		body = m.viewMapping(snap)
	case snap.State == importer.StateAwaitingConfirmation:
		body = m.viewConfirmation(snap)
	case snap.State == importer.StateDone:
		body = okStyle.Render(m.status)
	default:
		body = "Select a CSV file to import:\n\n" + m.filePicker.View()
		if m.status != "" {
			body = faintStyle.Render(m.status) + "\n\n" + body
		}
	}

	if m.err != nil {
		body += "\n\n" + errorStyle.Render(m.err.Error())
	}

	return padded.Render(body + "\n\n" + faintStyle.Render(m.ShortHelp()))
}

func (m ImportModel) viewMapping(snap importer.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  (%d rows, %s)\n\n", snap.FileName, snap.RowCount, snap.Charset)

	conflicts := make(map[string]string, len(snap.Conflicts))
	for _, c := range snap.Conflicts {
		conflicts[c.Column] = c.Message
	}

	for i, column := range snap.Columns {
		cursor := "  "
		if i == m.column {
			cursor = "> "
		}

		field := snap.Mapping[column].String()
		if i == m.column {
			field = activeStyle(field)
		}

		sample := ""
		if len(snap.SampleRows) > 0 {
			sample = faintStyle.Render(snap.SampleRows[0][column])
		}

		line := fmt.Sprintf("%s%-24s → %-16s %s", cursor, column, field, sample)
		if msg, ok := conflicts[column]; ok {
			line += "  " + errorStyle.Render(msg)
		}

		b.WriteString(line + "\n")
	}

	if len(snap.Missing) > 0 {
		names := make([]string, len(snap.Missing))
		for i, f := range snap.Missing {
			names[i] = f.String()
		}

		b.WriteString("\nStill required: " + errorStyle.Render(strings.Join(names, ", ")))
	}

	return b.String()
}

func (m ImportModel) viewConfirmation(snap importer.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", snap.FileName)
	fmt.Fprintf(&b, "%s rows ready to import\n", okStyle.Render(fmt.Sprint(m.ready)))

	if snap.LastError != "" {
		b.WriteString("\nLast attempt failed: " + errorStyle.Render(snap.LastError) + "\n")
	}

	if len(m.rowErrors) == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "%s rows have errors\n\n", errorStyle.Render(fmt.Sprint(len(m.rowErrors))))

	for _, re := range m.rowErrors[:min(maxShownErrors, len(m.rowErrors))] {
		fmt.Fprintf(&b, "  Row %d: %s\n", re.Row, strings.Join(re.Messages, "; "))
	}

	if extra := len(m.rowErrors) - maxShownErrors; extra > 0 {
		b.WriteString(faintStyle.Render(fmt.Sprintf("  ...and %d more", extra)) + "\n")
	}

	return b.String()
}

// Messages

type uploadResultMsg struct {
	path string
	err  error
}

type confirmResultMsg struct {
	count int
	err   error
}

func (m ImportModel) uploadCmd(path string) tea.Cmd {
	session := m.session

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadResultMsg{path: path, err: err}
		}
		defer f.Close()

		size := int64(-1)
		if info, err := f.Stat(); err == nil {
			size = info.Size()
		}

		return uploadResultMsg{path: path, err: session.Upload(filepath.Base(path), f, size)}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	session, txService, userID := m.session, m.txService, m.UserID

	creator := importer.BulkCreatorFunc(func(ctx context.Context, records []importer.Record) (int, error) {
		params := make([]transaction.CreateParams, len(records))
		for i, rec := range records {
			params[i] = rec.Params()
		}

		txs, err := txService.CreateBatch(ctx, userID, params)

		return len(txs), err
	})

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		n, err := session.Confirm(ctx, creator)

		return confirmResultMsg{count: n, err: err}
	}
}
