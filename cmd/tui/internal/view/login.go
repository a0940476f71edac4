package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/smritirangarajan/spenderella/internal/auth"
)

// LoggedInMsg is emitted once credentials have been accepted.
type LoggedInMsg struct {
	UserID uuid.UUID
	Name   string
}

type loginFields struct {
	email    string
	password string
}

type LoginModel struct {
	authService *auth.Service

	fields *loginFields
	form   *huh.Form
	busy   bool
	err    error
}

func NewLoginModel(authSvc *auth.Service) LoginModel {
	m := LoginModel{authService: authSvc, fields: &loginFields{}}
	m.form = m.newForm()

	return m
}

func (m LoginModel) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&m.fields.email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return errors.New("enter a valid email")
					}

					return nil
				}),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fields.password),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoginModel) Title() string     { return "Sign In" }
func (m LoginModel) ShortHelp() string { return "Enter: next | Ctrl+C: quit" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(loginResultMsg); ok {
		m.busy = false

		if res.err == nil {
			return m, func() tea.Msg { return LoggedInMsg{UserID: res.userID, Name: res.name} }
		}

		m.err = res.err
		m.fields.password = ""
		m.form = m.newForm()

		return m, m.form.Init()
	}

	if m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.busy = true
	m.err = nil

	return m, m.loginCmd()
}

func (m LoginModel) View() string {
	s := "Spenderella\n\n"
	if m.busy {
		return padded.Render(s + "Signing in...")
	}

	s += m.form.View()

	if m.err != nil {
		s += "\n" + errorStyle.Render(m.err.Error())
	}

	return padded.Render(s)
}

type loginResultMsg struct {
	userID uuid.UUID
	name   string
	err    error
}

func (m LoginModel) loginCmd() tea.Cmd {
	email, password := m.fields.email, m.fields.password

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.authService.Login(ctx, email, password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return loginResultMsg{err: errors.New("invalid email or password")}
			}

			return loginResultMsg{err: fmt.Errorf("sign in failed: %w", err)}
		}

		return loginResultMsg{userID: res.User.ID, name: res.User.Name}
	}
}
