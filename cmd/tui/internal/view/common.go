package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views that act on behalf of the signed-in user.
type CommonModel struct {
	UserID uuid.UUID
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
