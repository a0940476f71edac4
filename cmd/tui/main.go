package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/smritirangarajan/spenderella/cmd/tui/internal/view"
	"github.com/smritirangarajan/spenderella/internal/analytics"
	analyticsStore "github.com/smritirangarajan/spenderella/internal/analytics/store"
	"github.com/smritirangarajan/spenderella/internal/auth"
	authStore "github.com/smritirangarajan/spenderella/internal/auth/store"
	"github.com/smritirangarajan/spenderella/internal/config"
	"github.com/smritirangarajan/spenderella/internal/database"
	"github.com/smritirangarajan/spenderella/internal/importer"
	"github.com/smritirangarajan/spenderella/internal/logger"
	"github.com/smritirangarajan/spenderella/internal/matching"
	matchingStore "github.com/smritirangarajan/spenderella/internal/matching/store"
	"github.com/smritirangarajan/spenderella/internal/transaction"
	txStore "github.com/smritirangarajan/spenderella/internal/transaction/store"
)

type services struct {
	auth        *auth.Service
	transaction *transaction.Service
	matching    *matching.Service
	analytics   *analytics.Service
	limits      importer.Limits
}

type model struct {
	svc services

	currentView View
	userName    string
	session     *importer.Session

	loginView     view.LoginModel
	importView    view.ImportModel
	listView      view.ListModel
	dashboardView view.DashboardModel
}

type View int

const (
	ViewLogin     View = 0
	ViewMenu      View = 1
	ViewImport    View = 2
	ViewList      View = 3
	ViewDashboard View = 4
)

func newServices(db *sql.DB, cfg *config.Config) services {
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	s := services{
		auth:        auth.NewService(authStore.New(db), tokens, cfg.Auth.BcryptCost),
		transaction: transaction.NewService(txStore.New(db), cfg.Import.MaxRows),
		matching:    matching.NewService(matchingStore.New(db)),
		analytics:   analytics.NewService(analyticsStore.New(db), cfg.Analytics.CacheTTL),
		limits: importer.Limits{
			MaxFileSize: cfg.Import.MaxFileSize,
			MaxRows:     cfg.Import.MaxRows,
		},
	}

	s.transaction.OnChange(s.analytics.Invalidate)

	return s
}

func initialModel(svc services) model {
	return model{
		svc:         svc,
		currentView: ViewLogin,
		loginView:   view.NewLoginModel(svc.auth),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewImport
				return m, m.importView.Init()
			case "2":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.svc.transaction, m.svc.matching, m.listView.UserID)

				return m, m.listView.Init()
			case "3":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.svc.analytics, m.dashboardView.UserID)

				return m, m.dashboardView.Init()
			}
		}
	case view.LoggedInMsg:
		m.userName = msg.Name
		m.session = importer.NewSession(m.svc.limits, nil)
		m.importView = view.NewImportModel(m.svc.transaction, m.session, msg.UserID)
		m.listView = view.NewListModel(m.svc.transaction, m.svc.matching, msg.UserID)
		m.dashboardView = view.NewDashboardModel(m.svc.analytics, msg.UserID)
		m.currentView = ViewMenu

		slog.Info("signed in", "user_id", msg.UserID)

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("Spenderella, signed in as %s\n\n", m.userName) +
				"1. Import Transactions from CSV\n" +
				"2. Browse Transactions\n" +
				"3. Dashboard\n\n" +
				"q. Quit",
		)
	case ViewImport:
		return m.importView.View()
	case ViewList:
		return m.listView.View()
	case ViewDashboard:
		return m.dashboardView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	logFile, err := tea.LogToFile(cfg.TUI.LogFile, "tui")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	level, _ := logger.ParseLevel(cfg.App.LogLevel)
	slog.SetDefault(logger.New(logFile, level))

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			return err
		}
	}

	p := tea.NewProgram(initialModel(newServices(db, cfg)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	return nil
}
