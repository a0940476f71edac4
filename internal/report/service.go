package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smritirangarajan/spenderella/internal/ai"
	"github.com/smritirangarajan/spenderella/internal/analytics"
	"github.com/smritirangarajan/spenderella/internal/mail"
)

// Recipient is a due report setting joined with the account it belongs to.
type Recipient struct {
	Setting *Setting
	Name    string
	Email   string
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=report
type Repository interface {
	GetSetting(ctx context.Context, userID uuid.UUID) (*Setting, error)
	UpdateSetting(ctx context.Context, setting *Setting) error
	ListReports(ctx context.Context, userID uuid.UUID, pageSize, pageNumber int) ([]*Report, int, error)
	ListDue(ctx context.Context, now time.Time) ([]*Recipient, error)
	// RecordDelivery stores the report and advances the user's schedule in one transaction.
	RecordDelivery(ctx context.Context, r *Report, next time.Time, lastSent *time.Time) error
}

type Stats interface {
	Summary(ctx context.Context, userID uuid.UUID, r analytics.Range) (*analytics.Summary, error)
	ExpenseBreakdown(ctx context.Context, userID uuid.UUID, r analytics.Range) (*analytics.Breakdown, error)
}

type Service struct {
	repo   Repository
	stats  Stats
	gen    ai.Generator
	mailer mail.Sender
	now    func() time.Time
}

// NewService wires the report pipeline. gen may be nil, in which case reports carry no insights.
func NewService(repo Repository, stats Stats, gen ai.Generator, mailer mail.Sender) *Service {
	return &Service{repo: repo, stats: stats, gen: gen, mailer: mailer, now: time.Now}
}

type Pagination struct {
	PageSize   int `json:"pageSize"`
	PageNumber int `json:"pageNumber"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

type ListResult struct {
	Reports    []*Report  `json:"reports"`
	Pagination Pagination `json:"pagination"`
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, pageSize, pageNumber int) (*ListResult, error) {
	if pageSize <= 0 {
		pageSize = 20
	}

	if pageNumber <= 0 {
		pageNumber = 1
	}

	reports, total, err := s.repo.ListReports(ctx, userID, pageSize, pageNumber)
	if err != nil {
		return nil, err
	}

	if reports == nil {
		reports = []*Report{}
	}

	return &ListResult{
		Reports: reports,
		Pagination: Pagination{
			PageSize:   pageSize,
			PageNumber: pageNumber,
			TotalCount: total,
			TotalPages: (total + pageSize - 1) / pageSize,
		},
	}, nil
}

func (s *Service) Setting(ctx context.Context, userID uuid.UUID) (*Setting, error) {
	return s.repo.GetSetting(ctx, userID)
}

// UpdateSetting toggles the schedule. Enabling restarts it from the first of next month.
func (s *Service) UpdateSetting(ctx context.Context, userID uuid.UUID, enabled bool) (*Setting, error) {
	setting, err := s.repo.GetSetting(ctx, userID)
	if err != nil {
		return nil, err
	}

	setting.IsEnabled = enabled
	setting.NextReportDate = nil

	if enabled {
		setting.NextReportDate = new(NextReportDate(s.now()))
	}

	if err := s.repo.UpdateSetting(ctx, setting); err != nil {
		return nil, err
	}

	return setting, nil
}

type CategorySpend struct {
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

type Summary struct {
	Income        float64         `json:"income"`
	Expenses      float64         `json:"expenses"`
	Balance       float64         `json:"balance"`
	SavingsRate   float64         `json:"savingsRate"`
	TopCategories []CategorySpend `json:"topCategories"`
}

type Data struct {
	Period   string   `json:"period"`
	Summary  Summary  `json:"summary"`
	Insights []string `json:"insights"`
}

// Generate builds the report for [from, to]. It returns nil when the period has no transactions.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, from, to time.Time) (*Data, error) {
	r, err := analytics.Resolve(analytics.PresetCustom, &from, &to, s.now())
	if err != nil {
		return nil, err
	}

	sum, err := s.stats.Summary(ctx, userID, r)
	if err != nil {
		return nil, fmt.Errorf("summarizing period: %w", err)
	}

	if sum.TransactionCount == 0 {
		return nil, nil
	}

	bd, err := s.stats.ExpenseBreakdown(ctx, userID, r)
	if err != nil {
		return nil, fmt.Errorf("breaking down expenses: %w", err)
	}

	data := &Data{
		Period: PeriodLabel(r.From, r.To),
		Summary: Summary{
			Income:        sum.TotalIncome,
			Expenses:      sum.TotalExpenses,
			Balance:       sum.AvailableBalance,
			SavingsRate:   sum.SavingRate.Percentage,
			TopCategories: make([]CategorySpend, 0, len(bd.Breakdown)),
		},
		Insights: []string{},
	}

	for _, c := range bd.Breakdown {
		data.Summary.TopCategories = append(data.Summary.TopCategories, CategorySpend{Name: c.Name, Amount: c.Value, Percent: c.Percentage})
	}

	data.Insights = s.insights(ctx, data)

	return data, nil
}

func insightsPrompt(d *Data) string {
	summary, _ := json.Marshal(d.Summary)

	return "You are a friendly personal finance coach.\n\n" +
		"Here is a user's spending summary for " + d.Period + " (amounts in currency units):\n" +
		string(summary) + "\n\n" +
		"Write 3 to 5 short, specific insights or tips based only on these numbers.\n" +
		"Return STRICT JSON only: an array of strings. No code fences."
}

// insights asks the model for coaching tips. Any failure yields an empty list.
func (s *Service) insights(ctx context.Context, d *Data) []string {
	if s.gen == nil {
		return []string{}
	}

	out, err := s.gen.GenerateJSON(ctx, insightsPrompt(d))
	if err != nil {
		slog.Warn("failed to generate report insights", "error", err)
		return []string{}
	}

	var tips []string
	if err := json.Unmarshal([]byte(out), &tips); err != nil {
		slog.Warn("failed to decode report insights", "error", err)
		return []string{}
	}

	clean := make([]string, 0, len(tips))

	for _, tip := range tips {
		if tip = strings.TrimSpace(tip); tip != "" {
			clean = append(clean, tip)
		}
	}

	return clean
}

// SendDue emails last month's report to every user whose schedule is due and advances each schedule.
// It returns how many emails were sent.
func (s *Service) SendDue(ctx context.Context) (int, error) {
	now := s.now().UTC()

	due, err := s.repo.ListDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("listing due reports: %w", err)
	}

	sent := 0

	for _, rcpt := range due {
		ok, err := s.deliver(ctx, rcpt, now)
		if err != nil {
			slog.Error("failed to record report delivery", "user_id", rcpt.Setting.UserID, "error", err)
			continue
		}

		if ok {
			sent++
		}
	}

	return sent, nil
}

func (s *Service) deliver(ctx context.Context, rcpt *Recipient, now time.Time) (bool, error) {
	from, to := PreviousMonth(now)
	userID := rcpt.Setting.UserID

	rep := &Report{UserID: userID, Period: PeriodLabel(from, to), SentDate: now, Status: StatusSent}

	var lastSent *time.Time

	data, err := s.Generate(ctx, userID, from, to)

	switch {
	case err != nil:
		slog.Error("failed to generate report", "user_id", userID, "error", err)

		rep.Status = StatusFailed
	case data == nil:
		rep.Status = StatusNoActivity
	default:
		if err := s.mailer.Send(ctx, Email(rcpt.Name, rcpt.Email, data)); err != nil {
			slog.Error("failed to send report email", "user_id", userID, "error", err)

			rep.Status = StatusFailed
		} else {
			lastSent = &now
		}
	}

	if err := s.repo.RecordDelivery(ctx, rep, NextReportDate(now), lastSent); err != nil {
		return false, err
	}

	return rep.Status == StatusSent, nil
}
