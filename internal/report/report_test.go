package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/smritirangarajan/spenderella/internal/ai"
	"github.com/smritirangarajan/spenderella/internal/analytics"
	"github.com/smritirangarajan/spenderella/internal/mail"
)

var fixedNow = time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

func TestNextReportDate(t *testing.T) {
	type testCase struct {
		now  time.Time
		want time.Time
	}

	tests := []testCase{
		{now: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), want: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
		{now: time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), want: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{now: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), want: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.now.Format(time.DateOnly), func(t *testing.T) {
			assert.Equal(t, tt.want, NextReportDate(tt.now))
		})
	}
}

func TestPreviousMonth(t *testing.T) {
	from, to := PreviousMonth(time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), to)

	from, _ = PreviousMonth(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), from)
}

func TestPeriodLabel(t *testing.T) {
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 0, 0, 0, 0, time.UTC) }

	assert.Equal(t, "February 1 - 29, 2024", PeriodLabel(d(2024, 2, 1), d(2024, 2, 29)))
	assert.Equal(t, "January 15 - February 14, 2024", PeriodLabel(d(2024, 1, 15), d(2024, 2, 14)))
	assert.Equal(t, "Dec 15, 2023 - Jan 14, 2024", PeriodLabel(d(2023, 12, 15), d(2024, 1, 14)))
}

func newTestService(t *testing.T) (*Service, *MockRepository, *MockStats, *ai.MockGenerator, *mail.MockSender) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	stats := NewMockStats(ctrl)
	gen := ai.NewMockGenerator(ctrl)
	mailer := mail.NewMockSender(ctrl)

	svc := NewService(repo, stats, gen, mailer)
	svc.now = func() time.Time { return fixedNow }

	return svc, repo, stats, gen, mailer
}

func TestService_UpdateSetting(t *testing.T) {
	type testCase struct {
		name     string
		enabled  bool
		wantNext *time.Time
	}

	tests := []testCase{
		{name: "Enable", enabled: true, wantNext: new(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))},
		{name: "Disable", enabled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, _, _ := newTestService(t)
			userID := uuid.New()

			repo.EXPECT().GetSetting(gomock.Any(), userID).Return(DefaultSetting(userID, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)), nil)
			repo.EXPECT().UpdateSetting(gomock.Any(), gomock.Any()).Return(nil)

			got, err := svc.UpdateSetting(context.Background(), userID, tt.enabled)
			require.NoError(t, err)
			assert.Equal(t, tt.enabled, got.IsEnabled)
			assert.Equal(t, tt.wantNext, got.NextReportDate)
		})
	}
}

func TestService_List(t *testing.T) {
	svc, repo, _, _, _ := newTestService(t)
	userID := uuid.New()

	repo.EXPECT().ListReports(gomock.Any(), userID, 20, 1).Return(nil, 41, nil)

	got, err := svc.List(context.Background(), userID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, got.Reports)
	assert.NotNil(t, got.Reports)
	assert.Equal(t, Pagination{PageSize: 20, PageNumber: 1, TotalCount: 41, TotalPages: 3}, got.Pagination)
}

func activeSummary() *analytics.Summary {
	return &analytics.Summary{
		TotalIncome:      5000,
		TotalExpenses:    1250,
		AvailableBalance: 3750,
		TransactionCount: 8,
		SavingRate:       analytics.SavingRate{Percentage: 75, ExpenseRatio: 25},
	}
}

func activeBreakdown() *analytics.Breakdown {
	return &analytics.Breakdown{
		TotalSpent: 1250,
		Breakdown:  []analytics.CategoryShare{{Name: "Rent", Value: 1000, Percentage: 80}, {Name: "Food", Value: 250, Percentage: 20}},
	}
}

func TestService_Generate(t *testing.T) {
	type testCase struct {
		name         string
		insightsOut  string
		insightsErr  error
		wantInsights []string
	}

	tests := []testCase{
		{name: "WithInsights", insightsOut: `[" Great saving rate. ", "", "Rent dominates spending."]`, wantInsights: []string{"Great saving rate.", "Rent dominates spending."}},
		{name: "ModelFails", insightsErr: errors.New("unavailable"), wantInsights: []string{}},
		{name: "ModelReturnsObject", insightsOut: `{"tips":[]}`, wantInsights: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, stats, gen, _ := newTestService(t)
			userID := uuid.New()
			from, to := PreviousMonth(fixedNow)

			stats.EXPECT().Summary(gomock.Any(), userID, gomock.Any()).Return(activeSummary(), nil)
			stats.EXPECT().ExpenseBreakdown(gomock.Any(), userID, gomock.Any()).Return(activeBreakdown(), nil)
			gen.EXPECT().GenerateJSON(gomock.Any(), gomock.Any()).Return(tt.insightsOut, tt.insightsErr)

			got, err := svc.Generate(context.Background(), userID, from, to)
			require.NoError(t, err)
			require.NotNil(t, got)

			assert.Equal(t, "February 1 - 29, 2024", got.Period)
			assert.Equal(t, Summary{
				Income:      5000,
				Expenses:    1250,
				Balance:     3750,
				SavingsRate: 75,
				TopCategories: []CategorySpend{
					{Name: "Rent", Amount: 1000, Percent: 80},
					{Name: "Food", Amount: 250, Percent: 20},
				},
			}, got.Summary)
			assert.Equal(t, tt.wantInsights, got.Insights)
		})
	}
}

func TestService_GenerateNoActivity(t *testing.T) {
	svc, _, stats, _, _ := newTestService(t)
	from, to := PreviousMonth(fixedNow)

	stats.EXPECT().Summary(gomock.Any(), gomock.Any(), gomock.Any()).Return(&analytics.Summary{}, nil)

	got, err := svc.Generate(context.Background(), uuid.New(), from, to)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestService_SendDue(t *testing.T) {
	svc, repo, stats, gen, mailer := newTestService(t)

	active := &Recipient{Setting: DefaultSetting(uuid.New(), fixedNow), Name: "Ann", Email: "ann@example.com"}
	quiet := &Recipient{Setting: DefaultSetting(uuid.New(), fixedNow), Name: "Bob", Email: "bob@example.com"}
	bounced := &Recipient{Setting: DefaultSetting(uuid.New(), fixedNow), Name: "Cy", Email: "cy@example.com"}

	repo.EXPECT().ListDue(gomock.Any(), fixedNow).Return([]*Recipient{active, quiet, bounced}, nil)

	stats.EXPECT().Summary(gomock.Any(), active.Setting.UserID, gomock.Any()).Return(activeSummary(), nil)
	stats.EXPECT().Summary(gomock.Any(), quiet.Setting.UserID, gomock.Any()).Return(&analytics.Summary{}, nil)
	stats.EXPECT().Summary(gomock.Any(), bounced.Setting.UserID, gomock.Any()).Return(activeSummary(), nil)
	stats.EXPECT().ExpenseBreakdown(gomock.Any(), gomock.Any(), gomock.Any()).Return(activeBreakdown(), nil).Times(2)
	gen.EXPECT().GenerateJSON(gomock.Any(), gomock.Any()).Return(`["Tip"]`, nil).Times(2)

	mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg mail.Message) error {
		if msg.To == "cy@example.com" {
			return errors.New("mailbox full")
		}

		assert.Equal(t, "Your financial report for February 1 - 29, 2024", msg.Subject)
		assert.Contains(t, msg.Text, "Hi Ann")
		assert.Contains(t, msg.HTML, "Rent")

		return nil
	}).Times(2)

	statuses := map[uuid.UUID]Status{}
	lastSent := map[uuid.UUID]*time.Time{}

	repo.EXPECT().RecordDelivery(gomock.Any(), gomock.Any(), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *Report, _ time.Time, sent *time.Time) error {
			statuses[r.UserID] = r.Status
			lastSent[r.UserID] = sent

			assert.Equal(t, "February 1 - 29, 2024", r.Period)

			return nil
		}).Times(3)

	n, err := svc.SendDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, StatusSent, statuses[active.Setting.UserID])
	assert.Equal(t, StatusNoActivity, statuses[quiet.Setting.UserID])
	assert.Equal(t, StatusFailed, statuses[bounced.Setting.UserID])

	require.NotNil(t, lastSent[active.Setting.UserID])
	assert.Equal(t, fixedNow, *lastSent[active.Setting.UserID])
	assert.Nil(t, lastSent[quiet.Setting.UserID])
	assert.Nil(t, lastSent[bounced.Setting.UserID])
}

func TestTextBody(t *testing.T) {
	body := TextBody("Ann", &Data{
		Period:   "February 1 - 29, 2024",
		Summary:  Summary{Income: 10, Expenses: 12.5, Balance: -2.5, TopCategories: []CategorySpend{{Name: "Food", Amount: 12.5, Percent: 100}}},
		Insights: []string{"Spend less on food."},
	})

	assert.Contains(t, body, "* Balance  | -$2.50\n")
	assert.Contains(t, body, "* Food | $12.50 | 100%\n")
	assert.Contains(t, body, "* Spend less on food.\n")
}
