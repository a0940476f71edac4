package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func monthRange() Range {
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return Range{Preset: PresetLastMonth, From: from, To: from.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

func TestService_Summary(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	userID := uuid.New()
	r := monthRange()
	prev := r.Previous()

	repo.EXPECT().Totals(gomock.Any(), userID, r.From, r.To).Return(Totals{Income: 500000, Expenses: 125000, Count: 12}, nil)
	repo.EXPECT().Totals(gomock.Any(), userID, prev.From, prev.To).Return(Totals{Income: 400000, Expenses: 250000, Count: 9}, nil)

	got, err := NewService(repo, time.Minute).Summary(context.Background(), userID, r)
	require.NoError(t, err)

	assert.Equal(t, 3750.0, got.AvailableBalance)
	assert.Equal(t, 5000.0, got.TotalIncome)
	assert.Equal(t, 1250.0, got.TotalExpenses)
	assert.Equal(t, 12, got.TransactionCount)
	assert.Equal(t, SavingRate{Percentage: 75, ExpenseRatio: 25}, got.SavingRate)
	assert.Equal(t, PercentageChange{Income: 25, Expenses: -50, Balance: 100}, got.PercentageChange)
	require.NotNil(t, got.PreviousPeriod)
}

func TestService_SummaryAllTimeSkipsComparison(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)

	r, err := Resolve(PresetAllTime, nil, nil, time.Now())
	require.NoError(t, err)

	repo.EXPECT().Totals(gomock.Any(), gomock.Any(), r.From, r.To).Return(Totals{}, nil)

	got, err := NewService(repo, time.Minute).Summary(context.Background(), uuid.New(), r)
	require.NoError(t, err)
	assert.Nil(t, got.PreviousPeriod)
	assert.Equal(t, PercentageChange{}, got.PercentageChange)
	assert.Equal(t, SavingRate{}, got.SavingRate)
}

func TestService_CacheAndInvalidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	userID := uuid.New()
	other := uuid.New()
	r := monthRange()

	repo.EXPECT().Daily(gomock.Any(), userID, r.From, r.To).Return(nil, nil).Times(2)
	repo.EXPECT().Daily(gomock.Any(), other, r.From, r.To).Return(nil, nil).Times(1)

	svc := NewService(repo, time.Minute)
	ctx := context.Background()

	_, err := svc.Chart(ctx, userID, r)
	require.NoError(t, err)
	_, err = svc.Chart(ctx, userID, r)
	require.NoError(t, err)
	_, err = svc.Chart(ctx, other, r)
	require.NoError(t, err)

	svc.Invalidate(userID)

	_, err = svc.Chart(ctx, userID, r)
	require.NoError(t, err)
	_, err = svc.Chart(ctx, other, r)
	require.NoError(t, err)
}

func TestService_Chart(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	r := monthRange()

	repo.EXPECT().Daily(gomock.Any(), gomock.Any(), r.From, r.To).Return([]DailyTotal{
		{Date: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), Income: 10000},
		{Date: time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), Income: 250, Expenses: 1999},
	}, nil)

	got, err := NewService(repo, time.Minute).Chart(context.Background(), uuid.New(), r)
	require.NoError(t, err)
	assert.Equal(t, []ChartPoint{
		{Date: "2024-02-03", Income: 100},
		{Date: "2024-02-05", Income: 2.5, Expenses: 19.99},
	}, got.Data)
	assert.Equal(t, 2, got.TotalIncomeCount)
	assert.Equal(t, 1, got.TotalExpensesCount)
}

func TestBreakdown(t *testing.T) {
	type testCase struct {
		name string
		cats []CategoryTotal
		want []CategoryShare
	}

	tests := []testCase{
		{
			name: "Empty",
			want: []CategoryShare{},
		},
		{
			name: "TopThreePlusOthers",
			cats: []CategoryTotal{
				{Category: "Rent", Amount: 50000},
				{Category: "Food", Amount: 20000},
				{Category: "Travel", Amount: 15000},
				{Category: "Gym", Amount: 10000},
				{Category: "Books", Amount: 5000},
			},
			want: []CategoryShare{
				{Name: "Rent", Value: 500, Percentage: 50},
				{Name: "Food", Value: 200, Percentage: 20},
				{Name: "Travel", Value: 150, Percentage: 15},
				{Name: "others", Value: 150, Percentage: 15},
			},
		},
		{
			name: "FewerThanThree",
			cats: []CategoryTotal{
				{Category: "Rent", Amount: 2000},
				{Category: "Food", Amount: 1000},
			},
			want: []CategoryShare{
				{Name: "Rent", Value: 20, Percentage: 66.67},
				{Name: "Food", Value: 10, Percentage: 33.33},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := breakdown(tt.cats, monthRange())
			assert.Equal(t, tt.want, got.Breakdown)
		})
	}
}

func TestChange(t *testing.T) {
	assert.Equal(t, 0.0, change(0, 0))
	assert.Equal(t, 100.0, change(5, 0))
	assert.Equal(t, -100.0, change(-5, 0))
	assert.Equal(t, 100.0, change(1000, 10))
	assert.Equal(t, -100.0, change(-1000, 10))
	assert.Equal(t, 50.0, change(150, 100))
}
