package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

type Totals struct {
	Income   int64
	Expenses int64
	Count    int
}

type DailyTotal struct {
	Date     time.Time
	Income   int64
	Expenses int64
}

type CategoryTotal struct {
	Category string
	Amount   int64
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=analytics
type Repository interface {
	Totals(ctx context.Context, userID uuid.UUID, from, to time.Time) (Totals, error)
	Daily(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]DailyTotal, error)
	// ExpensesByCategory returns totals ordered by amount, largest first.
	ExpensesByCategory(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]CategoryTotal, error)
}

type Service struct {
	repo  Repository
	cache *cache.Cache
}

func NewService(repo Repository, ttl time.Duration) *Service {
	return &Service{repo: repo, cache: cache.New(ttl, 2*ttl)}
}

type SavingRate struct {
	Percentage   float64 `json:"percentage"`
	ExpenseRatio float64 `json:"expenseRatio"`
}

type PercentageChange struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

type Summary struct {
	AvailableBalance float64          `json:"availableBalance"`
	TotalIncome      float64          `json:"totalIncome"`
	TotalExpenses    float64          `json:"totalExpenses"`
	TransactionCount int              `json:"transactionCount"`
	SavingRate       SavingRate       `json:"savingRate"`
	PercentageChange PercentageChange `json:"percentageChange"`
	PreviousPeriod   *Range           `json:"previousPeriod,omitempty"`
	Range            Range            `json:"range"`
}

type ChartPoint struct {
	Date     string  `json:"date"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

type Chart struct {
	Data               []ChartPoint `json:"chartData"`
	TotalIncomeCount   int          `json:"totalIncomeCount"`
	TotalExpensesCount int          `json:"totalExpenseCount"`
	Range              Range        `json:"range"`
}

type CategoryShare struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

type Breakdown struct {
	TotalSpent float64         `json:"totalSpent"`
	Breakdown  []CategoryShare `json:"breakdown"`
	Range      Range           `json:"range"`
}

const topCategories = 3

// Units converts cents to currency units.
func Units(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}

func round(d decimal.Decimal, places int32) float64 {
	return d.Round(places).InexactFloat64()
}

// ratio returns part/whole*100 rounded to two places, or zero when whole is zero.
func ratio(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}

	return round(decimal.NewFromInt(part).Div(decimal.NewFromInt(whole)).Mul(decimal.NewFromInt(100)), 2)
}

// change is the percentage move from prev to cur, capped at ±100.
func change(cur, prev int64) float64 {
	if prev == 0 {
		switch {
		case cur > 0:
			return 100
		case cur < 0:
			return -100
		default:
			return 0
		}
	}

	pct := decimal.NewFromInt(cur - prev).Div(decimal.NewFromInt(prev).Abs()).Mul(decimal.NewFromInt(100))
	pct = decimal.Min(decimal.Max(pct, decimal.NewFromInt(-100)), decimal.NewFromInt(100))

	return round(pct, 2)
}

func cacheKey(userID uuid.UUID, kind string, r Range) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", userID, kind, r.Preset, r.From.Format(time.DateOnly), r.To.Format(time.DateOnly))
}

// Invalidate drops every cached result for userID.
func (s *Service) Invalidate(userID uuid.UUID) {
	prefix := userID.String() + "|"
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Delete(key)
		}
	}
}

func cached[T any](s *Service, key string, load func() (T, error)) (T, error) {
	if v, ok := s.cache.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	s.cache.SetDefault(key, v)

	return v, nil
}

func (s *Service) Summary(ctx context.Context, userID uuid.UUID, r Range) (*Summary, error) {
	return cached(s, cacheKey(userID, "summary", r), func() (*Summary, error) {
		cur, err := s.repo.Totals(ctx, userID, r.From, r.To)
		if err != nil {
			return nil, fmt.Errorf("loading totals: %w", err)
		}

		balance := cur.Income - cur.Expenses

		sum := &Summary{
			AvailableBalance: Units(balance),
			TotalIncome:      Units(cur.Income),
			TotalExpenses:    Units(cur.Expenses),
			TransactionCount: cur.Count,
			SavingRate: SavingRate{
				Percentage:   ratio(balance, cur.Income),
				ExpenseRatio: ratio(cur.Expenses, cur.Income),
			},
			Range: r,
		}

		if r.AllTime() {
			return sum, nil
		}

		prevRange := r.Previous()

		prev, err := s.repo.Totals(ctx, userID, prevRange.From, prevRange.To)
		if err != nil {
			return nil, fmt.Errorf("loading previous totals: %w", err)
		}

		sum.PreviousPeriod = &prevRange
		sum.PercentageChange = PercentageChange{
			Income:   change(cur.Income, prev.Income),
			Expenses: change(cur.Expenses, prev.Expenses),
			Balance:  change(balance, prev.Income-prev.Expenses),
		}

		return sum, nil
	})
}

func (s *Service) Chart(ctx context.Context, userID uuid.UUID, r Range) (*Chart, error) {
	return cached(s, cacheKey(userID, "chart", r), func() (*Chart, error) {
		days, err := s.repo.Daily(ctx, userID, r.From, r.To)
		if err != nil {
			return nil, fmt.Errorf("loading daily totals: %w", err)
		}

		chart := &Chart{Data: make([]ChartPoint, 0, len(days)), Range: r}

		for _, d := range days {
			chart.Data = append(chart.Data, ChartPoint{
				Date:     d.Date.Format(time.DateOnly),
				Income:   Units(d.Income),
				Expenses: Units(d.Expenses),
			})

			if d.Income > 0 {
				chart.TotalIncomeCount++
			}

			if d.Expenses > 0 {
				chart.TotalExpensesCount++
			}
		}

		return chart, nil
	})
}

func (s *Service) ExpenseBreakdown(ctx context.Context, userID uuid.UUID, r Range) (*Breakdown, error) {
	return cached(s, cacheKey(userID, "breakdown", r), func() (*Breakdown, error) {
		cats, err := s.repo.ExpensesByCategory(ctx, userID, r.From, r.To)
		if err != nil {
			return nil, fmt.Errorf("loading category totals: %w", err)
		}

		return breakdown(cats, r), nil
	})
}

// breakdown keeps the largest categories and folds the rest into "others".
func breakdown(cats []CategoryTotal, r Range) *Breakdown {
	var total int64
	for _, c := range cats {
		total += c.Amount
	}

	out := &Breakdown{TotalSpent: Units(total), Breakdown: []CategoryShare{}, Range: r}

	var others int64

	for i, c := range cats {
		if i >= topCategories {
			others += c.Amount
			continue
		}

		out.Breakdown = append(out.Breakdown, CategoryShare{
			Name:       c.Category,
			Value:      Units(c.Amount),
			Percentage: ratio(c.Amount, total),
		})
	}

	if others > 0 {
		out.Breakdown = append(out.Breakdown, CategoryShare{
			Name:       "others",
			Value:      Units(others),
			Percentage: ratio(others, total),
		})
	}

	return out
}
