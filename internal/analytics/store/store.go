package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smritirangarajan/spenderella/internal/analytics"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const activeInRange = `user_id = $1 AND deleted_at IS NULL AND date >= $2 AND date <= $3`

func (s *Store) Totals(ctx context.Context, userID uuid.UUID, from, to time.Time) (analytics.Totals, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'INCOME'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'EXPENSE'), 0),
			COUNT(*)
		FROM transactions
		WHERE ` + activeInRange

	var t analytics.Totals
	if err := s.db.QueryRowContext(ctx, query, userID, from, to).Scan(&t.Income, &t.Expenses, &t.Count); err != nil {
		return analytics.Totals{}, fmt.Errorf("summing transactions: %w", err)
	}

	return t, nil
}

func (s *Store) Daily(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]analytics.DailyTotal, error) {
	query := `
		SELECT
			date_trunc('day', date AT TIME ZONE 'UTC') AS day,
			COALESCE(SUM(amount) FILTER (WHERE type = 'INCOME'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'EXPENSE'), 0)
		FROM transactions
		WHERE ` + activeInRange + `
		GROUP BY day
		ORDER BY day ASC`

	rows, err := s.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("grouping transactions by day: %w", err)
	}
	defer rows.Close()

	var days []analytics.DailyTotal

	for rows.Next() {
		var d analytics.DailyTotal
		if err := rows.Scan(&d.Date, &d.Income, &d.Expenses); err != nil {
			return nil, fmt.Errorf("scanning daily total: %w", err)
		}

		days = append(days, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily totals: %w", err)
	}

	return days, nil
}

func (s *Store) ExpensesByCategory(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]analytics.CategoryTotal, error) {
	query := `
		SELECT category, SUM(amount) AS total
		FROM transactions
		WHERE ` + activeInRange + ` AND type = 'EXPENSE'
		GROUP BY category
		ORDER BY total DESC, category ASC`

	rows, err := s.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("grouping expenses by category: %w", err)
	}
	defer rows.Close()

	var cats []analytics.CategoryTotal

	for rows.Next() {
		var c analytics.CategoryTotal
		if err := rows.Scan(&c.Category, &c.Amount); err != nil {
			return nil, fmt.Errorf("scanning category total: %w", err)
		}

		cats = append(cats, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category totals: %w", err)
	}

	return cats, nil
}
