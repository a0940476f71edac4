package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindCategory(ctx context.Context, userID uuid.UUID, title string) (string, error) {
	query := `
		SELECT category
		FROM category_rules
		WHERE user_id = $1 AND $2 ILIKE '%' || pattern || '%'
		ORDER BY LENGTH(pattern) DESC, created_at DESC
		LIMIT 1
	`

	var category string

	err := s.db.QueryRowContext(ctx, query, userID, title).Scan(&category)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding category: %w", err)
	}

	return category, nil
}

func (s *Store) SaveRule(ctx context.Context, userID uuid.UUID, pattern, category string) error {
	query := `
		INSERT INTO category_rules (user_id, pattern, category, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, pattern) DO UPDATE SET category = EXCLUDED.category, created_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query, userID, pattern, category)
	if err != nil {
		return fmt.Errorf("saving category rule: %w", err)
	}

	return nil
}
