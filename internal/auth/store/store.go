package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/smritirangarajan/spenderella/internal/auth"
	"github.com/smritirangarajan/spenderella/internal/report"
	reportStore "github.com/smritirangarajan/spenderella/internal/report/store"
	"github.com/smritirangarajan/spenderella/internal/user"
	userStore "github.com/smritirangarajan/spenderella/internal/user/store"
)

const uniqueViolation = "23505"

type Store struct {
	db      *sql.DB
	users   *userStore.Store
	reports *reportStore.Store
}

func New(db *sql.DB) *Store {
	return &Store{db: db, users: userStore.New(db), reports: reportStore.New(db)}
}

func (s *Store) CreateUser(ctx context.Context, u *user.User, setting *report.Setting) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin register: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.PasswordHash).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.ErrEmailTaken
		}

		return fmt.Errorf("creating user: %w", err)
	}

	setting.UserID = u.ID

	err = tx.QueryRowContext(ctx, `
		INSERT INTO report_settings (user_id, frequency, is_enabled, next_report_date, last_sent_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, setting.UserID, setting.Frequency, setting.IsEnabled, setting.NextReportDate, setting.LastSentDate).
		Scan(&setting.ID, &setting.CreatedAt, &setting.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating report setting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit register: %w", err)
	}

	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.users.GetUserByEmail(ctx, email)
}

func (s *Store) GetReportSetting(ctx context.Context, userID uuid.UUID) (*report.Setting, error) {
	return s.reports.GetSetting(ctx, userID)
}
