package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smritirangarajan/spenderella/internal/report"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectSettingColumns = `s.id, s.user_id, s.frequency, s.is_enabled, s.next_report_date, s.last_sent_date, s.created_at, s.updated_at`

func scanSetting(sc scanner, extra ...any) (*report.Setting, error) {
	var (
		s    report.Setting
		freq string
	)

	dest := append([]any{&s.ID, &s.UserID, &freq, &s.IsEnabled, &s.NextReportDate, &s.LastSentDate, &s.CreatedAt, &s.UpdatedAt}, extra...)
	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}

	s.Frequency = report.Frequency(freq)

	return &s, nil
}

func (s *Store) GetSetting(ctx context.Context, userID uuid.UUID) (*report.Setting, error) {
	query := `SELECT ` + selectSettingColumns + ` FROM report_settings s WHERE s.user_id = $1`

	setting, err := scanSetting(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, report.ErrSettingNotFound
		}

		return nil, fmt.Errorf("getting report setting: %w", err)
	}

	return setting, nil
}

func (s *Store) UpdateSetting(ctx context.Context, setting *report.Setting) error {
	query := `
		UPDATE report_settings
		SET frequency = $1, is_enabled = $2, next_report_date = $3, updated_at = NOW()
		WHERE user_id = $4
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, setting.Frequency, setting.IsEnabled, setting.NextReportDate, setting.UserID).
		Scan(&setting.ID, &setting.CreatedAt, &setting.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return report.ErrSettingNotFound
		}

		return fmt.Errorf("updating report setting: %w", err)
	}

	return nil
}

func (s *Store) ListReports(ctx context.Context, userID uuid.UUID, pageSize, pageNumber int) ([]*report.Report, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting reports: %w", err)
	}

	query := `
		SELECT id, user_id, period, sent_date, status, created_at, updated_at
		FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, pageSize, (pageNumber-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []*report.Report

	for rows.Next() {
		var (
			r      report.Report
			status string
		)

		if err := rows.Scan(&r.ID, &r.UserID, &r.Period, &r.SentDate, &status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning report: %w", err)
		}

		r.Status = report.Status(status)
		reports = append(reports, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating reports: %w", err)
	}

	return reports, total, nil
}

func (s *Store) ListDue(ctx context.Context, now time.Time) ([]*report.Recipient, error) {
	query := `SELECT ` + selectSettingColumns + `, u.name, u.email
		FROM report_settings s
		JOIN users u ON u.id = s.user_id
		WHERE s.is_enabled AND s.next_report_date IS NOT NULL AND s.next_report_date <= $1
		ORDER BY s.next_report_date ASC`

	rows, err := s.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("listing due reports: %w", err)
	}
	defer rows.Close()

	var due []*report.Recipient

	for rows.Next() {
		var r report.Recipient

		setting, err := scanSetting(rows, &r.Name, &r.Email)
		if err != nil {
			return nil, fmt.Errorf("scanning due report: %w", err)
		}

		r.Setting = setting
		due = append(due, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating due reports: %w", err)
	}

	return due, nil
}

func (s *Store) RecordDelivery(ctx context.Context, r *report.Report, next time.Time, lastSent *time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delivery: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO reports (user_id, period, sent_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, r.UserID, r.Period, r.SentDate, r.Status).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE report_settings
		SET next_report_date = $1, last_sent_date = COALESCE($2, last_sent_date), updated_at = NOW()
		WHERE user_id = $3
	`, next, lastSent, r.UserID)
	if err != nil {
		return fmt.Errorf("advancing report setting: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delivery: %w", err)
	}

	return nil
}
