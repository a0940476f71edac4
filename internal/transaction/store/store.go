package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/smritirangarajan/spenderella/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanTransaction reads a transaction row from the scanner and returns a populated Transaction.
// Expected column order matches selectTransactionColumns.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var typeStr, statusStr string

	var category, receiptURL, description sql.NullString

	var payment, frequency sql.NullString

	if err := s.Scan(
		&tx.ID, &tx.UserID, &tx.Title, &typeStr, &tx.Amount, &category, &receiptURL,
		&tx.Recurrence.IsRecurring, &frequency, &tx.Recurrence.NextRecurringDate, &tx.Recurrence.LastProcessed,
		&tx.Date, &description, &payment, &statusStr,
		&tx.CreatedAt, &tx.UpdatedAt, &tx.DeletedAt,
	); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)
	tx.Status = transaction.Status(statusStr)
	tx.Category = category.String
	tx.ReceiptURL = receiptURL.String
	tx.Description = description.String

	if payment.Valid {
		tx.PaymentMethod = new(transaction.PaymentMethod(payment.String))
	}

	if frequency.Valid {
		tx.Recurrence.Frequency = new(transaction.Frequency(frequency.String))
	}

	return &tx, nil
}

const selectTransactionColumns = `
	t.id, t.user_id, t.title, t.type, t.amount, t.category, t.receipt_url,
	t.is_recurring, t.recurring_interval, t.next_recurring_date, t.last_processed,
	t.date, t.description, t.payment_method, t.status,
	t.created_at, t.updated_at, t.deleted_at
`

const insertTransaction = `
	INSERT INTO transactions (
		user_id, title, type, amount, category, receipt_url,
		is_recurring, recurring_interval, next_recurring_date, last_processed,
		date, description, payment_method, status, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	RETURNING id, created_at, updated_at
`

func nullString[T ~string](v *T) any {
	if v == nil {
		return nil
	}

	return string(*v)
}

func insert(ctx context.Context, q querier, tx *transaction.Transaction) error {
	return q.QueryRowContext(ctx, insertTransaction,
		tx.UserID,
		tx.Title,
		tx.Type,
		tx.Amount,
		tx.Category,
		tx.ReceiptURL,
		tx.Recurrence.IsRecurring,
		nullString(tx.Recurrence.Frequency),
		tx.Recurrence.NextRecurringDate,
		tx.Recurrence.LastProcessed,
		tx.Date,
		tx.Description,
		nullString(tx.PaymentMethod),
		tx.Status,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
}

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	if err := insert(ctx, s.db, tx); err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.id = $1 AND t.user_id = $2 AND t.deleted_at IS NULL`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, int, error) {
	where := ` WHERE t.user_id = $1 AND t.deleted_at IS NULL`
	args := []any{filter.UserID}
	argIdx := 2

	if filter.Keyword != "" {
		where += fmt.Sprintf(" AND (t.title ILIKE $%d OR t.category ILIKE $%d)", argIdx, argIdx)

		args = append(args, "%"+filter.Keyword+"%")
		argIdx++
	}

	if filter.Type != nil {
		where += fmt.Sprintf(" AND t.type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.Recurring != nil {
		where += fmt.Sprintf(" AND t.is_recurring = $%d", argIdx)

		args = append(args, *filter.Recurring)
		argIdx++
	}

	if filter.StartDate != nil {
		where += fmt.Sprintf(" AND t.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		where += fmt.Sprintf(" AND t.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions t`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting transactions: %w", err)
	}

	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t` + where +
		fmt.Sprintf(" ORDER BY t.date DESC, t.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)

	args = append(args, filter.PageSize, (filter.PageNumber-1)*filter.PageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, total, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET title = $1, type = $2, amount = $3, category = $4, receipt_url = $5,
			is_recurring = $6, recurring_interval = $7, next_recurring_date = $8,
			date = $9, description = $10, payment_method = $11, updated_at = NOW()
		WHERE id = $12 AND user_id = $13 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query,
		tx.Title,
		tx.Type,
		tx.Amount,
		tx.Category,
		tx.ReceiptURL,
		tx.Recurrence.IsRecurring,
		nullString(tx.Recurrence.Frequency),
		tx.Recurrence.NextRecurringDate,
		tx.Date,
		tx.Description,
		nullString(tx.PaymentMethod),
		tx.ID,
		tx.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	query := `
		UPDATE transactions
		SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteTransactions(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)

	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := `
		UPDATE transactions
		SET deleted_at = NOW()
		WHERE user_id = $1 AND deleted_at IS NULL AND id IN (` + strings.Join(placeholders, ", ") + `)`

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting transactions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted transactions: %w", err)
	}

	return n, nil
}

func (s *Store) ListDueRecurring(ctx context.Context, now time.Time) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.is_recurring AND t.deleted_at IS NULL
			AND t.next_recurring_date IS NOT NULL AND t.next_recurring_date <= $1
		ORDER BY t.next_recurring_date ASC`

	rows, err := s.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("listing due recurring: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating due recurring: %w", err)
	}

	return txs, nil
}

// batchLockKey serializes batch writes per user.
func batchLockKey(userID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write([]byte("transactions-batch"))
	h.Write([]byte{0})
	h.Write(userID[:])

	return int64(h.Sum64())
}

type batchTx struct {
	tx *sql.Tx
}

func (s *Store) BeginBatch(ctx context.Context, userID uuid.UUID) (transaction.BatchTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning batch tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", batchLockKey(userID)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring batch lock: %w", err)
	}

	return &batchTx{tx: dbTx}, nil
}

func (b *batchTx) Commit() error   { return b.tx.Commit() }
func (b *batchTx) Rollback() error { return b.tx.Rollback() }

func (b *batchTx) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	for i, tx := range txs {
		if err := insert(ctx, b.tx, tx); err != nil {
			return fmt.Errorf("creating transaction %d: %w", i+1, err)
		}
	}

	return nil
}

func (b *batchTx) AdvanceRecurrence(ctx context.Context, id uuid.UUID, next, processed time.Time) error {
	query := `
		UPDATE transactions
		SET next_recurring_date = $1, last_processed = $2, updated_at = NOW()
		WHERE id = $3
	`

	if _, err := b.tx.ExecContext(ctx, query, next, processed, id); err != nil {
		return fmt.Errorf("advancing recurrence: %w", err)
	}

	return nil
}
