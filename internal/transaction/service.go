package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error

	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, int, error)
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error
	DeleteTransactions(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	ListDueRecurring(ctx context.Context, now time.Time) ([]*Transaction, error)

	BeginBatch(ctx context.Context, userID uuid.UUID) (BatchTx, error)
}

// BatchTx is a unit of work that either persists every write or none of them.
type BatchTx interface {
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	AdvanceRecurrence(ctx context.Context, id uuid.UUID, next, processed time.Time) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo       Repository
	batchLimit int
	onChange   []func(userID uuid.UUID)
}

func NewService(repo Repository, batchLimit int) *Service {
	return &Service{repo: repo, batchLimit: batchLimit}
}

// OnChange registers fn to be called after any write that touches userID's transactions.
func (s *Service) OnChange(fn func(userID uuid.UUID)) {
	s.onChange = append(s.onChange, fn)
}

func (s *Service) changed(userID uuid.UUID) {
	for _, fn := range s.onChange {
		fn(userID)
	}
}

type CreateParams struct {
	Title         string
	Type          Type
	Amount        int64
	Category      string
	Date          time.Time
	Description   string
	PaymentMethod *PaymentMethod
	ReceiptURL    string
	IsRecurring   bool
	Frequency     *Frequency
	Status        Status
}

type UpdateParams struct {
	Title         *string
	Type          *Type
	Amount        *int64
	Category      *string
	Date          *time.Time
	Description   *string
	PaymentMethod *PaymentMethod
	ReceiptURL    *string
	IsRecurring   *bool
	Frequency     *Frequency
}

type ListFilter struct {
	UserID     uuid.UUID
	Keyword    string
	Type       *Type
	Recurring  *bool
	StartDate  *time.Time
	EndDate    *time.Time
	PageSize   int
	PageNumber int
}

type Pagination struct {
	PageSize   int `json:"pageSize"`
	PageNumber int `json:"pageNumber"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

type ListResult struct {
	Transactions []*Transaction
	Pagination   Pagination
}

func newTransaction(userID uuid.UUID, p CreateParams) *Transaction {
	tx := &Transaction{
		UserID:        userID,
		Title:         p.Title,
		Type:          p.Type,
		Amount:        p.Amount,
		Category:      p.Category,
		Date:          p.Date,
		Description:   p.Description,
		PaymentMethod: p.PaymentMethod,
		ReceiptURL:    p.ReceiptURL,
		Status:        p.Status,
	}

	if tx.Status == "" {
		tx.Status = StatusCompleted
	}

	if p.IsRecurring && p.Frequency != nil {
		tx.Recurrence = Recurrence{
			IsRecurring:       true,
			Frequency:         p.Frequency,
			NextRecurringDate: new(p.Frequency.Next(p.Date)),
		}
	}

	return tx
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Transaction, error) {
	tx := newTransaction(userID, params)
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.changed(userID)

	return tx, nil
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	if filter.PageNumber <= 0 {
		filter.PageNumber = 1
	}

	txs, total, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Transactions: txs,
		Pagination: Pagination{
			PageSize:   filter.PageSize,
			PageNumber: filter.PageNumber,
			TotalCount: total,
			TotalPages: (total + filter.PageSize - 1) / filter.PageSize,
		},
	}, nil
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(tx, params)

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.changed(userID)

	return tx, nil
}

func applyUpdate(tx *Transaction, p UpdateParams) {
	if p.Title != nil {
		tx.Title = *p.Title
	}

	if p.Type != nil {
		tx.Type = *p.Type
	}

	if p.Amount != nil {
		tx.Amount = *p.Amount
	}

	if p.Category != nil {
		tx.Category = *p.Category
	}

	if p.Date != nil {
		tx.Date = *p.Date
	}

	if p.Description != nil {
		tx.Description = *p.Description
	}

	if p.PaymentMethod != nil {
		tx.PaymentMethod = p.PaymentMethod
	}

	if p.ReceiptURL != nil {
		tx.ReceiptURL = *p.ReceiptURL
	}

	recurring := tx.Recurrence.IsRecurring
	if p.IsRecurring != nil {
		recurring = *p.IsRecurring
	}

	freq := tx.Recurrence.Frequency
	if p.Frequency != nil {
		freq = p.Frequency
	}

	if !recurring || freq == nil {
		tx.Recurrence = Recurrence{}
		return
	}

	if p.IsRecurring != nil || p.Frequency != nil || p.Date != nil || tx.Recurrence.NextRecurringDate == nil {
		tx.Recurrence.NextRecurringDate = new(freq.Next(tx.Date))
	}

	tx.Recurrence.IsRecurring = true
	tx.Recurrence.Frequency = freq
}

// Duplicate stores a non-recurring copy of the transaction.
func (s *Service) Duplicate(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	orig, err := s.repo.GetTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	desc := "Duplicated transaction"
	if orig.Description != "" {
		desc = orig.Description + " (Duplicate)"
	}

	dup := &Transaction{
		UserID:        userID,
		Title:         "Duplicate - " + orig.Title,
		Type:          orig.Type,
		Amount:        orig.Amount,
		Category:      orig.Category,
		ReceiptURL:    orig.ReceiptURL,
		Date:          orig.Date,
		Description:   desc,
		PaymentMethod: orig.PaymentMethod,
		Status:        orig.Status,
	}

	if err := s.repo.CreateTransaction(ctx, dup); err != nil {
		return nil, fmt.Errorf("duplicating transaction: %w", err)
	}

	s.changed(userID)

	return dup, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}

	s.changed(userID)

	return nil
}

// BulkDelete soft-deletes the given transactions and reports how many were removed.
func (s *Service) BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrEmptyBatch
	}

	n, err := s.repo.DeleteTransactions(ctx, userID, ids)
	if err != nil {
		return 0, err
	}

	if n == 0 {
		return 0, ErrNotFound
	}

	s.changed(userID)

	return n, nil
}

// CreateBatch inserts every row in a single database transaction. Either all rows are stored or none are.
func (s *Service) CreateBatch(ctx context.Context, userID uuid.UUID, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, ErrEmptyBatch
	}

	if s.batchLimit > 0 && len(params) > s.batchLimit {
		return nil, fmt.Errorf("%w: %d rows, limit is %d", ErrBatchTooLarge, len(params), s.batchLimit)
	}

	btx, err := s.repo.BeginBatch(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer btx.Rollback()

	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = newTransaction(userID, p)
	}

	if err := btx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := btx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	s.changed(userID)

	return txs, nil
}

// ProcessRecurring materializes every occurrence of recurring transactions due at or before now
// and advances their schedules. It returns the number of occurrences created.
func (s *Service) ProcessRecurring(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.ListDueRecurring(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("listing due recurring: %w", err)
	}

	created := 0

	for _, tx := range due {
		n, err := s.processOne(ctx, tx, now)
		if err != nil {
			slog.Error("failed to process recurring transaction", "id", tx.ID, "error", err)
			continue
		}

		created += n
	}

	return created, nil
}

func (s *Service) processOne(ctx context.Context, tx *Transaction, now time.Time) (int, error) {
	if tx.Recurrence.Frequency == nil || tx.Recurrence.NextRecurringDate == nil {
		return 0, nil
	}

	freq := *tx.Recurrence.Frequency
	next := *tx.Recurrence.NextRecurringDate

	var occurrences []*Transaction

	for !next.After(now) {
		occurrences = append(occurrences, &Transaction{
			UserID:        tx.UserID,
			Title:         tx.Title,
			Type:          tx.Type,
			Amount:        tx.Amount,
			Category:      tx.Category,
			Date:          next,
			Description:   tx.Description,
			PaymentMethod: tx.PaymentMethod,
			Status:        StatusCompleted,
		})
		next = freq.Next(next)
	}

	if len(occurrences) == 0 {
		return 0, nil
	}

	btx, err := s.repo.BeginBatch(ctx, tx.UserID)
	if err != nil {
		return 0, fmt.Errorf("begin batch: %w", err)
	}
	defer btx.Rollback()

	if err := btx.CreateTransactions(ctx, occurrences); err != nil {
		return 0, fmt.Errorf("create occurrences: %w", err)
	}

	if err := btx.AdvanceRecurrence(ctx, tx.ID, next, now); err != nil {
		return 0, fmt.Errorf("advance recurrence: %w", err)
	}

	if err := btx.Commit(); err != nil {
		return 0, fmt.Errorf("commit recurrence: %w", err)
	}

	s.changed(tx.UserID)

	return len(occurrences), nil
}
