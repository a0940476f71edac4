package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smritirangarajan/spenderella/internal/http/render"
	"github.com/smritirangarajan/spenderella/internal/importer"
	"github.com/smritirangarajan/spenderella/internal/receipt"
	"github.com/smritirangarajan/spenderella/internal/transaction"
)

// units converts stored cents to the currency amount clients send and receive.
func units(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}

// cents converts a client amount to stored cents. It reports a field error when the
// rounded value is not a positive int64.
func cents(field string, amount float64) (int64, *render.FieldError) {
	c, ok := importer.ToCents(decimal.NewFromFloat(amount))
	if !ok {
		return 0, &render.FieldError{Field: field, Message: "Amount is too large"}
	}

	if c <= 0 {
		return 0, &render.FieldError{Field: field, Message: "Must be greater than 0"}
	}

	return c, nil
}

type transactionResponse struct {
	ID                uuid.UUID                  `json:"id"`
	UserID            uuid.UUID                  `json:"userId"`
	Title             string                     `json:"title"`
	Type              transaction.Type           `json:"type"`
	Amount            float64                    `json:"amount"`
	Category          string                     `json:"category"`
	ReceiptURL        string                     `json:"receiptUrl"`
	IsRecurring       bool                       `json:"isRecurring"`
	RecurringInterval *transaction.Frequency     `json:"recurringInterval"`
	NextRecurringDate *time.Time                 `json:"nextRecurringDate"`
	LastProcessed     *time.Time                 `json:"lastProcessed"`
	Date              time.Time                  `json:"date"`
	Description       string                     `json:"description"`
	PaymentMethod     *transaction.PaymentMethod `json:"paymentMethod"`
	Status            transaction.Status         `json:"status"`
	CreatedAt         time.Time                  `json:"createdAt"`
	UpdatedAt         *time.Time                 `json:"updatedAt"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:                tx.ID,
		UserID:            tx.UserID,
		Title:             tx.Title,
		Type:              tx.Type,
		Amount:            units(tx.Amount),
		Category:          tx.Category,
		ReceiptURL:        tx.ReceiptURL,
		IsRecurring:       tx.Recurrence.IsRecurring,
		RecurringInterval: tx.Recurrence.Frequency,
		NextRecurringDate: tx.Recurrence.NextRecurringDate,
		LastProcessed:     tx.Recurrence.LastProcessed,
		Date:              tx.Date,
		Description:       tx.Description,
		PaymentMethod:     tx.PaymentMethod,
		Status:            tx.Status,
		CreatedAt:         tx.CreatedAt,
		UpdatedAt:         tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

type receiptResponse struct {
	Title         string                     `json:"title"`
	Amount        float64                    `json:"amount"`
	Date          string                     `json:"date"`
	Description   string                     `json:"description"`
	Category      string                     `json:"category"`
	Type          transaction.Type           `json:"type"`
	PaymentMethod *transaction.PaymentMethod `json:"paymentMethod"`
	ReceiptURL    string                     `json:"receiptUrl"`
}

func toReceiptResponse(res *receipt.Result) receiptResponse {
	return receiptResponse{
		Title:         res.Title,
		Amount:        units(res.Amount),
		Date:          res.Date.Format(time.DateOnly),
		Description:   res.Description,
		Category:      res.Category,
		Type:          res.Type,
		PaymentMethod: res.PaymentMethod,
		ReceiptURL:    res.ReceiptURL,
	}
}
