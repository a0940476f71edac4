package transaction

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("transaction not found")
	ErrBatchTooLarge = errors.New("batch exceeds import limit")
	ErrEmptyBatch    = errors.New("batch is empty")
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "INCOME"
	TypeExpense Type = "EXPENSE"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// PaymentMethod is the closed set of ways a transaction can be settled.
type PaymentMethod string

const (
	PaymentCard          PaymentMethod = "CARD"
	PaymentBankTransfer  PaymentMethod = "BANK_TRANSFER"
	PaymentMobilePayment PaymentMethod = "MOBILE_PAYMENT"
	PaymentAutoDebit     PaymentMethod = "AUTO_DEBIT"
	PaymentCash          PaymentMethod = "CASH"
	PaymentOther         PaymentMethod = "OTHER"
)

// PaymentMethods lists every payment method in declaration order.
var PaymentMethods = []PaymentMethod{
	PaymentCard,
	PaymentBankTransfer,
	PaymentMobilePayment,
	PaymentAutoDebit,
	PaymentCash,
	PaymentOther,
}

func (p PaymentMethod) Valid() bool {
	for _, m := range PaymentMethods {
		if p == m {
			return true
		}
	}

	return false
}

// PaymentMethodList renders the enumeration as "CARD, BANK_TRANSFER, ...".
func PaymentMethodList() string {
	names := make([]string, len(PaymentMethods))
	for i, m := range PaymentMethods {
		names[i] = string(m)
	}

	return strings.Join(names, ", ")
}

// Frequency is the repeat interval of a recurring transaction.
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}

	return false
}

// Next returns the occurrence that follows from.
func (f Frequency) Next(from time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	case FrequencyYearly:
		return from.AddDate(1, 0, 0)
	}

	return from
}

// Status represents the lifecycle state of a transaction.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Recurrence holds the repeat schedule of a transaction.
type Recurrence struct {
	IsRecurring       bool
	Frequency         *Frequency
	NextRecurringDate *time.Time
	LastProcessed     *time.Time
}

// Transaction represents a financial transaction.
type Transaction struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Title         string
	Type          Type
	Amount        int64 // Amount in cents
	Category      string
	ReceiptURL    string
	Recurrence    Recurrence
	Date          time.Time
	Description   string
	PaymentMethod *PaymentMethod
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
}
