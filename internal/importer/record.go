package importer

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smritirangarajan/spenderella/internal/transaction"
)

// RawRow is one data line of an uploaded file, keyed by source column name.
type RawRow map[string]string

// CellState records what happened when a cell was normalized.
type CellState int

const (
	// CellAbsent means no source column supplied the field.
	CellAbsent CellState = iota
	// CellParsed means the normalizer produced a typed value.
	CellParsed
	// CellInvalid means a value was supplied but could not be normalized.
	CellInvalid
)

// Cell is a candidate field value together with the raw text it came from.
type Cell[T any] struct {
	Value T
	Raw   string
	State CellState
}

func parsed[T any](v T, raw string) Cell[T] {
	return Cell[T]{Value: v, Raw: raw, State: CellParsed}
}

func invalid[T any](raw string) Cell[T] {
	return Cell[T]{Raw: raw, State: CellInvalid}
}

// Candidate is a row assembled under a mapping, ready for validation.
type Candidate struct {
	Title         Cell[string]
	Amount        Cell[decimal.Decimal]
	Date          Cell[time.Time]
	Type          Cell[transaction.Type]
	Category      Cell[string]
	PaymentMethod Cell[transaction.PaymentMethod]
	Description   Cell[string]
}

// Record is a validated, normalized transaction row.
type Record struct {
	Title         string
	Amount        decimal.Decimal
	Date          time.Time
	Type          transaction.Type
	Category      string
	PaymentMethod *transaction.PaymentMethod
	Description   string
}

var (
	minCents = decimal.NewFromInt(math.MinInt64)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

// ToCents converts an amount to minor units, rounding half away from zero.
// ok is false when the result does not fit in an int64.
func ToCents(amount decimal.Decimal) (int64, bool) {
	c := amount.Shift(2).Round(0)
	if c.LessThan(minCents) || c.GreaterThan(maxCents) {
		return 0, false
	}

	return c.IntPart(), true
}

// Cents converts the amount to minor units. Validated records always fit.
func (r Record) Cents() int64 {
	c, _ := ToCents(r.Amount)
	return c
}

// Params converts the record into transaction creation parameters.
func (r Record) Params() transaction.CreateParams {
	return transaction.CreateParams{
		Title:         r.Title,
		Type:          r.Type,
		Amount:        r.Cents(),
		Category:      r.Category,
		Date:          r.Date,
		Description:   r.Description,
		PaymentMethod: r.PaymentMethod,
		Status:        transaction.StatusCompleted,
	}
}

// Assemble applies the mapping and the normalizers to one row.
func Assemble(row RawRow, m *Mapping) Candidate {
	var c Candidate

	for _, column := range m.Columns() {
		raw := row[column]

		switch m.Field(column) {
		case FieldTitle:
			c.Title = parsed(NormalizeText(raw), raw)
		case FieldAmount:
			if v, ok := NormalizeAmount(raw); ok {
				c.Amount = parsed(v, raw)
			} else {
				c.Amount = invalid[decimal.Decimal](raw)
			}
		case FieldDate:
			if v, ok := NormalizeDate(raw); ok {
				c.Date = parsed(v, raw)
			} else {
				c.Date = invalid[time.Time](raw)
			}
		case FieldType:
			if v, ok := NormalizeType(raw); ok {
				c.Type = parsed(v, raw)
			} else {
				c.Type = invalid[transaction.Type](raw)
			}
		case FieldCategory:
			c.Category = parsed(NormalizeText(raw), raw)
		case FieldPaymentMethod:
			if v, ok := NormalizePaymentMethod(raw); ok {
				c.PaymentMethod = parsed(v, raw)
			} else {
				c.PaymentMethod = Cell[transaction.PaymentMethod]{Raw: raw}
			}
		case FieldDescription:
			c.Description = parsed(NormalizeText(raw), raw)
		}
	}

	return c
}

// CandidateFrom treats an already-validated record as normalized input.
func CandidateFrom(r Record) Candidate {
	c := Candidate{
		Title:       parsed(r.Title, r.Title),
		Amount:      parsed(r.Amount, r.Amount.String()),
		Date:        parsed(r.Date, r.Date.Format(time.DateOnly)),
		Type:        parsed(r.Type, string(r.Type)),
		Category:    parsed(r.Category, r.Category),
		Description: parsed(r.Description, r.Description),
	}

	if r.PaymentMethod != nil {
		c.PaymentMethod = parsed(*r.PaymentMethod, string(*r.PaymentMethod))
	}

	return c
}
