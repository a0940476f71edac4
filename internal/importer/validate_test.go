package importer_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smritirangarajan/spenderella/internal/importer"
	"github.com/smritirangarajan/spenderella/internal/transaction"
)

var fullHeader = []string{"Title", "Amount", "Type", "Date", "Category", "Method", "Notes"}

func fullMapping(t *testing.T) *importer.Mapping {
	t.Helper()

	m := importer.NewMapping(fullHeader)
	for column, f := range map[string]importer.Field{
		"Title":    importer.FieldTitle,
		"Amount":   importer.FieldAmount,
		"Type":     importer.FieldType,
		"Date":     importer.FieldDate,
		"Category": importer.FieldCategory,
		"Method":   importer.FieldPaymentMethod,
		"Notes":    importer.FieldDescription,
	} {
		require.NoError(t, m.Assign(column, f))
	}

	return m
}

func validRow() importer.RawRow {
	return importer.RawRow{
		"Title":    "  Groceries ",
		"Amount":   "$1,234.50",
		"Type":     "expense",
		"Date":     "2024-03-15",
		"Category": "Food",
		"Method":   "bank transfer",
		"Notes":    " weekly shop ",
	}
}

func TestValidator_Validate(t *testing.T) {
	type testCase struct {
		name         string
		mutate       func(row importer.RawRow)
		wantMessages []string
	}

	tests := []testCase{
		{
			name:   "Valid",
			mutate: func(importer.RawRow) {},
		},
		{
			name:         "BlankTitle",
			mutate:       func(r importer.RawRow) { r["Title"] = "   " },
			wantMessages: []string{"title: Title is required"},
		},
		{
			name:         "NonNumericAmount",
			mutate:       func(r importer.RawRow) { r["Amount"] = "abc" },
			wantMessages: []string{"amount: Amount must be a number"},
		},
		{
			name:         "ZeroAmount",
			mutate:       func(r importer.RawRow) { r["Amount"] = "0" },
			wantMessages: []string{"amount: Amount must be greater than zero"},
		},
		{
			name:         "NegativeAmount",
			mutate:       func(r importer.RawRow) { r["Amount"] = "-5" },
			wantMessages: []string{"amount: Amount must be greater than zero"},
		},
		{
			name:         "SubCentAmount",
			mutate:       func(r importer.RawRow) { r["Amount"] = "0.004" },
			wantMessages: []string{"amount: Amount must be greater than zero"},
		},
		{
			name:         "AmountOverflowsCents",
			mutate:       func(r importer.RawRow) { r["Amount"] = "1e20" },
			wantMessages: []string{"amount: Amount must be a number"},
		},
		{
			name:         "InfiniteAmount",
			mutate:       func(r importer.RawRow) { r["Amount"] = "1e400" },
			wantMessages: []string{"amount: Amount must be a number"},
		},
		{
			name:         "BadDate",
			mutate:       func(r importer.RawRow) { r["Date"] = "not a date" },
			wantMessages: []string{"date: Invalid date format"},
		},
		{
			name:         "BadType",
			mutate:       func(r importer.RawRow) { r["Type"] = "transfer" },
			wantMessages: []string{"Transaction type must be INCOME or EXPENSE"},
		},
		{
			name:         "BlankCategory",
			mutate:       func(r importer.RawRow) { r["Category"] = "" },
			wantMessages: []string{"category: Category is required"},
		},
		{
			name:   "UnknownPaymentMethodIsAbsent",
			mutate: func(r importer.RawRow) { r["Method"] = "cheque" },
		},
		{
			name: "AllFailuresCollectedInFieldOrder",
			mutate: func(r importer.RawRow) {
				r["Category"] = ""
				r["Type"] = "?"
				r["Date"] = "??"
				r["Amount"] = "x"
				r["Title"] = ""
			},
			wantMessages: []string{
				"title: Title is required",
				"amount: Amount must be a number",
				"date: Invalid date format",
				"Transaction type must be INCOME or EXPENSE",
				"category: Category is required",
			},
		},
	}

	v := importer.NewValidator()
	m := fullMapping(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.mutate(row)

			rec, msgs := v.Validate(importer.Assemble(row, m))
			assert.Equal(t, tt.wantMessages, msgs)

			if len(tt.wantMessages) > 0 {
				return
			}

			assert.Equal(t, "Groceries", rec.Title)
			assert.True(t, decimal.RequireFromString("1234.5").Equal(rec.Amount))
			assert.Equal(t, int64(123450), rec.Cents())
			assert.Equal(t, transaction.TypeExpense, rec.Type)
			assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), rec.Date)
			assert.Equal(t, "Food", rec.Category)
			assert.Equal(t, "weekly shop", rec.Description)
		})
	}
}

func TestValidator_UnmappedFields(t *testing.T) {
	m := importer.NewMapping([]string{"Desc"})
	require.NoError(t, m.Assign("Desc", importer.FieldTitle))

	_, msgs := importer.NewValidator().Validate(importer.Assemble(importer.RawRow{"Desc": "Coffee"}, m))
	assert.Equal(t, []string{
		"amount: Required",
		"date: Date is required",
		"Transaction type must be INCOME or EXPENSE",
		"category: Category is required",
	}, msgs)
}

func TestValidator_InvalidPaymentMethodCandidate(t *testing.T) {
	c := importer.CandidateFrom(importer.Record{
		Title:         "Rent",
		Amount:        decimal.NewFromInt(900),
		Date:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:          transaction.TypeExpense,
		Category:      "Housing",
		PaymentMethod: new(transaction.PaymentMethod("CHEQUE")),
	})

	_, msgs := importer.NewValidator().Validate(c)
	assert.Equal(t, []string{
		"Payment method must be one of: CARD, BANK_TRANSFER, MOBILE_PAYMENT, AUTO_DEBIT, CASH, OTHER",
	}, msgs)
}

func TestValidator_Idempotent(t *testing.T) {
	v := importer.NewValidator()
	m := fullMapping(t)

	rows := []importer.RawRow{validRow()}

	noMethod := validRow()
	noMethod["Method"] = ""
	noMethod["Notes"] = ""
	rows = append(rows, noMethod)

	income := validRow()
	income["Type"] = "Income"
	income["Amount"] = "₹0.01"
	income["Date"] = "12/31/2023"
	rows = append(rows, income)

	for _, row := range rows {
		first, msgs := v.Validate(importer.Assemble(row, m))
		require.Empty(t, msgs)

		second, msgs := v.Validate(importer.CandidateFrom(first))
		assert.Empty(t, msgs)
		assert.Equal(t, first, second)
	}
}
