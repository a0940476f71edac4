package importer

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/smritirangarajan/spenderella/internal/transaction"
)

// rowView is the flat shape the validator checks. Field order is the order
// in which failures are reported. Amount holds the cents that would be stored.
type rowView struct {
	Title         string    `json:"title" validate:"required"`
	Amount        int64     `json:"amount" validate:"present,parsed,gt=0"`
	Date          time.Time `json:"date" validate:"present,parsed"`
	Type          string    `json:"type" validate:"present,parsed,oneof=INCOME EXPENSE"`
	Category      string    `json:"category" validate:"required"`
	PaymentMethod string    `json:"paymentMethod" validate:"omitempty,oneof=CARD BANK_TRANSFER MOBILE_PAYMENT AUTO_DEBIT CASH OTHER"`

	States map[string]CellState `json:"-" validate:"-"`
}

// Validator decides whether a Candidate is an acceptable transaction.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	// Registration only fails for empty or restricted tag names.
	_ = v.RegisterValidation("present", func(fl validator.FieldLevel) bool {
		return cellState(fl) != CellAbsent
	}, true)
	_ = v.RegisterValidation("parsed", func(fl validator.FieldLevel) bool {
		return cellState(fl) == CellParsed
	}, true)

	return &Validator{v: v}
}

func cellState(fl validator.FieldLevel) CellState {
	switch view := fl.Top().Interface().(type) {
	case *rowView:
		return view.States[fl.StructFieldName()]
	case rowView:
		return view.States[fl.StructFieldName()]
	}

	return CellAbsent
}

// Validate returns the normalized record, or every failure message in field order.
func (v *Validator) Validate(c Candidate) (Record, []string) {
	amountState := c.Amount.State

	cents, ok := ToCents(c.Amount.Value)
	if !ok && amountState == CellParsed {
		amountState = CellInvalid
	}

	view := &rowView{
		Title:    c.Title.Value,
		Amount:   cents,
		Date:     c.Date.Value,
		Type:     string(c.Type.Value),
		Category: c.Category.Value,
		States: map[string]CellState{
			"Amount": amountState,
			"Date":   c.Date.State,
			"Type":   c.Type.State,
		},
	}

	if c.PaymentMethod.State != CellAbsent {
		view.PaymentMethod = string(c.PaymentMethod.Value)
	}

	if err := v.v.Struct(view); err != nil {
		return Record{}, messages(err)
	}

	rec := Record{
		Title:       c.Title.Value,
		Amount:      c.Amount.Value,
		Date:        c.Date.Value,
		Type:        c.Type.Value,
		Category:    c.Category.Value,
		Description: c.Description.Value,
	}

	if c.PaymentMethod.State == CellParsed {
		rec.PaymentMethod = new(c.PaymentMethod.Value)
	}

	return rec, nil
}

func messages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, message(fe))
	}

	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()

	switch field {
	case "type":
		return "Transaction type must be INCOME or EXPENSE"
	case "paymentMethod":
		return "Payment method must be one of: " + transaction.PaymentMethodList()
	case "title":
		return "title: Title is required"
	case "category":
		return "category: Category is required"
	case "amount":
		switch fe.Tag() {
		case "present":
			return "amount: Required"
		case "parsed":
			return "amount: Amount must be a number"
		}

		return "amount: Amount must be greater than zero"
	case "date":
		if fe.Tag() == "present" {
			return "date: Date is required"
		}

		return "date: Invalid date format"
	}

	return field + ": Invalid value"
}
