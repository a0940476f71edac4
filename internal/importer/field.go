package importer

import (
	"fmt"
)

// Field is a destination attribute a source column can be mapped to.
type Field int

const (
	FieldSkip Field = iota
	FieldTitle
	FieldAmount
	FieldType
	FieldDate
	FieldCategory
	FieldPaymentMethod
	FieldDescription
)

// Fields lists every destination field, excluding FieldSkip, in presentation order.
var Fields = []Field{
	FieldTitle,
	FieldAmount,
	FieldType,
	FieldDate,
	FieldCategory,
	FieldPaymentMethod,
	FieldDescription,
}

var fieldNames = map[Field]string{
	FieldSkip:          "skip",
	FieldTitle:         "title",
	FieldAmount:        "amount",
	FieldType:          "type",
	FieldDate:          "date",
	FieldCategory:      "category",
	FieldPaymentMethod: "paymentMethod",
	FieldDescription:   "description",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}

	return fmt.Sprintf("Field(%d)", int(f))
}

// Required reports whether the field must be mapped before an import can be confirmed.
func (f Field) Required() bool {
	switch f {
	case FieldTitle, FieldAmount, FieldType, FieldDate, FieldCategory, FieldPaymentMethod:
		return true
	}

	return false
}

// ParseField resolves a field by name. The match is case-sensitive except for "skip".
func ParseField(name string) (Field, error) {
	if name == "" || name == "Skip" {
		return FieldSkip, nil
	}

	for f, n := range fieldNames {
		if n == name {
			return f, nil
		}
	}

	return FieldSkip, fmt.Errorf("unknown field %q", name)
}

func (f Field) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Field) UnmarshalText(text []byte) error {
	parsed, err := ParseField(string(text))
	if err != nil {
		return err
	}

	*f = parsed

	return nil
}
