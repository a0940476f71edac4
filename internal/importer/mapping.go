package importer

import (
	"fmt"
	"slices"
	"strings"
)

// ErrFieldAlreadyMapped is the per-column message for a duplicate assignment.
const ErrFieldAlreadyMapped = "Field already mapped"

// ColumnError attaches a message to a source column.
type ColumnError struct {
	Column  string `json:"column"`
	Message string `json:"message"`
}

// MappingResult is the outcome of Mapping.Validate.
type MappingResult struct {
	OK        bool
	Conflicts []ColumnError
}

// Mapping assigns a destination field (or FieldSkip) to every source column.
type Mapping struct {
	columns   []string
	fields    map[string]Field
	conflicts map[string]string
}

func NewMapping(columns []string) *Mapping {
	return &Mapping{
		columns:   slices.Clone(columns),
		fields:    make(map[string]Field, len(columns)),
		conflicts: make(map[string]string),
	}
}

// Columns returns the source columns in file order.
func (m *Mapping) Columns() []string {
	return m.columns
}

// Field returns the field assigned to column, FieldSkip when unassigned.
func (m *Mapping) Field(column string) Field {
	return m.fields[column]
}

// Assign overwrites the field for column and clears any conflict recorded for it.
func (m *Mapping) Assign(column string, field Field) error {
	if !slices.Contains(m.columns, column) {
		return fmt.Errorf("unknown column %q", column)
	}

	if field == FieldSkip {
		delete(m.fields, column)
	} else {
		m.fields[column] = field
	}

	delete(m.conflicts, column)

	return nil
}

// Validate flags every column, after the first in file order, that reuses a non-skip field.
func (m *Mapping) Validate() MappingResult {
	m.conflicts = make(map[string]string)
	seen := make(map[Field]bool, len(m.fields))

	var conflicts []ColumnError

	for _, column := range m.columns {
		f := m.fields[column]
		if f == FieldSkip {
			continue
		}

		if seen[f] {
			m.conflicts[column] = ErrFieldAlreadyMapped
			conflicts = append(conflicts, ColumnError{Column: column, Message: ErrFieldAlreadyMapped})

			continue
		}

		seen[f] = true
	}

	return MappingResult{OK: len(conflicts) == 0, Conflicts: conflicts}
}

// Conflict returns the message recorded for column by the last Validate, if any.
func (m *Mapping) Conflict(column string) string {
	return m.conflicts[column]
}

// Missing lists required fields no column is mapped to.
func (m *Mapping) Missing() []Field {
	used := m.used("")

	var missing []Field

	for _, f := range Fields {
		if f.Required() && !used[f] {
			missing = append(missing, f)
		}
	}

	return missing
}

// Available lists the fields column may choose: FieldSkip, its current field,
// and every field not taken by a different column.
func (m *Mapping) Available(column string) []Field {
	taken := m.used(column)

	out := []Field{FieldSkip}

	for _, f := range Fields {
		if !taken[f] {
			out = append(out, f)
		}
	}

	return out
}

func (m *Mapping) used(except string) map[Field]bool {
	used := make(map[Field]bool, len(m.fields))

	for column, f := range m.fields {
		if column != except && f != FieldSkip {
			used[f] = true
		}
	}

	return used
}

// Assignments returns a copy of the column to field assignments, skips included.
func (m *Mapping) Assignments() map[string]Field {
	out := make(map[string]Field, len(m.columns))
	for _, column := range m.columns {
		out[column] = m.fields[column]
	}

	return out
}

// Clone returns an independent copy.
func (m *Mapping) Clone() *Mapping {
	c := NewMapping(m.columns)
	for column, f := range m.fields {
		c.fields[column] = f
	}

	for column, msg := range m.conflicts {
		c.conflicts[column] = msg
	}

	return c
}

// headerAliases lists well-known header spellings per field, most specific first.
var headerAliases = []struct {
	field   Field
	aliases []string
}{
	{FieldPaymentMethod, []string{"payment method", "paymentmethod", "payment_method", "payment", "method"}},
	{FieldCategory, []string{"category", "categoria", "categoría"}},
	{FieldType, []string{"type", "transaction type", "kind", "tipo"}},
	{FieldDate, []string{"date", "transaction date", "posted date", "booking date", "data", "data mov.", "fecha"}},
	{FieldAmount, []string{"amount", "amt", "value", "sum", "montante", "movimento", "importe"}},
	{FieldTitle, []string{"title", "name", "payee", "merchant", "titulo", "título"}},
	{FieldDescription, []string{"description", "desc", "details", "memo", "notes", "descrição", "descripción"}},
}

// Suggest assigns fields to unassigned columns whose header is a well-known
// spelling. Explicit assignments are never overridden.
func (m *Mapping) Suggest() {
	for _, entry := range headerAliases {
		if m.used("")[entry.field] {
			continue
		}

		for _, column := range m.columns {
			if m.fields[column] != FieldSkip {
				continue
			}

			if slices.Contains(entry.aliases, strings.ToLower(strings.TrimSpace(column))) {
				m.fields[column] = entry.field
				break
			}
		}
	}
}
