package importer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedFile = errors.New("malformed file")
	// ErrCancelled is returned by Confirm when the session was cancelled or reset
	// while the bulk-create call was outstanding. The call's result is discarded.
	ErrCancelled = errors.New("import cancelled")
)

// LimitKind names the configured limit a file violated.
type LimitKind int

const (
	LimitFileSize LimitKind = iota
	LimitRows
)

// LimitError reports an upload or batch that exceeds a configured limit.
type LimitError struct {
	Kind   LimitKind
	Limit  int64
	Actual int64
}

func (e *LimitError) Error() string {
	switch e.Kind {
	case LimitFileSize:
		return fmt.Sprintf("file is too large: %d bytes exceeds the %d byte limit", e.Actual, e.Limit)
	case LimitRows:
		return fmt.Sprintf("cannot import more than %d transactions: file contains %d rows", e.Limit, e.Actual)
	}

	return "limit exceeded"
}

// MappingError explains why a mapping cannot be submitted.
type MappingError struct {
	Conflicts []ColumnError
	Missing   []Field
}

func (e *MappingError) Error() string {
	var parts []string

	for _, c := range e.Conflicts {
		parts = append(parts, fmt.Sprintf("%s: %s", c.Column, c.Message))
	}

	if len(e.Missing) > 0 {
		names := make([]string, len(e.Missing))
		for i, f := range e.Missing {
			names[i] = f.String()
		}

		parts = append(parts, "required fields not mapped: "+strings.Join(names, ", "))
	}

	return "invalid mapping: " + strings.Join(parts, "; ")
}

// RowError carries every validation message for one data row. Row is 1-based.
type RowError struct {
	Row      int      `json:"row"`
	Messages []string `json:"messages"`
}

// ValidationError groups the row failures that blocked a confirm.
type ValidationError struct {
	Rows []RowError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%d of the rows failed validation", len(e.Rows))
}

// PersistError wraps the bulk-create collaborator's failure.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return e.Err.Error()
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
