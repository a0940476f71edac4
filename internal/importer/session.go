package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Limits bound what a session accepts.
type Limits struct {
	MaxFileSize int64
	MaxRows     int
}

//go:generate mockgen -source=session.go -destination=bulk_creator_mock.go -package=importer

// BulkCreator persists a whole validated batch or nothing. It returns the number of rows stored.
type BulkCreator interface {
	CreateBatch(ctx context.Context, records []Record) (int, error)
}

// BulkCreatorFunc adapts a function to BulkCreator.
type BulkCreatorFunc func(ctx context.Context, records []Record) (int, error)

func (f BulkCreatorFunc) CreateBatch(ctx context.Context, records []Record) (int, error) {
	return f(ctx, records)
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	State      State
	FileName   string
	Charset    string
	Columns    []string
	RowCount   int
	Mapping    map[string]Field
	Available  map[string][]Field
	Conflicts  []ColumnError
	Missing    []Field
	RowErrors  []RowError
	LastError  string
	Imported   int
	SampleRows []RawRow
}

// Session is one operator's pass through the import wizard.
type Session struct {
	mu        sync.Mutex
	limits    Limits
	validator *Validator

	state      State
	generation uint64

	file      *File
	fileName  string
	mapping   *Mapping
	frozen    *Mapping
	rowErrors []RowError
	lastError string
	imported  int
}

func NewSession(limits Limits, v *Validator) *Session {
	if v == nil {
		v = NewValidator()
	}

	return &Session{limits: limits, validator: v}
}

func (s *Session) transition(e Event) error {
	to, err := Next(s.state, e)
	if err != nil {
		return err
	}

	s.state = to

	return nil
}

func (s *Session) clear() {
	s.file = nil
	s.fileName = ""
	s.mapping = nil
	s.frozen = nil
	s.rowErrors = nil
	s.lastError = ""
	s.imported = 0
	s.generation++
}

// State returns the current wizard step.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Upload parses a file into the session. size is the declared size in bytes;
// a negative size means unknown. On any error the session stays in
// StateAwaitingFile holding no rows.
func (s *Session) Upload(name string, r io.Reader, size int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := Next(s.state, EventFileParsed); err != nil {
		return err
	}

	if s.limits.MaxFileSize > 0 {
		if size > s.limits.MaxFileSize {
			return &LimitError{Kind: LimitFileSize, Limit: s.limits.MaxFileSize, Actual: size}
		}

		r = &cappedReader{r: r, limit: s.limits.MaxFileSize}
	}

	file, err := ParseCSV(r, s.limits.MaxRows)
	if err != nil {
		if capped, ok := r.(*cappedReader); ok && capped.exceeded {
			return &LimitError{Kind: LimitFileSize, Limit: s.limits.MaxFileSize, Actual: capped.read}
		}

		return fmt.Errorf("parse %s: %w", name, err)
	}

	if capped, ok := r.(*cappedReader); ok && capped.exceeded {
		return &LimitError{Kind: LimitFileSize, Limit: s.limits.MaxFileSize, Actual: capped.read}
	}

	s.file = file
	s.fileName = name
	s.mapping = NewMapping(file.Columns)
	s.rowErrors = nil
	s.lastError = ""

	slog.Info("import file parsed", "file", name, "columns", len(file.Columns), "rows", len(file.Rows), "charset", file.Charset)

	return s.transition(EventFileParsed)
}

// Suggest pre-fills unassigned columns from well-known header names.
func (s *Session) Suggest() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingMapping {
		return &TransitionError{From: s.state, Event: EventMappingComplete}
	}

	s.mapping.Suggest()

	return nil
}

// Assign maps a source column to a destination field.
func (s *Session) Assign(column string, field Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingMapping {
		return &TransitionError{From: s.state, Event: EventMappingComplete}
	}

	return s.mapping.Assign(column, field)
}

// AssignAll applies several assignments in column order. Either all of them
// take effect or, on the first failure, none do.
func (s *Session) AssignAll(assignments map[string]Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingMapping {
		return &TransitionError{From: s.state, Event: EventMappingComplete}
	}

	next := s.mapping.Clone()

	for _, column := range slices.Sorted(maps.Keys(assignments)) {
		if err := next.Assign(column, assignments[column]); err != nil {
			return err
		}
	}

	s.mapping = next

	return nil
}

// SubmitMapping freezes the mapping once it has no conflicts and every required field is mapped.
func (s *Session) SubmitMapping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := Next(s.state, EventMappingComplete); err != nil {
		return err
	}

	result := s.mapping.Validate()
	missing := s.mapping.Missing()

	if !result.OK || len(missing) > 0 {
		return &MappingError{Conflicts: result.Conflicts, Missing: missing}
	}

	s.frozen = s.mapping.Clone()
	s.rowErrors = nil

	return s.transition(EventMappingComplete)
}

// EditMapping returns from confirmation to the mapping step.
func (s *Session) EditMapping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.transition(EventEditMapping); err != nil {
		return err
	}

	s.frozen = nil
	s.rowErrors = nil
	s.lastError = ""

	return nil
}

// Check validates every row under the frozen mapping without persisting anything.
func (s *Session) Check() ([]Record, []RowError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingConfirmation {
		return nil, nil, &TransitionError{From: s.state, Event: EventConfirm}
	}

	records, rowErrors := s.validateRows()

	return records, rowErrors, nil
}

func (s *Session) validateRows() ([]Record, []RowError) {
	records := make([]Record, 0, len(s.file.Rows))

	var rowErrors []RowError

	for i, row := range s.file.Rows {
		rec, msgs := s.validator.Validate(Assemble(row, s.frozen))
		if len(msgs) > 0 {
			rowErrors = append(rowErrors, RowError{Row: i + 1, Messages: msgs})
			continue
		}

		records = append(records, rec)
	}

	return records, rowErrors
}

// Confirm validates every row and, only when all pass and the batch is within
// the limit, hands the whole batch to creator in a single call. The session
// lock is not held during that call. If the session is cancelled or reset
// while the call is outstanding, its result is discarded and ErrCancelled returned.
func (s *Session) Confirm(ctx context.Context, creator BulkCreator) (int, error) {
	s.mu.Lock()

	if _, err := Next(s.state, EventConfirm); err != nil {
		s.mu.Unlock()
		return 0, err
	}

	records, rowErrors := s.validateRows()
	if len(rowErrors) > 0 {
		s.rowErrors = rowErrors
		s.mu.Unlock()

		return 0, &ValidationError{Rows: rowErrors}
	}

	if s.limits.MaxRows > 0 && len(records) > s.limits.MaxRows {
		err := &LimitError{Kind: LimitRows, Limit: int64(s.limits.MaxRows), Actual: int64(len(records))}
		s.lastError = err.Error()
		s.mu.Unlock()

		return 0, err
	}

	s.rowErrors = nil
	s.lastError = ""
	_ = s.transition(EventConfirm)
	generation := s.generation
	s.mu.Unlock()

	n, err := creator.CreateBatch(ctx, records)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != generation {
		slog.Info("discarding result of cancelled import", "rows", len(records), "error", err)
		return 0, ErrCancelled
	}

	if err != nil {
		_ = s.transition(EventPersistFailed)
		s.lastError = err.Error()

		return 0, &PersistError{Err: err}
	}

	_ = s.transition(EventPersisted)
	s.imported = n

	return n, nil
}

// Cancel abandons the wizard from any non-terminal state and clears the session.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.transition(EventCancel); err != nil {
		return err
	}

	s.clear()

	return nil
}

// Reset starts over after a completed import.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.transition(EventReset); err != nil {
		return err
	}

	s.clear()

	return nil
}

const sampleRows = 3

// Snapshot returns a copy of the session's current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:     s.state,
		FileName:  s.fileName,
		RowErrors: s.rowErrors,
		LastError: s.lastError,
		Imported:  s.imported,
	}

	if s.file != nil {
		snap.Charset = s.file.Charset
		snap.Columns = s.file.Columns
		snap.RowCount = len(s.file.Rows)
		snap.SampleRows = s.file.Rows[:min(sampleRows, len(s.file.Rows))]
	}

	if s.mapping != nil {
		snap.Mapping = s.mapping.Assignments()
		snap.Missing = s.mapping.Missing()
		snap.Available = make(map[string][]Field, len(s.file.Columns))

		for _, column := range s.file.Columns {
			snap.Available[column] = s.mapping.Available(column)

			if msg := s.mapping.Conflict(column); msg != "" {
				snap.Conflicts = append(snap.Conflicts, ColumnError{Column: column, Message: msg})
			}
		}
	}

	return snap
}

// cappedReader stops reading past limit bytes and records that it did.
type cappedReader struct {
	r        io.Reader
	limit    int64
	read     int64
	exceeded bool
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.read > c.limit {
		c.exceeded = true
		return 0, io.EOF
	}

	if rem := c.limit + 1 - c.read; int64(len(p)) > rem {
		p = p[:rem]
	}

	n, err := c.r.Read(p)
	c.read += int64(n)

	if c.read > c.limit {
		c.exceeded = true
		return n, io.EOF
	}

	return n, err
}
