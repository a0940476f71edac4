package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	enc "github.com/smritirangarajan/spenderella/internal/encoding"
)

// File is a parsed upload.
type File struct {
	Columns []string
	Rows    []RawRow
	Charset string
}

// ParseCSV reads a comma-separated file whose first record is the header.
// Every record must have as many fields as the header. Blank lines are ignored.
// When the file has more than maxRows data rows, a *LimitError with the full
// row count is returned and no rows are kept.
func ParseCSV(r io.Reader, maxRows int) (*File, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header row", ErrMalformedFile)
		}

		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}

	columns, err := headerColumns(header)
	if err != nil {
		return nil, err
	}

	var (
		rows  []RawRow
		count int
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
		}

		count++
		if maxRows > 0 && count > maxRows {
			rows = nil
			continue
		}

		row := make(RawRow, len(columns))
		for i, column := range columns {
			row[column] = record[i]
		}

		rows = append(rows, row)
	}

	if maxRows > 0 && count > maxRows {
		return nil, &LimitError{Kind: LimitRows, Limit: int64(maxRows), Actual: int64(count)}
	}

	if count == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrMalformedFile)
	}

	return &File{Columns: columns, Rows: rows, Charset: charset}, nil
}

func headerColumns(header []string) ([]string, error) {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))

	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			return nil, fmt.Errorf("%w: column %d has an empty header", ErrMalformedFile, i+1)
		}

		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformedFile, name)
		}

		seen[name] = true
		columns[i] = name
	}

	return columns, nil
}
