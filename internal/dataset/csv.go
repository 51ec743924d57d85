package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

var ErrEmptyFile = errors.New("file has no header row")

const utf8BOM = "\ufeff"

type CSVOptions struct {
	// Comma is the field delimiter; zero means ','.
	Comma rune
	// MaxRows rejects files with more data rows; zero means unlimited.
	MaxRows int
}

// CleanText replaces invalid UTF-8 with U+FFFD and drops NUL bytes. Postgres
// refuses both in TEXT columns.
func CleanText(s string) string {
	if utf8.ValidString(s) && !strings.ContainsRune(s, 0) {
		return s
	}
	return strings.ReplaceAll(strings.ToValidUTF8(s, "\uFFFD"), "\x00", "")
}

// ReadCSV parses a delimited file whose first row is the header. Ragged rows are
// padded with empty cells or cut to the header width, cells are trimmed and passed
// through CleanText, a UTF-8 BOM is stripped and blank or duplicate header names are replaced by positional ones.
func ReadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	table := &Table{Columns: cleanHeader(header)}
	width := len(table.Columns)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(table.Rows)+2, err)
		}
		if blankRow(row) {
			continue
		}
		if opts.MaxRows > 0 && len(table.Rows) >= opts.MaxRows {
			return nil, fmt.Errorf("%w: more than %d rows", domain.ErrTooManyRecords, opts.MaxRows)
		}

		cells := make([]string, width)
		for i := range min(width, len(row)) {
			cells[i] = CleanText(strings.TrimSpace(row[i]))
		}
		table.Rows = append(table.Rows, cells)
	}

	return table, nil
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		name := CleanText(strings.TrimSpace(h))
		if _, dup := seen[strings.ToLower(name)]; name == "" || dup {
			name = "column_" + strconv.Itoa(i+1)
		}
		seen[strings.ToLower(name)] = struct{}{}
		out[i] = name
	}
	return out
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
