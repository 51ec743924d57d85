package dataset

import (
	"fmt"
	"strings"

	"github.com/pscheid92/reviewpulse/internal/domain"
)

// Table is a header row plus data rows. Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex finds a column by name, ignoring case and surrounding whitespace.
func (t *Table) ColumnIndex(name string) (int, error) {
	want := strings.TrimSpace(name)
	for i, c := range t.Columns {
		if strings.EqualFold(c, want) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", domain.ErrColumnNotFound, name)
}

// Column returns the cells of one column in row order.
func (t *Table) Column(name string) ([]string, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	cells := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[idx]
	}
	return cells, nil
}

// Records turns one column into records carrying the raw cell text.
func (t *Table) Records(name string) ([]domain.Record, error) {
	cells, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	records := make([]domain.Record, len(cells))
	for i, c := range cells {
		records[i] = domain.Record{Raw: c}
	}
	return records, nil
}

// Head returns a table with at most the first n rows. The rows are shared.
func (t *Table) Head(n int) *Table {
	n = max(0, min(n, len(t.Rows)))
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

// DefaultColumn picks the first column that holds free text, falling back to the
// first column. It returns "" for a table without columns.
func (t *Table) DefaultColumn(isText func(cells []string) bool) string {
	if len(t.Columns) == 0 {
		return ""
	}
	for _, c := range t.Columns {
		cells, _ := t.Column(c)
		if isText(cells) {
			return c
		}
	}
	return t.Columns[0]
}
