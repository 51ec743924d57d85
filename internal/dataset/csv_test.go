package dataset

import (
	"strings"
	"testing"

	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := "\ufeffreview, rating\n" +
		"\"Great team, great pay\",5\n" +
		"short row\n" +
		"\n" +
		"too,many,cells\n"

	table, err := ReadCSV(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"review", "rating"}, table.Columns)
	assert.Equal(t, [][]string{
		{"Great team, great pay", "5"},
		{"short row", ""},
		{"too", "many"},
	}, table.Rows)
}

func TestReadCSV_Tabs(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("a\tb\n1\t2\n"), CSVOptions{Comma: '\t'})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2"}}, table.Rows)
}

func TestReadCSV_HeaderCleanup(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("name,,Name\nx,y,z\n"), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "column_2", "column_3"}, table.Columns)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), CSVOptions{})
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("review\n"), CSVOptions{})
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestReadCSV_MaxRows(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("r\n1\n2\n3\n"), CSVOptions{MaxRows: 2})
	assert.ErrorIs(t, err, domain.ErrTooManyRecords)

	table, err := ReadCSV(strings.NewReader("r\n1\n2\n"), CSVOptions{MaxRows: 2})
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

func TestReadCSV_CleansUnstorableText(t *testing.T) {
	input := "re\x00view,note\n" +
		"caf\xe9 was great,\x00\n"

	table, err := ReadCSV(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"review", "note"}, table.Columns)
	assert.Equal(t, [][]string{{"caf\uFFFD was great", ""}}, table.Rows)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"valid text unchanged", "Grüße, 5 ★", "Grüße, 5 ★"},
		{"latin-1 byte replaced", "caf\xe9", "caf\uFFFD"},
		{"run of invalid bytes collapses", "a\xff\xfeb", "a\uFFFDb"},
		{"nul dropped", "a\x00b\x00", "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}
