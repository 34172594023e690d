package microdata

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) ([][]string, error) {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	// Drain error channel
	for err := range errCh {
		if err != nil {
			return rows, err
		}
	}
	return rows, nil
}

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestStreamCSV_SemicolonDefault(t *testing.T) {
	input := "a;b;c\n1;2;3\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{Encoding: "utf-8"})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "b", "c"}, rows[0])
	assert.Equal(t, []string{"1", "2", "3"}, rows[1])
}

func TestStreamCSV_Latin1Decoding(t *testing.T) {
	input := latin1(t, "NO_CINE_AREA_GERAL\nEngenharia, produção e construção\n")
	rowCh, errCh := StreamCSV(context.Background(), bytes.NewReader(input), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Engenharia, produção e construção", rows[1][0])
}

func TestStreamCSV_WithHeader(t *testing.T) {
	input := "name;age\nalice;30\nbob;25\n"
	headerCh := make(chan []string, 1)

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
	})

	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)

	// Data rows should not include header
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"alice", "30"}, rows[0])

	header := <-headerCh
	assert.Equal(t, []string{"name", "age"}, header)
}

func TestStreamCSV_TrimSpace(t *testing.T) {
	input := " a ; b \n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{TrimSpace: true})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rows[0])
}

func TestStreamCSV_UnknownEncoding(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader("a\n"), CSVOptions{Encoding: "klingon"})
	_, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported encoding")
}

func TestStreamCSV_ContextCancellation(t *testing.T) {
	var sb strings.Builder
	for range 10000 {
		sb.WriteString("a;b;c\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader(sb.String()), CSVOptions{})
	_, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}

func TestStreamCSV_MalformedQuote(t *testing.T) {
	input := "a;b\n\"unterminated;2\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	_, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: read row")
}

func TestReadTable(t *testing.T) {
	input := latin1(t, "ï»¿CO_IES;NO_MUNICIPIO\n1;Fortaleza\n2;São Paulo\n")
	tbl, err := ReadTable(context.Background(), bytes.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"CO_IES", "NO_MUNICIPIO"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, "São Paulo", tbl.Get(1, "NO_MUNICIPIO"))
}

func TestReadTable_Empty(t *testing.T) {
	_, err := ReadTable(context.Background(), strings.NewReader(""), CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing header")
}
