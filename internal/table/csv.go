package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrNoHeader is returned when CSV input has no header record.
var ErrNoHeader = errors.New("csv input has no header row")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads a CSV document with a header row into a table.
// Input that is not valid UTF-8 is decoded as Windows-1252.
// Every cell is kept as a string; empty cells are stored as nil.
// Repeated header names are suffixed ".1", ".2", ... in encounter order.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV input: %w", err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode CSV input: %w", err)
		}

		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}

		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	t := New(dedupeHeader(header)...)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record %d: %w", t.Len()+1, err)
		}

		row := NewRow()

		for i, col := range t.Columns {
			var v any
			if i < len(record) && record[i] != "" {
				v = record[i]
			}

			row.Set(col, v)
		}

		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func dedupeHeader(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))

	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}

		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}

		out[i] = name
	}

	return out
}
