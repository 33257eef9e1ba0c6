package table

import (
	"encoding/json"
	"fmt"
	"io"
)

// ReadJSON reads a JSON array of flat objects into a table. Key order of
// the first occurrence of each key determines column order. Numbers are kept
// as json.Number, nested values are rejected.
func ReadJSON(r io.Reader) (*Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	t := New()

	for dec.More() {
		row, err := readObject(dec)
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON record %d: %w", t.Len()+1, err)
		}

		t.Append(row)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}

	// Columns introduced by later rows are absent, not blank, on earlier ones.
	for _, row := range t.Rows {
		for _, col := range t.Columns {
			if !row.Has(col) {
				row.Set(col, nil)
			}
		}
	}

	return t, nil
}

func readObject(dec *json.Decoder) (*Row, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	row := NewRow()

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}

		if d, isDelim := tok.(json.Delim); isDelim {
			return nil, fmt.Errorf("field %q: nested value %v is not supported", key, d)
		}

		row.Set(key, tok)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	return row, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read JSON input: %w", err)
	}

	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %v in JSON input, got %v", want, tok)
	}

	return nil
}
