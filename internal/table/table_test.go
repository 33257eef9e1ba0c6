package table

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_OrderAndJSON(t *testing.T) {
	r := RowOf("b", "2", "a", 1, "c", nil)
	r.Set("b", "3")

	assert.Equal(t, []string{"b", "a", "c"}, r.Keys())
	assert.Equal(t, 3, r.Len())
	assert.True(t, r.Has("c"))
	assert.False(t, r.Has("d"))

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":"3","a":1,"c":null}`, string(data))
	assert.Equal(t, `{"b":"3","a":1,"c":null}`, string(data))
}

func TestRow_Clone(t *testing.T) {
	r := RowOf("a", "1")
	c := r.Clone()
	c.Set("a", "2")
	c.Set("b", "3")

	assert.Equal(t, "1", r.Value("a"))
	assert.False(t, r.Has("b"))
	assert.Equal(t, []string{"a", "b"}, c.Keys())
}

func TestTable_SetColumnAndSlice(t *testing.T) {
	tbl := New("x")
	tbl.Append(RowOf("x", "1"))
	tbl.Append(RowOf("x", "2", "y", "z"))

	assert.Equal(t, []string{"x", "y"}, tbl.Columns)

	tbl.SetColumn("n", func(i int, _ *Row) any { return i })
	assert.Equal(t, []any{0, 1}, tbl.Column("n"))

	part := tbl.Slice(1, 10)
	require.Equal(t, 1, part.Len())
	assert.Equal(t, "2", part.Rows[0].Value("x"))
	assert.Equal(t, 0, tbl.Slice(5, 2).Len())
}

func TestIsBlank(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{nil, true},
		{"", true},
		{"  \t", true},
		{math.NaN(), true},
		{"x", false},
		{0, false},
		{false, false},
		{1.5, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsBlank(tt.in), "%#v", tt.in)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "", String(nil))
	assert.Equal(t, "42", String(42))
	assert.Equal(t, "1.5", String(1.5))
	assert.Equal(t, "true", String(true))
	assert.Equal(t, "7", String(json.Number("7")))
}

func TestReadCSV(t *testing.T) {
	input := "\xEF\xBB\xBFLoad Number, city,city,Weight\n" +
		"L1, HOT SPRINGS,X,42000\n" +
		"L2,,Y\n"

	tbl, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"Load Number", "city", "city.1", "Weight"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())

	assert.Equal(t, "HOT SPRINGS", tbl.Rows[0].Value("city"))
	assert.Equal(t, "X", tbl.Rows[0].Value("city.1"))
	assert.Nil(t, tbl.Rows[1].Value("city"))
	assert.True(t, tbl.Rows[1].Has("Weight"))
	assert.Nil(t, tbl.Rows[1].Value("Weight"))
}

func TestReadCSV_Windows1252(t *testing.T) {
	// 0xE9 is "é" in Windows-1252 and invalid as UTF-8.
	input := "name\nCaf\xE9\n"

	tbl, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "Café", tbl.Rows[0].Value("name"))
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.ErrorIs(t, err, ErrNoHeader)
}

func TestReadJSON(t *testing.T) {
	input := `[{"b": "x", "a": 1.5}, {"a": 2, "c": null}]`

	tbl, err := ReadJSON(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "c"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, json.Number("1.5"), tbl.Rows[0].Value("a"))
	assert.True(t, tbl.Rows[0].Has("c"))
	assert.Nil(t, tbl.Rows[1].Value("b"))
}

func TestReadJSON_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not an array", `{"a": 1}`},
		{"nested value", `[{"a": {"b": 1}}]`},
		{"truncated", `[{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			require.Error(t, err)
		})
	}
}

func TestSample(t *testing.T) {
	tbl := New("a")
	for _, v := range []any{"1", nil, " ", "2", "3"} {
		tbl.Append(RowOf("a", v))
	}

	assert.Equal(t, []string{"1", "2"}, Sample(tbl, "a", 2))
	assert.Equal(t, []string{"1", "2", "3"}, Samples(tbl, 10)["a"])
	assert.Empty(t, Sample(tbl, "missing", 10))
}
