package sheetdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello", `"hello"`},
		{"", `""`},
		{`say "hi"`, `"say \"hi\""`},
		{`back\slash`, `"back\\slash"`},
		{"two\nlines", `"two\nlines"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, quoteString(tt.in), "input %q", tt.in)
	}
}

func TestParseValue_Scalars(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{`"hello"`, "hello"},
		{`"say \"hi\""`, `say "hi"`},
		{`"two\nlines"`, "two\nlines"},
		{`"back\\slash"`, `back\slash`},
		{"true", true},
		{"false", false},
		{"42", 42},
		{"-7", -7},
		{"2.5", 2.5},
		{"1e3", 1000.0},
	}
	for _, tt := range tests {
		got, err := parseValue(tt.in, 1)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParseValue_Arrays(t *testing.T) {
	got, err := parseValue(`["A1", "B2", "C3"]`, 1)
	require.NoError(t, err)
	assert.Equal(t, []any{"A1", "B2", "C3"}, got)

	got, err = parseValue("[]", 1)
	require.NoError(t, err)
	assert.Equal(t, []any{}, got)

	// commas inside strings do not split elements
	got, err = parseValue(`["a,b", 2]`, 1)
	require.NoError(t, err)
	assert.Equal(t, []any{"a,b", 2}, got)
}

func TestParseValue_InlineTables(t *testing.T) {
	got, err := parseValue(`{ message = "boom", type = "EVAL_ERROR" }`, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"message": "boom", "type": "EVAL_ERROR"}, got)

	// nested arrays inside tables
	got, err = parseValue(`{ details = ["A1", "B1"], type = "CIRCULAR_REF" }`, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"details": []any{"A1", "B1"}, "type": "CIRCULAR_REF"}, got)
}

func TestParseValue_Errors(t *testing.T) {
	for _, in := range []string{``, `"open`, `[1, 2`, `{ a = 1`, `nonsense!`, `"bad \q escape"`} {
		_, err := parseValue(in, 3)
		require.Error(t, err, "input %q", in)
		var de *DocError
		require.ErrorAs(t, err, &de, "input %q", in)
		assert.Equal(t, ErrCodeInvalidValue, de.Code, "input %q", in)
		assert.Equal(t, 3, de.Line, "input %q", in)
	}
}

func TestRenderValue_RoundTrip(t *testing.T) {
	values := []any{
		"plain",
		`quotes "and" \slashes\`,
		true,
		42,
		-1.5,
		[]any{"x", 1, true},
		map[string]any{"b": 2, "a": "one"},
	}
	for _, v := range values {
		got, err := parseValue(renderValue(v), 1)
		require.NoError(t, err, "value %#v", v)
		assert.Equal(t, v, got, "value %#v", v)
	}
}

func TestRenderValue_MapsAreSorted(t *testing.T) {
	m := map[string]any{"zeta": 1, "alpha": 2, "mid": 3}
	assert.Equal(t, `{ alpha = 2, mid = 3, zeta = 1 }`, renderValue(m))
}
