package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplay(t *testing.T) {
	assert.Equal(t, "", Empty{}.Display())
	assert.Equal(t, "TRUE", Bool(true).Display())
	assert.Equal(t, "FALSE", Bool(false).Display())
	assert.Equal(t, "42", Number(42).Display())
	assert.Equal(t, "-1.5", Number(-1.5).Display())
	assert.Equal(t, "hello", String("hello").Display())
}

func TestDisplay_LongNumbersTrimmed(t *testing.T) {
	// 1/3 would print dozens of digits at full precision; long values are
	// re-rendered at 12 fractional digits with trailing zeros trimmed.
	assert.Equal(t, "0.333333333333", Number(1.0/3.0).Display())
	assert.Equal(t, "0.1", Number(0.1).Display())
	// Trailing zeros and the decimal point itself are trimmed.
	assert.Equal(t, "2", Number(2.0000000000000004).Display())
}

func TestDisplay_NonFinite(t *testing.T) {
	assert.Equal(t, "#ERROR", Number(math.NaN()).Display())
	assert.Equal(t, "#ERROR", Number(math.Inf(1)).Display())
}

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		v    Value
		want float64
	}{
		{Empty{}, 0},
		{Number(7.5), 7.5},
		{Bool(true), 1},
		{Bool(false), 0},
		{String("  42 "), 42},
		{String(""), 0},
		{String("   "), 0},
	}
	for _, tt := range tests {
		got, err := CoerceNumber(tt.v)
		require.Nil(t, err, "value %#v", tt.v)
		assert.Equal(t, tt.want, got, "value %#v", tt.v)
	}

	_, err := CoerceNumber(String("hello"))
	require.NotNil(t, err)
	assert.Equal(t, ErrCodeNotNumeric, err.Code)
}

func TestCoerceBool(t *testing.T) {
	assert.False(t, CoerceBool(Empty{}))
	assert.True(t, CoerceBool(Bool(true)))
	assert.True(t, CoerceBool(Number(-1)))
	assert.False(t, CoerceBool(Number(0)))
	assert.True(t, CoerceBool(String("true")))
	assert.False(t, CoerceBool(String("FALSE")))
	assert.False(t, CoerceBool(String("0")))
	assert.True(t, CoerceBool(String("2")))
	// a non-empty unrecognized string is truthy
	assert.True(t, CoerceBool(String("maybe")))
	assert.False(t, CoerceBool(String("")))
}

func TestLiteralValue(t *testing.T) {
	assert.Equal(t, Empty{}, LiteralValue(""))
	assert.Equal(t, Number(3.5), LiteralValue("3.5"))
	assert.Equal(t, Bool(true), LiteralValue("true"))
	assert.Equal(t, Bool(false), LiteralValue("FALSE"))
	assert.Equal(t, String("hello"), LiteralValue("hello"))
}
