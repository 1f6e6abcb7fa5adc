package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareTagOrder(t *testing.T) {
	values := []Value{
		Null,
		Bool(true),
		Number(1),
		String("a"),
		FromAny([]any{1.0}),
		FromAny(map[string]any{"a": 1.0}),
	}
	for i := 0; i < len(values); i++ {
		for j := i + 1; j < len(values); j++ {
			assert.True(t, Compare(values[i], values[j]) < 0, "expected %v < %v", values[i].Tag(), values[j].Tag())
		}
	}
}

func TestCompareNumbers(t *testing.T) {
	assert.True(t, Compare(Number(1), Number(2)) < 0)
	assert.True(t, Compare(Number(2), Number(1)) > 0)
	assert.Equal(t, 0, Compare(Number(1), Number(1)))
}

func TestCompareNaN(t *testing.T) {
	nan := Number(math.NaN())
	assert.Equal(t, 0, Compare(nan, nan), "NaN must equal itself")
	assert.True(t, Compare(Number(1e300), nan) < 0, "NaN sorts after every other number")
}

func TestCompareStrings(t *testing.T) {
	assert.True(t, Compare(String("a"), String("b")) < 0)
	assert.Equal(t, 0, Compare(String("x"), String("x")))
}

func TestCompareArrays(t *testing.T) {
	a := FromAny([]any{1.0, 2.0})
	b := FromAny([]any{1.0, 3.0})
	c := FromAny([]any{1.0})
	assert.True(t, Compare(a, b) < 0)
	assert.True(t, Compare(c, a) < 0, "shorter prefix sorts first")
}

func TestCompareObjectsKeyOrderIndependent(t *testing.T) {
	a := FromAny(map[string]any{"a": 1.0, "b": 2.0})
	b := FromAny(map[string]any{"b": 2.0, "a": 1.0})
	assert.Equal(t, 0, Compare(a, b))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Number(1), Number(1)))
	assert.False(t, Equal(Number(1), Number(2)))
	assert.True(t, Equal(Null, Null))
}

func TestJSONRoundTrip(t *testing.T) {
	v, err := FromJSON([]byte(`{"a":[1,2,"x"],"b":null}`))
	require.NoError(t, err)
	b, err := v.MarshalJSON()
	require.NoError(t, err)

	var v2 Value
	require.NoError(t, v2.UnmarshalJSON(b))
	assert.True(t, Equal(v, v2))
}

func TestCanonicalBytesDeterministic(t *testing.T) {
	a := FromAny(map[string]any{"a": 1.0, "b": []any{1.0, "x"}})
	b := FromAny(map[string]any{"b": []any{1.0, "x"}, "a": 1.0})
	assert.Equal(t, CanonicalBytes(a), CanonicalBytes(b), "canonical bytes must not depend on object key order")
}

func TestCanonicalBytesDistinguishesValues(t *testing.T) {
	assert.NotEqual(t, CanonicalBytes(Number(1)), CanonicalBytes(Number(2)))
	assert.NotEqual(t, CanonicalBytes(String("1")), CanonicalBytes(Number(1)), "distinct tags must never collide")
}

func TestGobRoundTrip(t *testing.T) {
	v, err := FromJSON([]byte(`{"x":[true,false,null,1.5]}`))
	require.NoError(t, err)

	b, err := v.GobEncode()
	require.NoError(t, err)

	var v2 Value
	require.NoError(t, v2.GobDecode(b))
	assert.True(t, Equal(v, v2))
}
