package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortedKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"b": int64(2), "a": int64(1)})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical("a <b> & c")
	require.NoError(t, err)
	assert.Equal(t, `"a <b> & c"`, string(got))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// U+0065 U+0301 (e + combining acute) normalizes to U+00E9.
	decomposed, err := MarshalCanonical("café")
	require.NoError(t, err)
	composed, err := MarshalCanonical("café")
	require.NoError(t, err)
	assert.Equal(t, string(composed), string(decomposed))
}

func TestMarshalCanonical_NullAndFloats(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"a": nil, "b": 1.5, "c": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, `{"a":null,"b":1.5,"c":3}`, string(got))
}

func TestCanonicalEqual_IgnoresKeyOrderAndIntWidth(t *testing.T) {
	a := Payload{"x": int64(1), "y": "s"}
	b := map[string]any{"y": "s", "x": 1}
	assert.True(t, CanonicalEqual(a, b))
	assert.False(t, CanonicalEqual(a, map[string]any{"x": int64(2), "y": "s"}))
}

func TestMarshalCanonical_NestedArrays(t *testing.T) {
	got, err := MarshalCanonical([]any{"a", map[string]any{"k": true}, nil})
	require.NoError(t, err)
	assert.Equal(t, `["a",{"k":true},null]`, string(got))
}
