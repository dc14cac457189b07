package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueKinds(t *testing.T) {
	require.Equal(t, KindNull, Null().Kind())
	require.Equal(t, KindNumber, Number(4.5).Kind())
	require.Equal(t, KindNumber, Int(4).Kind())
	require.Equal(t, KindBool, Bool(true).Kind())
	require.Equal(t, KindString, String("seven").Kind())
	require.Equal(t, KindList, List(Int(1), Int(2)).Kind())

	var zero Value
	require.True(t, zero.IsNull(), "zero Value must be null")
}

func TestBoolIsNotNumber(t *testing.T) {
	// The validator depends on bool and number being distinct classifications.
	require.NotEqual(t, Bool(true).Kind(), Int(1).Kind())
}

func TestFromAnyNumericWidening(t *testing.T) {
	for _, raw := range []any{5, int64(5), uint8(5), float32(5), 5.0} {
		value, err := FromAny(raw)
		require.NoError(t, err)
		require.Equal(t, KindNumber, value.Kind())
		num, ok := value.AsNumber()
		require.True(t, ok)
		require.Equal(t, 5.0, num)
	}
}

func TestFromAnyRejectsUnsupported(t *testing.T) {
	_, err := FromAny(map[string]int{"a": 1})
	require.Error(t, err)
}

func TestValueJSONRoundTrip(t *testing.T) {
	original := List(Int(5), String("seven"), Bool(false), Null())
	data, err := original.MarshalJSON()
	require.NoError(t, err)

	var decoded Value
	require.NoError(t, decoded.UnmarshalJSON(data))
	require.Equal(t, KindList, decoded.Kind())
	elems, _ := decoded.AsList()
	require.Len(t, elems, 4)
	require.Equal(t, KindNumber, elems[0].Kind())
	require.Equal(t, KindString, elems[1].Kind())
	require.Equal(t, KindBool, elems[2].Kind())
	require.True(t, elems[3].IsNull())
}

func TestKindString(t *testing.T) {
	require.Equal(t, "number", KindNumber.String())
	require.Equal(t, "str", KindString.String())
	require.Equal(t, "list", KindList.String())
	require.Equal(t, "null", KindNull.String())
}
