package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedKeysRFC8785Order(t *testing.T) {
	obj := Object{"b": Int(1), "a": Int(2), "aa": Int(3)}
	assert.Equal(t, []string{"a", "aa", "b"}, obj.SortedKeys())
}

func TestCompareKeysRFC8785(t *testing.T) {
	assert.Equal(t, 0, compareKeysRFC8785("x", "x"))
	assert.Equal(t, -1, compareKeysRFC8785("a", "ab"))
	assert.Equal(t, 1, compareKeysRFC8785("\uE000", "\U00010000"))
}

func TestObjectJSONRoundTrip(t *testing.T) {
	in := Object{
		"at":      Coord(2, 0),
		"kind":    String("C"),
		"matched": Bool(false),
		"nested":  Array{Object{"n": Int(-7)}},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `{"at":[2,0],"kind":"C","matched":false,"nested":[{"n":-7}]}`, string(data))

	var out Object
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestUnmarshalValueRejects(t *testing.T) {
	_, err := UnmarshalValue([]byte(`{"x":1.5}`))
	assert.ErrorContains(t, err, "float")
	_, err = UnmarshalValue([]byte(`{"x":null}`))
	assert.ErrorContains(t, err, "null")
	_, err = UnmarshalValue([]byte(`1e3`))
	assert.Error(t, err)

	var obj Object
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &obj))
}

func TestObjectGetters(t *testing.T) {
	obj := Object{"n": Int(4), "s": String("x")}
	n, ok := obj.GetInt("n")
	assert.True(t, ok)
	assert.Equal(t, 4, n)
	_, ok = obj.GetInt("s")
	assert.False(t, ok)
	s, ok := obj.GetString("s")
	assert.True(t, ok)
	assert.Equal(t, "x", s)
}
