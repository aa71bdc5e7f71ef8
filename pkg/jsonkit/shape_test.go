package jsonkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) Value {
	t.Helper()
	v, err := Parse([]byte(raw))
	require.NoError(t, err)
	return v
}

func TestFields(t *testing.T) {
	t.Run("array defers to first element", func(t *testing.T) {
		v := mustParse(t, `[{"symbol":"TCS","price":10},{"symbol":"INFY"}]`)
		assert.Equal(t, []string{"symbol", "price"}, Fields(v))
	})
	t.Run("object keys in order", func(t *testing.T) {
		v := mustParse(t, `{"z":1,"a":2}`)
		assert.Equal(t, []string{"z", "a"}, Fields(v))
	})
	t.Run("empty array and primitives", func(t *testing.T) {
		assert.Nil(t, Fields(mustParse(t, `[]`)))
		assert.Nil(t, Fields(StringValue("x")))
	})
}

func TestFlattenOneLevelOnly(t *testing.T) {
	v := mustParse(t, `{"a":1,"b":{"c":2,"d":{"e":3}}}`)
	flat := Flatten(v)
	assert.Equal(t, []string{"a", "b.c"}, flat.Keys())
	member, _ := flat.Get("b.c")
	assert.Equal(t, 2.0, member.Float())
}

func TestFlattenDropsArraysKeepsNull(t *testing.T) {
	v := mustParse(t, `{"tags":["a"],"info":{"list":[1],"note":null},"x":true}`)
	flat := Flatten(v)
	assert.Equal(t, []string{"info.note", "x"}, flat.Keys())
	note, ok := flat.Get("info.note")
	require.True(t, ok)
	assert.True(t, note.IsNull())
}

func TestFlattenPassesThroughNonObjects(t *testing.T) {
	arr := mustParse(t, `[1,2]`)
	assert.Equal(t, arr.String(), Flatten(arr).String())
}

func TestCategorizeObjectWithArrays(t *testing.T) {
	v := mustParse(t, `{"total":5,"gainers":[{"s":"A"},{"s":"B"}],"losers":[{"s":"C"}]}`)
	set := Categorize(v)
	require.True(t, set.Tagged)
	assert.Equal(t, []CategoryCount{{Name: "gainers", Count: 2}, {Name: "losers", Count: 1}}, set.Categories)
	require.Len(t, set.Rows, 3)

	cat, ok := set.Rows[0].Get(CategoryKey)
	require.True(t, ok)
	assert.Equal(t, "Gainers", cat.Str())
	cat, _ = set.Rows[2].Get(CategoryKey)
	assert.Equal(t, "Losers", cat.Str())
}

func TestCategorizeArrayVerbatim(t *testing.T) {
	v := mustParse(t, `[{"a":1},{"a":2}]`)
	set := Categorize(v)
	assert.False(t, set.Tagged)
	assert.Len(t, set.Rows, 2)
	_, ok := set.Rows[0].Get(CategoryKey)
	assert.False(t, ok)
}

func TestCategorizePlainObjectSingleRow(t *testing.T) {
	v := mustParse(t, `{"price":10,"name":"TCS"}`)
	set := Categorize(v)
	assert.False(t, set.Tagged)
	require.Len(t, set.Rows, 1)
	assert.Equal(t, v.String(), set.Rows[0].String())
}

func TestCategorizeIgnoresEmptyArrays(t *testing.T) {
	v := mustParse(t, `{"gainers":[],"price":10}`)
	set := Categorize(v)
	assert.False(t, set.Tagged)
	assert.Len(t, set.Rows, 1)
}
