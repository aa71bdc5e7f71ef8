package jsonkit

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractChartTableCategoryArrays(t *testing.T) {
	v := mustParse(t, `{"gainers":[{"price":"12.5","name":"A"},{"price":13}],"meta":"x"}`)
	table := ExtractChartTable(v)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "Gainers 1", table.Records[0].Name)
	assert.Equal(t, "Gainers", table.Records[0].Category)
	assert.Equal(t, 12.5, table.Records[0].Values["price"])
	assert.Equal(t, []string{"price"}, table.Fields)
}

func TestExtractChartTableSkipsNonNumericCategoryItems(t *testing.T) {
	v := mustParse(t, `{"news":[{"title":"a"},{"title":"b","views":3}]}`)
	table := ExtractChartTable(v)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "News 2", table.Records[0].Name)
}

func TestExtractChartTableBareArrayCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < 60; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, `{"v":%d}`, i)
	}
	sb.WriteByte(']')

	table := ExtractChartTable(mustParse(t, sb.String()))
	assert.Len(t, table.Records, MaxChartRecords)
	assert.Equal(t, "Item 1", table.Records[0].Name)
	assert.Equal(t, 0.0, table.Records[0].Values["v"])
}

func TestExtractChartTableFieldCap(t *testing.T) {
	raw := `[{"f1":1,"f2":2,"f3":3,"f4":4,"f5":5,"f6":6,"f7":7,"f8":8,"f9":9,"f10":10}]`
	table := ExtractChartTable(mustParse(t, raw))
	assert.Len(t, table.Fields, MaxChartFields)
	assert.Equal(t, "f1", table.Fields[0])
}

func TestExtractChartTableScalarObject(t *testing.T) {
	v := mustParse(t, `{"a":1,"b":{"c":2,"d":"text"}}`)
	table := ExtractChartTable(v)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "A", table.Records[0].Name)
	assert.Equal(t, 1.0, table.Records[0].Values["value"])
	assert.Equal(t, "B - C", table.Records[1].Name)
	assert.Equal(t, 2.0, table.Records[1].Values["value"])
	assert.Equal(t, []string{"value"}, table.Fields)
}

func TestExtractChartTableScalarPointCap(t *testing.T) {
	obj := NewObject()
	for i := 0; i < 30; i++ {
		obj.Set(fmt.Sprintf("k%02d", i), NumberValue(float64(i)))
	}
	table := ExtractChartTable(obj)
	assert.Len(t, table.Records, MaxScalarPoints)
}

func TestExtractChartTableEmptyCases(t *testing.T) {
	assert.True(t, ExtractChartTable(StringValue("hi")).Empty())
	assert.True(t, ExtractChartTable(mustParse(t, `{"name":"TCS","desc":"IT"}`)).Empty())
	assert.True(t, ExtractChartTable(NullValue()).Empty())
}

func TestNumericPointsIgnoresStringsAndArrays(t *testing.T) {
	v := mustParse(t, `{"a":"5","b":[1,2],"c":3}`)
	points := NumericPoints(v)
	require.Len(t, points, 1)
	assert.Equal(t, "c", points[0].Key)
}
