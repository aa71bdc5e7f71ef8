package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-finboard/pkg/jsonkit"
)

func TestFormatCellDecisionTable(t *testing.T) {
	cases := []struct {
		name string
		v    jsonkit.Value
		key  string
		want string
	}{
		{"null", jsonkit.NullValue(), "anything", "N/A"},
		{"bool true", jsonkit.BoolValue(true), "active", "Yes"},
		{"bool false", jsonkit.BoolValue(false), "active", "No"},
		{"price key", jsonkit.NumberValue(1234567.89), "currentPrice", "₹12,34,567.89"},
		{"gain key", jsonkit.NumberValue(100), "netGain", "₹100.00"},
		{"percent key", jsonkit.NumberValue(-2.5), "changePercent", "-2.50%"},
		{"change key positive", jsonkit.NumberValue(3), "net_change", "+3.00%"},
		{"plain number", jsonkit.NumberValue(150000), "volume", "1,50,000"},
		{"date string", jsonkit.StringValue("2024-03-05"), "listing_date", "5 Mar 2024"},
		{"plain string", jsonkit.StringValue("TCS"), "symbol", "TCS"},
		{"array", jsonkit.ArrayValue(jsonkit.NumberValue(1), jsonkit.NumberValue(2)), "points", "[2 items]"},
		{"object", jsonkit.NewObject(), "meta", "{...}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatCell(tc.v, tc.key))
		})
	}
}

func TestValueTone(t *testing.T) {
	assert.Equal(t, TonePositive, ValueTone(jsonkit.NumberValue(2), "percentChange"))
	assert.Equal(t, ToneNegative, ValueTone(jsonkit.NumberValue(-2), "net_change"))
	assert.Equal(t, ToneNeutral, ValueTone(jsonkit.NumberValue(0), "change"))
	assert.Equal(t, ToneNeutral, ValueTone(jsonkit.NumberValue(-2), "price"))
	assert.Equal(t, ToneNeutral, ValueTone(jsonkit.StringValue("-2"), "change"))
}

func mustParse(t *testing.T, raw string) jsonkit.Value {
	t.Helper()
	v, err := jsonkit.Parse([]byte(raw))
	require.NoError(t, err)
	return v
}
