// Package views turns raw widget payloads into presentation models. Each
// strategy (card, table, chart) derives its own working shape from the
// payload on every render; nothing derived is shared across strategies.
package views

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-finboard/pkg/format"
	"github.com/goliatone/go-finboard/pkg/jsonkit"
)

// Tone classifies a value for presentation emphasis.
type Tone uint8

const (
	ToneNeutral Tone = iota
	TonePositive
	ToneNegative
)

// FormatCell renders a payload value for display. The field name steers
// numeric presentation: price/amount/gain keys render as currency,
// percent/change keys as signed percentages, everything else as a grouped
// number. Strings with a YYYY-MM-DD prefix render as dates. Missing values
// and nulls render as "N/A".
func FormatCell(v jsonkit.Value, key string) string {
	switch v.Kind() {
	case jsonkit.Null:
		return "N/A"
	case jsonkit.Bool:
		if v.Bool() {
			return "Yes"
		}
		return "No"
	case jsonkit.Number:
		return formatNumeric(v.Float(), key)
	case jsonkit.String:
		s := v.Str()
		if format.LooksLikeDate(s) {
			return format.Date(s)
		}
		return s
	case jsonkit.Array:
		return fmt.Sprintf("[%d items]", v.Len())
	default:
		return "{...}"
	}
}

func formatNumeric(f float64, key string) string {
	k := strings.ToLower(key)
	switch {
	case strings.Contains(k, "price") || strings.Contains(k, "amount") || strings.Contains(k, "gain"):
		return format.Currency(f)
	case strings.Contains(k, "percent") || strings.Contains(k, "change"):
		return format.Percent(f)
	default:
		return format.Number(f)
	}
}

// ValueTone classifies change-like numeric values so views can color them.
func ValueTone(v jsonkit.Value, key string) Tone {
	if v.Kind() != jsonkit.Number {
		return ToneNeutral
	}
	k := strings.ToLower(key)
	if !strings.Contains(k, "change") && !strings.Contains(k, "gain") && !strings.Contains(k, "percent") {
		return ToneNeutral
	}
	switch {
	case v.Float() > 0:
		return TonePositive
	case v.Float() < 0:
		return ToneNegative
	default:
		return ToneNeutral
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
