// Package format holds the display formatting primitives shared by every
// widget view: human labels derived from machine field names, and Indian
// locale renderings of money, percentages, counts, and dates.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var enIN = message.NewPrinter(language.MustParse("en-IN"))

// Key turns a machine field name such as "changePercent" or "company_name"
// into a display label ("Change Percent", "Company Name"). A space is
// inserted before every upper-case ASCII letter, underscores become spaces,
// and each resulting word is title-cased. Already-spaced labels with
// multi-letter acronyms ("BSE Price") do not round-trip unchanged; callers
// must keep the raw key for lookups and use the result for display only.
func Key(key string) string {
	var spaced strings.Builder
	spaced.Grow(len(key) + 4)
	for _, r := range key {
		if r >= 'A' && r <= 'Z' {
			spaced.WriteByte(' ')
		}
		if r == '_' {
			r = ' '
		}
		spaced.WriteRune(r)
	}
	words := strings.Fields(spaced.String())
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}

// Currency renders v as Indian rupees with en-IN digit grouping and exactly
// two fraction digits, e.g. 1234567.891 -> "₹12,34,567.89", 100 -> "₹100.00".
func Currency(v float64) string {
	return enIN.Sprintf("₹%v", number.Decimal(v,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// Number renders v with en-IN digit grouping and at most two fraction digits.
func Number(v float64) string {
	return enIN.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(2)))
}

// Percent renders v with exactly two decimals and a trailing percent sign.
// Positive values carry an explicit leading "+"; zero carries no sign.
func Percent(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// Compact renders large values using Indian magnitude suffixes:
// crores (Cr), lakhs (L), and thousands (K).
func Compact(v float64) string {
	switch {
	case v >= 1e7:
		return fmt.Sprintf("%.2f Cr", v/1e7)
	case v >= 1e5:
		return fmt.Sprintf("%.2f L", v/1e5)
	case v >= 1e3:
		return fmt.Sprintf("%.2f K", v/1e3)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date parses date-like strings (anything starting with YYYY-MM-DD) and
// reformats them as a medium date, with the time of day when one is present.
// Strings that fail to parse are returned unchanged.
func Date(s string) string {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2 Jan 2006")
		}
		return t.Format("2 Jan 2006, 3:04 pm")
	}
	return s
}

// LooksLikeDate reports whether s begins with a YYYY-MM-DD prefix.
func LooksLikeDate(s string) bool {
	if len(s) < 10 {
		return false
	}
	for i := 0; i < 10; i++ {
		c := s[i]
		if i == 4 || i == 7 {
			if c != '-' {
				return false
			}
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
