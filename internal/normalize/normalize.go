// Package normalize holds the pure value-conversion routines used by the
// entity transformers: raw CSV strings in, typed values (or nil) out.
//
// Every function here is total except ParseDate, which reports an error for
// unparseable non-empty input. Conversions never panic; inputs that cannot be
// converted yield nil so the caller's validation stage can decide whether
// that matters.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser is safe to share: cases.Caser values from cases.Title are
// stateless for the usage here.
var titleCaser = cases.Title(language.English)

// Boolean maps common textual representations to a bool. Recognized truthy
// values: true, 1, yes, y, on. Recognized falsy: false, 0, no, n, off, and
// the empty string. Anything else falls back to generic truthiness (non-empty
// means true), mirroring the loose inputs seen in real export files.
func Boolean(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on":
		return true
	case "false", "0", "no", "n", "off", "":
		return false
	default:
		return s != ""
	}
}

// dateLayouts are attempted in order before the lenient fallbacks. The US
// month-first layout precedes day-first, so an ambiguous "03/04/2024" parses
// as March 4th; day-first only wins when month-first cannot parse (day > 12).
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
}

// lenientLayouts are the fallback formats for inputs outside the exact list.
var lenientLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// ParseDate normalizes a date string to ISO "2006-01-02". Empty input is not
// an error: it returns ("", nil) so optional date fields stay null. Inputs
// that match none of the known layouts return an error for the caller to
// accumulate as a validation message.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	for _, layout := range lenientLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("could not parse date: %s", s)
}

// Integer converts a numeric string to an int, truncating any fractional
// part. Empty or non-numeric input yields nil (the literal "0" is zero, not
// nil).
func Integer(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return nil
}

// Float converts a numeric string to a float64; empty or non-numeric input
// yields nil.
func Float(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return nil
}

// Currency strips "$" and "," before converting, so "$1,234.50" becomes
// 1234.5. Empty or non-numeric input yields nil.
func Currency(s string) any {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	return Float(cleaned)
}

// Trim returns the value with surrounding whitespace removed.
func Trim(s string) string { return strings.TrimSpace(s) }

// TitleCase lowercases then title-cases each word ("new york" -> "New York").
func TitleCase(s string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(s)))
}

// Capitalize lowercases then uppercases only the first rune
// ("PREMIUM" -> "Premium").
func Capitalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Lower lowercases the trimmed value; used for emails.
func Lower(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
