// Package currency converts between raw numeric amounts and the grouped
// display strings rendered on price and amount fields. Submitted values must
// always be the unformatted numeric form, never the display string.
package currency

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultCode is the currency code used when none is configured.
const DefaultCode = "UGX"

// labeledAmountPattern matches a "CODE digits-with-optional-commas" sequence
// embedded in rendered text, e.g. "Mahogany (UGX 25,000)".
var labeledAmountPattern = regexp.MustCompile(`([A-Z]{3})\s([0-9][0-9,]*)`)

// displayAmountPattern matches the first bare digit run (with optional
// grouping) in a rendered total such as "UGX 4,050".
var displayAmountPattern = regexp.MustCompile(`[0-9][0-9,]*`)

// StripGrouping removes the separators used for digit grouping.
func StripGrouping(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, " ", "")
}

// Parse interprets a field value as a whole currency amount. Grouping
// separators are stripped first. Unparseable values and amounts of zero or
// less report ok=false; the caller clears the field in that case.
func Parse(s string) (int64, bool) {
	clean := strings.TrimSpace(StripGrouping(s))
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return int64(math.Round(v)), true
}

// Format renders an amount with digits grouped in threes: 4050 -> "4,050".
func Format(n int64) string {
	neg := n < 0
	s := strconv.FormatInt(n, 10)
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		return "-" + out
	}
	return out
}

// FormatWithCode renders an amount with its currency prefix: "UGX 4,050".
func FormatWithCode(code string, n int64) string {
	if code == "" {
		code = DefaultCode
	}
	return fmt.Sprintf("%s %s", code, Format(n))
}

// ParseDisplay extracts the numeric amount from a rendered display string
// such as "UGX 4,050". Missing digits report ok=false.
func ParseDisplay(s string) (int64, bool) {
	match := displayAmountPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(StripGrouping(match), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ExtractAmount pulls a labeled currency amount out of free text, such as a
// variant option label "Mahogany 2x4 (UGX 25,000)". Extraction is best
// effort: absent or malformed labels report ok=false without error.
func ExtractAmount(label string) (code string, amount int64, ok bool) {
	m := labeledAmountPattern.FindStringSubmatch(label)
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.ParseInt(StripGrouping(m[2]), 10, 64)
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}

// IsAmountField reports whether a form field carries a currency amount, by
// the naming convention the rendered forms use.
func IsAmountField(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "price") || strings.Contains(lower, "amount")
}

// NormalizeForm restores every amount-bearing field in a submitted payload to
// its raw numeric value, stripping display formatting. Invalid or
// non-positive amounts are cleared. Negative values in other numeric fields
// are cleared as well; non-numeric fields pass through untouched.
func NormalizeForm(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for name, vals := range values {
		normalized := make([]string, len(vals))
		for i, v := range vals {
			normalized[i] = normalizeValue(name, v)
		}
		out[name] = normalized
	}
	return out
}

func normalizeValue(name, v string) string {
	if IsAmountField(name) {
		n, ok := Parse(v)
		if !ok {
			return ""
		}
		return strconv.FormatInt(n, 10)
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f < 0 {
		return ""
	}
	return v
}
