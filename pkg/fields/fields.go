// Package fields holds the label and currency primitives shared by the order
// and product extractors. Every lookup tries a fixed list of patterns in order
// and reports "not found" instead of failing.
package fields

import (
	"regexp"
	"strconv"
	"strings"
)

// Label is a precompiled field label such as "Price" or "Order Number".
// Matching is case-insensitive; a Label is immutable and safe to share.
type Label struct {
	name string

	// value patterns, same line only: **L:** v, L: v, **L** v, L v
	values []*regexp.Regexp

	// header patterns for multi-line values, same order as values
	headers []*regexp.Regexp
}

// NewLabel compiles the four label shapes for name.
// Spaces inside name match any run of spaces or tabs.
func NewLabel(name string) *Label {
	q := strings.ReplaceAll(regexp.QuoteMeta(strings.TrimSpace(name)), " ", `[ \t]+`)

	return &Label{
		name: name,
		values: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\*\*` + q + `[ \t]*:[ \t]*\*\*[ \t]*(.+)`),
			regexp.MustCompile(`(?i)\b` + q + `[ \t]*:[ \t]*(.+)`),
			regexp.MustCompile(`(?i)\*\*` + q + `\*\*[ \t]*:?[ \t]*(.+)`),
			regexp.MustCompile(`(?i)\b` + q + `\b[ \t]+(.+)`),
		},
		headers: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\*\*` + q + `[ \t]*:[ \t]*\*\*`),
			regexp.MustCompile(`(?i)\*\*` + q + `\*\*[ \t]*:?`),
			regexp.MustCompile(`(?i)\b` + q + `[ \t]*:`),
			regexp.MustCompile(`(?i)\b` + q + `\b`),
		},
	}
}

// Name returns the label text NewLabel was given.
func (l *Label) Name() string {
	return l.name
}

// Value returns the trimmed text following the label on the same line.
func (l *Label) Value(text string) (string, bool) {
	for _, re := range l.values {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v := cleanValue(m[1]); v != "" {
			return v, true
		}
	}
	return "", false
}

// MultiLineValue returns the text following the label up to the next bold
// marker or the end of text, with whitespace runs collapsed. It returns ""
// when the label is absent.
func (l *Label) MultiLineValue(text string) string {
	for _, re := range l.headers {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		rest := text[loc[1]:]
		if i := strings.Index(rest, "**"); i >= 0 {
			rest = rest[:i]
		}
		if v := cleanValue(CollapseSpace(rest)); v != "" {
			return v
		}
	}
	return ""
}

// Span returns the byte offsets of the first labelled header in text. Only the
// bold and colon shapes count; a bare word is not a header.
func (l *Label) Span(text string) (start, end int, ok bool) {
	best := []int(nil)
	for _, re := range l.headers[:3] {
		if loc := re.FindStringIndex(text); loc != nil && (best == nil || loc[0] < best[0]) {
			best = loc
		}
	}
	if best == nil {
		return 0, 0, false
	}
	return best[0], best[1], true
}

// Present reports whether text carries the label in a bold or colon shape.
func (l *Label) Present(text string) bool {
	_, _, ok := l.Span(text)
	return ok
}

// ExtractField is the one-shot form of NewLabel(label).Value(text).
func ExtractField(text, label string) (string, bool) {
	return NewLabel(label).Value(text)
}

// ExtractMultiLineField is the one-shot form of NewLabel(label).MultiLineValue(text).
func ExtractMultiLineField(text, label string) string {
	return NewLabel(label).MultiLineValue(text)
}

// HasLabel is the one-shot form of NewLabel(label).Present(text).
func HasLabel(text, label string) bool {
	return NewLabel(label).Present(text)
}

const currencySymbols = "$€£¥"

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	leadingNum = regexp.MustCompile(`^(?:\d+(?:\.\d*)?|\.\d+)`)
)

// CollapseSpace replaces every whitespace run with a single space and trims.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// ParsePrice reads a currency amount such as "$1,234.50". Leading currency
// symbols and digit grouping commas are ignored and trailing text after the
// number is discarded. Empty or unparsable input yields 0.
func ParsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "*: ")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "USD"), "US")
	s = strings.TrimLeft(s, currencySymbols+" ")
	s = strings.ReplaceAll(s, ",", "")

	num := leadingNum.FindString(s)
	if num == "" {
		return 0
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseCount reads a leading integer such as "1,204", returning 0 when absent.
func ParseCount(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// cleanValue trims whitespace and stray bold markers around a captured value.
func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "*: \t")
	s = strings.TrimRight(s, "* \t")
	return strings.TrimSpace(s)
}
