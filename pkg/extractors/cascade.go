package extractors

import (
	"fmt"
	"strings"

	"github.com/dtnitsch/llm-chat-extractor/pkg/fields"
)

// attempt is one alternative in a cascade: it either finds a value in text or
// reports false.
type attempt[T any] func(text string) (T, bool)

// firstOf runs attempts in order and returns the first success.
func firstOf[T any](text string, attempts ...attempt[T]) (T, bool) {
	for _, try := range attempts {
		if v, ok := try(text); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// labelValue adapts a same-line label lookup to an attempt.
func labelValue(l *fields.Label) attempt[string] {
	return l.Value
}

// labelMultiLine adapts a multi-line label lookup to an attempt.
func labelMultiLine(l *fields.Label) attempt[string] {
	return func(text string) (string, bool) {
		v := l.MultiLineValue(text)
		return v, v != ""
	}
}

// guard runs fn and turns a panic into an error so one bad segment cannot
// take down the whole message.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// segmentBounds slices text into the spans between consecutive starts; the
// last span runs to the end of text.
func segmentBounds(starts []int, textLen int) [][2]int {
	bounds := make([][2]int, len(starts))
	for i, s := range starts {
		end := textLen
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		bounds[i] = [2]int{s, end}
	}
	return bounds
}

// stripBold removes markdown bold and italic markers.
func stripBold(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	return s
}
