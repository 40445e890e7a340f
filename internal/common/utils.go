package common

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ContentHash computes SHA256 hash of content and returns hex string.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

var markdownLinkPattern = regexp.MustCompile(`^!?\[.*?\]\((https?://[^\)\s]+)\)$`)

// SanitizeURL performs basic cleanup on URLs lifted out of chat text.
// Removes whitespace, trailing punctuation, markdown artifacts and wrapping brackets.
func SanitizeURL(rawURL string) string {
	cleaned := strings.TrimSpace(rawURL)

	// [text](url) or ![alt](url) -> url
	if matches := markdownLinkPattern.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = matches[1]
	}

	// Example: "https://example.com/a.png," -> "https://example.com/a.png"
	trailingChars := []string{",", ".", ")", "}", "]", "\"", "'", ">", ";"}
	for _, char := range trailingChars {
		cleaned = strings.TrimSuffix(cleaned, char)
	}

	// Example: "<https://example.com/a.png>" -> "https://example.com/a.png"
	leadingChars := []string{"(", "[", "<", "\"", "'"}
	for _, char := range leadingChars {
		cleaned = strings.TrimPrefix(cleaned, char)
	}

	// Spaces are not valid in a URL; encode the ones the model left in
	cleaned = strings.ReplaceAll(strings.TrimSpace(cleaned), " ", "%20")

	return cleaned
}

// Snippet shortens s to at most n runes with whitespace collapsed, appending
// an ellipsis when it cuts. n <= 0 disables truncation.
func Snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "…"
}
