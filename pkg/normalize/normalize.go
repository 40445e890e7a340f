// Package normalize turns HTML-flavoured assistant messages into the markdown
// convention the extractors read.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

var htmlTag = regexp.MustCompile(`(?i)</?(?:p|div|br|span|strong|b|em|i|img|ul|ol|li|h[1-6]|a|table|tr|td|section|article)\b[^>\n]{0,512}>`)

// noise never carries message content.
const noise = "script, style, noscript, iframe, template"

// LooksLikeHTML reports whether text contains at least one common HTML tag.
func LooksLikeHTML(text string) bool {
	return htmlTag.MatchString(text)
}

// Markdown converts text to markdown when it looks like HTML. Other input is
// returned unchanged.
func Markdown(text string) (string, error) {
	if !LooksLikeHTML(text) {
		return text, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	doc.Find(noise).Remove()

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}

	md, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return "", fmt.Errorf("failed to convert html: %w", err)
	}
	return strings.TrimSpace(md), nil
}
