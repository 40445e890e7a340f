// Package detector decides whether an assistant message lists orders,
// lists products, or is plain text.
package detector

import (
	"regexp"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/dtnitsch/llm-chat-extractor/models"
	"github.com/dtnitsch/llm-chat-extractor/pkg/fields"
)

// Signal names reported in Detection.Signals.
const (
	SignalOrderNumber          = "order_number_label"
	SignalOrderKeyword         = "order_keyword"
	SignalStructuralLabel      = "structural_label"
	SignalPriceRating          = "price_rating_labels"
	SignalNumberedHeadingImage = "numbered_heading_with_image"
	SignalImageDescription     = "image_with_description"
)

// Detection is the classification of one message plus the signals behind it.
type Detection struct {
	Kind    models.ContentKind `json:"kind" yaml:"kind"`
	Signals []string           `json:"signals" yaml:"signals"`
}

type phraseKind int

const (
	phraseOrderNumber phraseKind = iota
	phraseOrderKeyword
	phraseStructural
)

// phrases are matched against the lower-cased message in a single pass.
var phrases = []struct {
	text string
	kind phraseKind
}{
	{"order number", phraseOrderNumber},
	{"recent orders", phraseOrderKeyword},
	{"past orders", phraseOrderKeyword},
	{"your orders", phraseOrderKeyword},
	{"status", phraseStructural},
	{"items", phraseStructural},
	{"subtotal", phraseStructural},
}

var (
	matcher = newMatcher()

	priceLabel  = fields.NewLabel("Price")
	ratingLabel = fields.NewLabel("Rating")

	numberedHeadingImage = regexp.MustCompile(`(?s)\d\.[ \t]*\*\*[^*\n]+\*\*.*?!\[[^\]\n]*\]\(`)
	describedAs          = regexp.MustCompile(`(?i)\b(?:is described as|described as|is an?)\s`)
)

func newMatcher() *ahocorasick.Matcher {
	dict := make([]string, len(phrases))
	for i, p := range phrases {
		dict[i] = p.text
	}
	return ahocorasick.NewStringMatcher(dict)
}

// Classify returns the content kind of text. It is a pure function of text.
func Classify(text string) models.ContentKind {
	return Analyze(text).Kind
}

// Analyze classifies text. Order signals are checked before product signals
// because order listings routinely carry price-like tokens.
func Analyze(text string) *Detection {
	d := &Detection{Kind: models.ContentText, Signals: []string{}}
	if strings.TrimSpace(text) == "" {
		return d
	}

	var orderNumber, orderKeyword, structural bool
	for _, idx := range matcher.MatchThreadSafe([]byte(strings.ToLower(text))) {
		switch phrases[idx].kind {
		case phraseOrderNumber:
			orderNumber = true
		case phraseOrderKeyword:
			orderKeyword = true
		case phraseStructural:
			structural = true
		}
	}

	if orderNumber {
		d.Signals = append(d.Signals, SignalOrderNumber)
	}
	if orderKeyword && structural {
		d.Signals = append(d.Signals, SignalOrderKeyword, SignalStructuralLabel)
	}
	if len(d.Signals) > 0 {
		d.Kind = models.ContentOrders
		return d
	}

	if priceLabel.Present(text) && ratingLabel.Present(text) {
		d.Signals = append(d.Signals, SignalPriceRating)
	}
	if numberedHeadingImage.MatchString(text) {
		d.Signals = append(d.Signals, SignalNumberedHeadingImage)
	}
	if fields.HasPicture(text) && describedAs.MatchString(text) {
		d.Signals = append(d.Signals, SignalImageDescription)
	}
	if len(d.Signals) > 0 {
		d.Kind = models.ContentProducts
	}

	return d
}
