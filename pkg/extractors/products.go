package extractors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dtnitsch/llm-chat-extractor/internal/common"
	"github.com/dtnitsch/llm-chat-extractor/models"
	"github.com/dtnitsch/llm-chat-extractor/pkg/fields"
)

// ProductResult is the output of the product engine.
type ProductResult struct {
	Products  []models.Product
	IntroText string
	OutroText string
	Drops     []models.Drop
}

var errNoTitle = errors.New("no title resolved")

const (
	capPhrase   = `([A-Z][\w'’&-]*(?:[ \t]+[A-Z][\w'’&-]*)*)`
	describedAs = `(?:is[ \t]+described[ \t]+as|is[ \t]+an?)\b`
)

var (
	// boundary is "N. **Heading**", the start of a product segment.
	boundary  = regexp.MustCompile(`\b\d{1,3}\.[ \t]*\*\*([^*\n]+)\*\*`)
	fieldLine = regexp.MustCompile(`(?m)^[ \t]*(?:[-*•][ \t]*)?(?:\*\*[^*\n]+\*\*[ \t]*:|\*\*[^*\n]+:[ \t]*\*\*|(?i:price|rating|reviews|in stock|availability|category)[ \t]*:)[^\n]*$`)

	headingTitle   = regexp.MustCompile(`^\s*\d{1,3}\.[ \t]*\*\*([^*\n]+)\*\*`)
	leadingTitle   = regexp.MustCompile(`^\s*(?:\d{1,3}\.[ \t]*)?(?:"([^"\n]+)"|“([^”\n]+)”|\*\*([^*\n]+)\*\*)`)
	quotedDescribe = regexp.MustCompile(`["“]([^"”\n]+)["”][ \t]+` + describedAs)
	leadingCapital = regexp.MustCompile(`^\s*(?:\d{1,3}\.[ \t]*)?` + capPhrase + `[ \t]+` + describedAs)
	viewingContext = regexp.MustCompile(`\b(?i:image of|view|see|shade)[ \t]+(?:(?i:the|this|our)[ \t]+)?` + capPhrase + `[^\[\n]{0,40}\[[^\]\n]*\]\(`)

	headingPrice  = regexp.MustCompile(`[$€£][ \t]*[\d,]+(?:\.\d+)?`)
	originalPrice = regexp.MustCompile(`(?i)\b(?:originally|was|regularly)[ \t]*(?:priced[ \t]*)?(?:at[ \t]*)?:?[ \t]*([$€£][ \t]*[\d,]+(?:\.\d+)?)`)
	reviewsParen  = regexp.MustCompile(`(?i)\([ \t]*([\d,]+)[ \t]*(?:reviews?|ratings?)[ \t]*\)`)
	reviewsPlain  = regexp.MustCompile(`(?i)\b([\d,]+)[ \t]+(?:customer[ \t]+)?reviews?\b`)
	outOfStock    = regexp.MustCompile(`(?i)\b(?:out of stock|sold out|unavailable)\b`)
	markdownLink  = regexp.MustCompile(`!?\[([^\]\n]*)\]\([^)\n]*\)`)
	anyBoldLabel  = regexp.MustCompile(`\*\*([^*\n]+?)[ \t]*:?[ \t]*\*\*[ \t]*:?[ \t]*([^\n]+)`)

	leadingVerb    = regexp.MustCompile(`(?i)^[ \t]*[-–—:,]?[ \t]*(?:is[ \t]+described[ \t]+as|described[ \t]+as|is[ \t]+an?|is)\b[ \t]*`)
	headingPrefix  = regexp.MustCompile(`^\s*\d{1,3}\.[ \t]*\*\*[^*\n]+\*\*[ \t]*[:\-–—]?`)
	interestClause = regexp.MustCompile(`(?is)\s*if[ \t]+you(?:'|’)?re[ \t]+(?:interested|seeing|looking|curious).*$`)

	labelPrice       = fields.NewLabel("Price")
	labelRating      = fields.NewLabel("Rating")
	labelInStock     = fields.NewLabel("In Stock")
	labelAvailable   = fields.NewLabel("Availability")
	labelCategory    = fields.NewLabel("Category")
	labelDescription = fields.NewLabel("Description")
)

// stopMarkers end a prose description: a sales pitch or the start of markup.
var stopMarkers = []string{"If you're", "If you’re", "If you are", "![", "["}

// knownLabels are bold labels that never hold a description.
var knownLabels = map[string]struct{}{
	"price": {}, "rating": {}, "in stock": {}, "availability": {}, "category": {},
	"reviews": {}, "originally": {}, "image": {}, "sale price": {}, "original price": {},
}

// ProductEngine extracts product cards from assistant text.
type ProductEngine struct {
	cfg models.ExtractConfig
}

func NewProductEngine(cfg models.ExtractConfig) *ProductEngine {
	def := models.DefaultExtractConfig()
	if cfg.DefaultPrice <= 0 {
		cfg.DefaultPrice = def.DefaultPrice
	}
	if cfg.DefaultRating <= 0 || cfg.DefaultRating > 5 {
		cfg.DefaultRating = def.DefaultRating
	}
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = def.DefaultCategory
	}
	return &ProductEngine{cfg: cfg}
}

// ExtractProducts runs a ProductEngine with the default configuration.
func ExtractProducts(text string) ProductResult {
	return NewProductEngine(models.DefaultExtractConfig()).Extract(text)
}

// Extract splits text on numbered bold headings and extracts one product per
// segment. Without headings, a message carrying an image is tried as a single
// product. Segments with no recoverable title are dropped.
func (e *ProductEngine) Extract(text string) (res ProductResult) {
	defer func() {
		if r := recover(); r != nil {
			res = ProductResult{
				IntroText: text,
				Drops:     []models.Drop{{Segment: -1, Reason: fmt.Sprintf("scan failed: %v", r), Text: text}},
			}
		}
	}()

	starts := boundaryStarts(text)
	if len(starts) == 0 {
		return e.extractSingle(text)
	}

	body, outro := splitOutro(text)
	res.OutroText = outro
	res.IntroText = strings.TrimSpace(body[:starts[0]])
	res.Products = make([]models.Product, 0, len(starts))

	for i, b := range segmentBounds(starts, len(body)) {
		seg := body[b[0]:b[1]]

		var p models.Product
		err := guard(func() error {
			var err error
			p, err = e.extractProduct(seg)
			return err
		})
		if err != nil {
			res.Drops = append(res.Drops, models.Drop{Segment: i, Reason: err.Error(), Text: seg})
			continue
		}
		res.Products = append(res.Products, p)
	}

	return res
}

// extractSingle treats the whole message as one product when it carries an
// image. The product's span is cut out so the surrounding prose becomes the
// intro and outro.
func (e *ProductEngine) extractSingle(text string) ProductResult {
	fallback := ProductResult{IntroText: strings.TrimSpace(text)}

	pic, ok := fields.FindPicture(text)
	if !ok {
		return fallback
	}

	var p models.Product
	err := guard(func() error {
		var err error
		p, err = e.extractProduct(text)
		return err
	})
	if err != nil {
		fallback.Drops = []models.Drop{{Segment: 0, Reason: err.Error(), Text: text}}
		return fallback
	}

	start, end := pic.Start, pic.End
	if i := indexFold(text, p.Title); i >= 0 && i < start {
		start = i
		if start > 0 && strings.ContainsRune(`"“*`, rune(text[start-1])) {
			start--
		}
	}
	if p.Description != "" {
		if i := strings.Index(text, p.Description); i >= 0 {
			start = min(start, i)
			end = max(end, i+len(p.Description))
		}
	}

	return ProductResult{
		Products:  []models.Product{p},
		IntroText: strings.TrimSpace(text[:start]),
		OutroText: strings.TrimSpace(text[end:]),
	}
}

func (e *ProductEngine) extractProduct(seg string) (models.Product, error) {
	title, ok := resolveTitle(seg)
	if !ok {
		return models.Product{}, errNoTitle
	}

	p := models.Product{
		ID:       ProductID(title),
		Title:    title,
		Price:    e.cfg.DefaultPrice,
		Rating:   e.cfg.DefaultRating,
		Category: e.cfg.DefaultCategory,
		InStock:  true,
	}

	if price, ok := firstOf(seg, labelledPrice, titleLinePrice); ok {
		p.Price = price
	}
	if m := originalPrice.FindStringSubmatch(seg); m != nil {
		if v := fields.ParsePrice(m[1]); v > 0 {
			p.OriginalPrice = &v
		}
	}
	if v, ok := labelRating.Value(seg); ok {
		if r := fields.ParsePrice(v); r > 0 && r <= 5 {
			p.Rating = r
		}
	}
	if n, ok := firstOf(seg, reviewCount(reviewsParen), reviewCount(reviewsPlain)); ok {
		p.ReviewCount = n
	}
	if v, ok := firstOf(seg, labelValue(labelInStock), labelValue(labelAvailable)); ok {
		p.InStock = parseAvailability(v, true)
	} else if outOfStock.MatchString(seg) {
		p.InStock = false
	}
	if v, ok := labelCategory.Value(seg); ok {
		p.Category = stripBold(v)
	}
	if pic, ok := fields.FindPicture(seg); ok {
		p.Image = common.SanitizeURL(pic.URL)
	}
	if desc, ok := resolveDescription(seg, title); ok {
		p.Description = desc
	}

	return p, nil
}

// ProductID derives a stable id from a title: lower-cased, whitespace runs
// replaced by a single hyphen.
func ProductID(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), "-")
}

// boundaryStarts returns the offsets of every "N. **Heading**" that is not a
// numbered field label such as "1. **Price:**".
func boundaryStarts(text string) []int {
	var starts []int
	for _, m := range boundary.FindAllStringSubmatchIndex(text, -1) {
		heading := strings.TrimSpace(text[m[2]:m[3]])
		if heading == "" || strings.HasSuffix(heading, ":") {
			continue
		}
		starts = append(starts, m[0])
	}
	return starts
}

// splitOutro separates closing prose after the last image or link. Trailing
// text that starts another numbered heading is product content, and so is
// any field line such as "**Price:** $5" that follows the last image.
func splitOutro(text string) (body, outro string) {
	last, ok := fields.LastLink(text)
	if !ok {
		return text, ""
	}
	cut := last.End
	trailing := text[cut:]
	if boundary.MatchString(trailing) {
		return text, ""
	}
	if locs := fieldLine.FindAllStringIndex(trailing, -1); len(locs) > 0 {
		cut += locs[len(locs)-1][1]
	}
	outro = strings.TrimSpace(text[cut:])
	if outro == "" {
		return text, ""
	}
	return text[:cut], outro
}

var titleAttempts = []attempt[string]{
	submatch(headingTitle),
	imageAlt,
	submatch(leadingTitle),
	submatch(quotedDescribe),
	submatch(leadingCapital),
	submatch(viewingContext),
}

func resolveTitle(seg string) (string, bool) {
	return firstOf(seg, titleAttempts...)
}

// submatch returns the first non-empty capture group of re as a title.
func submatch(re *regexp.Regexp) attempt[string] {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		for _, g := range m[min(1, len(m)):] {
			if t := cleanTitle(g); t != "" {
				return t, true
			}
		}
		return "", false
	}
}

func imageAlt(text string) (string, bool) {
	img, ok := fields.FindImage(text)
	if !ok {
		return "", false
	}
	alt := strings.TrimSpace(img.Text)
	for _, prefix := range []string{"image of ", "photo of ", "picture of "} {
		if len(alt) > len(prefix) && strings.EqualFold(alt[:len(prefix)], prefix) {
			alt = alt[len(prefix):]
		}
	}
	t := cleanTitle(alt)
	return t, t != ""
}

func cleanTitle(s string) string {
	s = markdownLink.ReplaceAllString(s, "$1")
	s = stripBold(s)
	s = strings.Trim(s, "\"“”'*:-–— \t")
	return fields.CollapseSpace(s)
}

func labelledPrice(seg string) (float64, bool) {
	v, ok := labelPrice.Value(seg)
	if !ok {
		return 0, false
	}
	p := fields.ParsePrice(v)
	return p, p > 0
}

// titleLinePrice finds a "$x" on the heading line itself, as in
// "1. **Lamp** - $20".
func titleLinePrice(seg string) (float64, bool) {
	line := strings.TrimSpace(seg)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if !headingTitle.MatchString(line) {
		return 0, false
	}
	p := fields.ParsePrice(headingPrice.FindString(line))
	return p, p > 0
}

func reviewCount(re *regexp.Regexp) attempt[int] {
	return func(text string) (int, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return 0, false
		}
		return fields.ParseCount(m[1]), true
	}
}

// parseAvailability maps Yes/No style answers to a boolean, returning def for
// anything it does not recognise.
func parseAvailability(v string, def bool) bool {
	v = strings.ToLower(stripBold(v))
	switch {
	case strings.HasPrefix(v, "yes"), strings.HasPrefix(v, "true"),
		strings.HasPrefix(v, "in stock"), strings.HasPrefix(v, "available"):
		return true
	case strings.HasPrefix(v, "no"), strings.HasPrefix(v, "false"),
		strings.HasPrefix(v, "out"), strings.HasPrefix(v, "sold out"), strings.HasPrefix(v, "unavailable"):
		return false
	}
	return def
}

// resolveDescription tries the explicit label, then prose about the title,
// then whatever follows an unrecognised bold label.
func resolveDescription(seg, title string) (string, bool) {
	attempts := []attempt[string]{labelMultiLine(labelDescription)}

	q := regexp.QuoteMeta(title)
	if quoted, err := regexp.Compile(`(?is)["“]` + q + `["”][ \t]+is[ \t]+described[ \t]+as[ \t]+(.+)`); err == nil {
		attempts = append(attempts, proseAfter(quoted))
	}
	if unquoted, err := regexp.Compile(`(?is)\b` + q + `\b[ \t]+(?:is[ \t]+described[ \t]+as|described[ \t]+as|is[ \t]+an?)[ \t]+(.+)`); err == nil {
		attempts = append(attempts, proseAfter(unquoted))
	}

	attempts = append(attempts,
		func(s string) (string, bool) { return leadingProse(s, title) },
		func(s string) (string, bool) { return unknownBoldLabel(s, title) },
	)
	return firstOf(seg, attempts...)
}

func proseAfter(re *regexp.Regexp) attempt[string] {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		d := cleanProse(cutAtStop(m[1]))
		return d, d != ""
	}
}

// leadingProse is the text before the first image or link, minus the
// heading, field lines, the title and any closing sales pitch.
func leadingProse(seg, title string) (string, bool) {
	pre := seg
	if l, ok := fields.FirstLink(seg); ok {
		pre = seg[:l.Start]
	}
	pre = headingPrefix.ReplaceAllString(pre, "")
	pre = fieldLine.ReplaceAllString(pre, "")
	pre = strings.TrimSpace(pre)
	pre = strings.TrimLeft(pre, "\"“”*")
	if len(pre) >= len(title) && strings.EqualFold(pre[:len(title)], title) {
		pre = pre[len(title):]
	}
	pre = strings.TrimLeft(pre, "\"“”* \t")
	pre = leadingVerb.ReplaceAllString(pre, "")
	pre = interestClause.ReplaceAllString(pre, "")

	d := cleanProse(pre)
	return d, d != ""
}

func unknownBoldLabel(seg, title string) (string, bool) {
	for _, m := range anyBoldLabel.FindAllStringSubmatch(seg, -1) {
		label := strings.ToLower(strings.TrimSpace(m[1]))
		if _, known := knownLabels[label]; known || strings.EqualFold(label, title) {
			continue
		}
		if d := cleanProse(cutAtStop(m[2])); d != "" {
			return d, true
		}
	}
	return "", false
}

// cutAtStop truncates s at the earliest stop marker.
func cutAtStop(s string) string {
	end := len(s)
	for _, marker := range stopMarkers {
		if i := strings.Index(s, marker); i >= 0 && i < end {
			end = i
		}
	}
	return s[:end]
}

func cleanProse(s string) string {
	s = stripBold(s)
	s = fields.CollapseSpace(s)
	return strings.Trim(s, " -–—:")
}

// indexFold is a case-insensitive strings.Index. When lower-casing changes
// byte lengths the offsets would not line up, so it falls back to an exact search.
func indexFold(s, substr string) int {
	if substr == "" {
		return -1
	}
	ls, lsub := strings.ToLower(s), strings.ToLower(substr)
	if len(ls) != len(s) || len(lsub) != len(substr) {
		return strings.Index(s, substr)
	}
	return strings.Index(ls, lsub)
}
