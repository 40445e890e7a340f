package extractors

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dtnitsch/llm-chat-extractor/models"
	"github.com/dtnitsch/llm-chat-extractor/pkg/fields"
)

// OrderResult is the output of the order engine. Drops lists the segments and
// item lines that were skipped; it never influences Orders.
type OrderResult struct {
	Orders    []models.Order
	IntroText string
	Drops     []models.Drop
}

var errMissingOrderNumber = errors.New("missing order number")

var (
	orderMarker = regexp.MustCompile(`(?i)(?:\d+\.[ \t]*)?(?:(?:\*\*)?order[ \t]+number(?:\*\*)?[ \t]*:|\*\*order[ \t]+number\*\*[ \t]+[^\s*:])`)
	itemsEnd    = regexp.MustCompile(`(?im)^[ \t]*(?:\*\*)?(?:subtotal|total)\b`)
	listMarker  = regexp.MustCompile(`^(?:[-•+]|\*[ \t])[ \t]*`)

	labelOrderNumber = fields.NewLabel("Order Number")
	labelItems       = fields.NewLabel("Items")
	labelSubtotal    = fields.NewLabel("Subtotal")
	labelTax         = fields.NewLabel("Tax")
	labelTotal       = fields.NewLabel("Total")

	statusAttempts = []attempt[string]{
		labelValue(fields.NewLabel("Status")),
		labelValue(fields.NewLabel("Order Status")),
	}
	dateAttempts = []attempt[string]{
		labelValue(fields.NewLabel("Order Date")),
		labelValue(fields.NewLabel("Date Placed")),
		labelValue(fields.NewLabel("Date")),
	}
	addressAttempts = []attempt[string]{
		labelMultiLine(fields.NewLabel("Shipping Address")),
		labelMultiLine(fields.NewLabel("Ship To")),
		labelMultiLine(fields.NewLabel("Delivery Address")),
	}
)

// money matches an amount with an optional currency sign.
const money = `[$€£]?[ \t]*([\d,]+(?:\.\d+)?)`

// itemShape is one literal line layout for an order item.
type itemShape struct {
	name  string
	re    *regexp.Regexp
	build func(m []string) (models.OrderItem, bool)
}

// itemShapes are tried in order; the first that matches a line wins.
var itemShapes = []itemShape{
	{
		// Lamp: 2 x $10.00 (Total: $20.00)
		name: "colon_unit_total",
		re:   regexp.MustCompile(`(?i)^(.+?)[ \t]*:[ \t]*(\d+)[ \t]*[x×][ \t]*` + money + `[ \t]*\([ \t]*total[ \t]*:?[ \t]*` + money + `[ \t]*\)`),
		build: func(m []string) (models.OrderItem, bool) {
			return newItem(m[1], m[2], m[3], m[4])
		},
	},
	{
		// Lamp (Quantity: 2) - Total: $20.00
		name: "quantity_total",
		re:   regexp.MustCompile(`(?i)^(.+?)[ \t]*\([ \t]*(?:quantity|qty)[ \t]*:?[ \t]*(\d+)[ \t]*\)[ \t]*[-–—:]?[ \t]*total[ \t]*:?[ \t]*` + money),
		build: func(m []string) (models.OrderItem, bool) {
			return newItem(m[1], m[2], "", m[3])
		},
	},
	{
		// Lamp (2) - $20.00
		name: "paren_total",
		re:   regexp.MustCompile(`(?i)^(.+?)[ \t]*\([ \t]*(\d+)[ \t]*\)[ \t]*[-–—][ \t]*` + money),
		build: func(m []string) (models.OrderItem, bool) {
			return newItem(m[1], m[2], "", m[3])
		},
	},
	{
		// Lamp - 2 x $10.00 = $20.00
		name: "unit_equals_total",
		re:   regexp.MustCompile(`(?i)^(.+?)[ \t]*(?::|[-–—])?[ \t]*(\d+)[ \t]*[x×][ \t]*` + money + `[ \t]*=[ \t]*` + money),
		build: func(m []string) (models.OrderItem, bool) {
			return newItem(m[1], m[2], m[3], m[4])
		},
	},
}

// OrderEngine extracts numbered orders from assistant text.
type OrderEngine struct {
	cfg models.ExtractConfig
}

func NewOrderEngine(cfg models.ExtractConfig) *OrderEngine {
	if cfg.DefaultStatus == "" {
		cfg.DefaultStatus = models.DefaultStatus
	}
	return &OrderEngine{cfg: cfg}
}

// ExtractOrders runs an OrderEngine with the default configuration.
func ExtractOrders(text string) OrderResult {
	return NewOrderEngine(models.DefaultExtractConfig()).Extract(text)
}

// Extract scans text for "Order Number" markers, slices it into one segment
// per marker and extracts an Order from each. A segment that fails is dropped
// and the rest are kept. A failure while scanning degrades to no orders with
// the whole input as intro text.
func (e *OrderEngine) Extract(text string) (res OrderResult) {
	defer func() {
		if r := recover(); r != nil {
			res = OrderResult{
				IntroText: text,
				Drops:     []models.Drop{{Segment: -1, Reason: fmt.Sprintf("scan failed: %v", r), Text: text}},
			}
		}
	}()

	locs := orderMarker.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return OrderResult{IntroText: strings.TrimSpace(text)}
	}

	starts := make([]int, len(locs))
	for i, loc := range locs {
		starts[i] = loc[0]
	}

	res.IntroText = strings.TrimSpace(text[:starts[0]])
	res.Orders = make([]models.Order, 0, len(starts))

	for i, b := range segmentBounds(starts, len(text)) {
		seg := text[b[0]:b[1]]

		var order models.Order
		var itemDrops []string
		err := guard(func() error {
			var err error
			order, itemDrops, err = e.extractOrder(seg)
			return err
		})
		for _, line := range itemDrops {
			res.Drops = append(res.Drops, models.Drop{Segment: i, Reason: "item line matched no shape", Text: line})
		}
		if err != nil {
			res.Drops = append(res.Drops, models.Drop{Segment: i, Reason: err.Error(), Text: seg})
			continue
		}
		res.Orders = append(res.Orders, order)
	}

	return res
}

func (e *OrderEngine) extractOrder(seg string) (models.Order, []string, error) {
	number, ok := firstOf(seg, labelValue(labelOrderNumber), labelMultiLine(labelOrderNumber))
	if ok {
		number = cleanOrderNumber(number)
	}
	if number == "" {
		return models.Order{}, nil, errMissingOrderNumber
	}

	block, rest := splitItemsBlock(seg)
	items, skipped := parseItems(block)

	order := models.Order{
		OrderNumber: number,
		Status:      e.cfg.DefaultStatus,
		Items:       items,
	}
	if status, ok := firstOf(rest, statusAttempts...); ok {
		order.Status = status
	}
	if date, ok := firstOf(rest, dateAttempts...); ok {
		order.OrderDate = date
	}
	if v, ok := labelSubtotal.Value(rest); ok {
		order.Subtotal = fields.ParsePrice(v)
	}
	if v, ok := labelTax.Value(rest); ok {
		order.Tax = fields.ParsePrice(v)
	}
	if v, ok := labelTotal.Value(rest); ok {
		order.Total = fields.ParsePrice(v)
	}
	if addr, ok := firstOf(rest, addressAttempts...); ok {
		order.ShippingAddress = addr
	}

	return order, skipped, nil
}

// cleanOrderNumber keeps the first token of the captured value without a
// leading '#' or trailing punctuation.
func cleanOrderNumber(v string) string {
	parts := strings.Fields(stripBold(v))
	if len(parts) == 0 {
		return ""
	}
	return strings.Trim(parts[0], "#.,;:()")
}

// splitItemsBlock separates the "Items" block from the rest of an order
// segment. The block ends at the next line starting with a Subtotal or Total
// label, or at the end of the segment. rest is the whole segment minus the
// list lines of the block, so item totals never reach the order fields.
func splitItemsBlock(seg string) (block, rest string) {
	_, end, ok := labelItems.Span(seg)
	if !ok {
		return "", seg
	}
	body := seg[end:]
	if loc := itemsEnd.FindStringIndex(body); loc != nil {
		body = body[:loc[0]]
	}
	return body, seg[:end] + dropListLines(body) + seg[end+len(body):]
}

func dropListLines(block string) string {
	lines := strings.Split(block, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if listMarker.MatchString(strings.TrimSpace(line)) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// parseItems parses every list line of an items block. Lines that are list
// items but match no shape are returned in skipped.
func parseItems(block string) (items []models.OrderItem, skipped []string) {
	items = []models.OrderItem{}
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		loc := listMarker.FindStringIndex(line)
		if loc == nil {
			continue
		}
		body := strings.TrimSpace(line[loc[1]:])
		if body == "" {
			continue
		}
		if item, ok := parseItemLine(body); ok {
			items = append(items, item)
			continue
		}
		skipped = append(skipped, line)
	}
	return items, skipped
}

func parseItemLine(line string) (models.OrderItem, bool) {
	for _, shape := range itemShapes {
		m := shape.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if item, ok := shape.build(m); ok {
			return item, true
		}
	}
	return models.OrderItem{}, false
}

// newItem builds an item from captured strings. When unit is empty the unit
// price is derived from total / quantity.
func newItem(name, qty, unit, total string) (models.OrderItem, bool) {
	name = strings.Trim(strings.TrimSpace(stripBold(name)), ":-–— \t")
	quantity, err := strconv.Atoi(qty)
	if name == "" || err != nil || quantity < 1 {
		return models.OrderItem{}, false
	}

	item := models.OrderItem{
		Name:       name,
		Quantity:   quantity,
		TotalPrice: fields.ParsePrice(total),
	}
	if unit != "" {
		item.UnitPrice = fields.ParsePrice(unit)
	} else {
		item.UnitPrice = item.TotalPrice / float64(quantity)
	}
	return item, true
}
