package extractors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/llm-chat-extractor/models"
)

func TestExtractOrdersExample(t *testing.T) {
	text := "1. **Order Number:** ORD-1\n**Status:** Shipped\n**Items**:\n- Lamp: 2 x $10.00 (Total: $20.00)\n**Subtotal:** $20.00\n**Tax:** $1.60\n**Total:** $21.60\n"

	res := ExtractOrders(text)
	require.Len(t, res.Orders, 1)
	assert.Empty(t, res.IntroText)

	o := res.Orders[0]
	assert.Equal(t, "ORD-1", o.OrderNumber)
	assert.Equal(t, "Shipped", o.Status)
	assert.Equal(t, "", o.OrderDate)
	require.Len(t, o.Items, 1)
	assert.Equal(t, models.OrderItem{Name: "Lamp", Quantity: 2, UnitPrice: 10.00, TotalPrice: 20.00}, o.Items[0])
	assert.InDelta(t, 20.00, o.Subtotal, 1e-9)
	assert.InDelta(t, 1.60, o.Tax, 1e-9)
	assert.InDelta(t, 21.60, o.Total, 1e-9)
}

func TestExtractOrdersRoundTrip(t *testing.T) {
	want := []models.Order{
		{OrderNumber: "A-100", Status: "Delivered", OrderDate: "2024-03-01", Subtotal: 12, Tax: 1, Total: 13, ShippingAddress: "1 Main St Springfield"},
		{OrderNumber: "A-101", Status: "Processing", OrderDate: "2024-03-04", Subtotal: 40, Tax: 3.2, Total: 43.2, ShippingAddress: "22 Oak Ave"},
		{OrderNumber: "A-102", Status: "Cancelled", OrderDate: "2024-03-09", Subtotal: 5.5, Tax: 0.44, Total: 5.94, ShippingAddress: "9 Elm Rd Apt 4"},
	}

	var sb strings.Builder
	sb.WriteString("Here are your recent orders:\n\n")
	for i, o := range want {
		fmt.Fprintf(&sb, "%d. **Order Number:** %s\n", i+1, o.OrderNumber)
		fmt.Fprintf(&sb, "**Status:** %s\n", o.Status)
		fmt.Fprintf(&sb, "**Order Date:** %s\n", o.OrderDate)
		fmt.Fprintf(&sb, "**Subtotal:** $%.2f\n", o.Subtotal)
		fmt.Fprintf(&sb, "**Tax:** $%.2f\n", o.Tax)
		fmt.Fprintf(&sb, "**Total:** $%.2f\n", o.Total)
		fmt.Fprintf(&sb, "**Shipping Address:** %s\n\n", o.ShippingAddress)
	}

	res := ExtractOrders(sb.String())
	assert.Equal(t, "Here are your recent orders:", res.IntroText)
	require.Len(t, res.Orders, len(want))
	for i := range want {
		got := res.Orders[i]
		assert.Equal(t, want[i].OrderNumber, got.OrderNumber)
		assert.Equal(t, want[i].Status, got.Status)
		assert.Equal(t, want[i].OrderDate, got.OrderDate)
		assert.InDelta(t, want[i].Subtotal, got.Subtotal, 1e-9)
		assert.InDelta(t, want[i].Tax, got.Tax, 1e-9)
		assert.InDelta(t, want[i].Total, got.Total, 1e-9)
		assert.Equal(t, want[i].ShippingAddress, got.ShippingAddress)
		assert.Empty(t, got.Items)
	}
}

func TestExtractOrdersGarbageKeepsOrder(t *testing.T) {
	res := ExtractOrders("Order Number: ZX-9 ~~~ @@@ ###\n??? totally not a field")
	require.Len(t, res.Orders, 1)

	o := res.Orders[0]
	assert.Equal(t, "ZX-9", o.OrderNumber)
	assert.Equal(t, models.DefaultStatus, o.Status)
	assert.Equal(t, "", o.OrderDate)
	assert.Empty(t, o.Items)
	assert.Zero(t, o.Subtotal)
	assert.Zero(t, o.Tax)
	assert.Zero(t, o.Total)
	assert.Equal(t, "", o.ShippingAddress)
}

func TestExtractOrdersNoMarker(t *testing.T) {
	res := ExtractOrders("  You have no past orders with Status info.  ")
	assert.Empty(t, res.Orders)
	assert.Equal(t, "You have no past orders with Status info.", res.IntroText)
}

func TestExtractOrdersDropsMissingNumber(t *testing.T) {
	text := "1. **Order Number:** \n\n2. **Order Number:** B-2\n**Status:** Shipped"
	res := ExtractOrders(text)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "B-2", res.Orders[0].OrderNumber)
	require.NotEmpty(t, res.Drops)
	assert.Equal(t, 0, res.Drops[0].Segment)
	assert.Equal(t, errMissingOrderNumber.Error(), res.Drops[0].Reason)
}

func TestExtractOrdersMultiLineNumber(t *testing.T) {
	res := ExtractOrders("**Order Number:**\n#5531\n**Status:** Pending")
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "5531", res.Orders[0].OrderNumber)
}

func TestParseItemLineShapes(t *testing.T) {
	tests := []struct {
		name string
		line string
		want models.OrderItem
	}{
		{
			name: "colon with explicit total",
			line: "Lamp: 2 x $10.00 (Total: $20.00)",
			want: models.OrderItem{Name: "Lamp", Quantity: 2, UnitPrice: 10, TotalPrice: 20},
		},
		{
			name: "quantity then total",
			line: "Desk Chair (Quantity: 4) - Total: $1,000.00",
			want: models.OrderItem{Name: "Desk Chair", Quantity: 4, UnitPrice: 250, TotalPrice: 1000},
		},
		{
			name: "count then price",
			line: "**Rug** (3) - $90",
			want: models.OrderItem{Name: "Rug", Quantity: 3, UnitPrice: 30, TotalPrice: 90},
		},
		{
			name: "unit times quantity equals total",
			line: "Mug - 6 x $4.50 = $27.00",
			want: models.OrderItem{Name: "Mug", Quantity: 6, UnitPrice: 4.5, TotalPrice: 27},
		},
		{
			name: "equals total without separator",
			line: "Lamp 2 x $10.00 = $20.00",
			want: models.OrderItem{Name: "Lamp", Quantity: 2, UnitPrice: 10, TotalPrice: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseItemLine(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.want.Name, got.Name)
			assert.Equal(t, tt.want.Quantity, got.Quantity)
			assert.InDelta(t, tt.want.UnitPrice, got.UnitPrice, 1e-9)
			assert.InDelta(t, tt.want.TotalPrice, got.TotalPrice, 1e-9)
		})
	}
}

func TestItemArithmetic(t *testing.T) {
	got, ok := parseItemLine("Mug: 3 x $2.25 = $6.75")
	require.True(t, ok)
	assert.InDelta(t, got.TotalPrice, got.UnitPrice*float64(got.Quantity), 1e-9)

	got, ok = parseItemLine("Vase (Quantity: 7) - Total: $10.00")
	require.True(t, ok)
	assert.InDelta(t, got.TotalPrice/float64(got.Quantity), got.UnitPrice, 1e-12)
}

func TestParseItemsSkipsUnknownLines(t *testing.T) {
	block := "\n- Lamp: 1 x $5 (Total: $5)\n- a free gift, on us\nnot a list line\n- Rug (0) - $9\n"
	items, skipped := parseItems(block)
	require.Len(t, items, 1)
	assert.Equal(t, "Lamp", items[0].Name)
	assert.Equal(t, []string{"- a free gift, on us", "- Rug (0) - $9"}, skipped)
}

func TestOrderTotalIgnoresItemTotals(t *testing.T) {
	text := "**Order Number:** Q1\nItems:\n- Lamp: 2 x $10.00 (Total: $20.00)\nSubtotal: $20.00\nTotal: $21.00"
	res := ExtractOrders(text)
	require.Len(t, res.Orders, 1)
	assert.InDelta(t, 21.0, res.Orders[0].Total, 1e-9)
	assert.InDelta(t, 20.0, res.Orders[0].Subtotal, 1e-9)
	require.Len(t, res.Orders[0].Items, 1)
}

func TestExtractOrdersFieldsAfterItems(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantStatus  string
		wantDate    string
		wantAddress string
		wantTotal   float64
	}{
		{
			name:        "fields between items and total",
			text:        "1. **Order Number:** A-1\n**Items:**\n- Lamp: 1 x $5.00 (Total: $5.00)\n**Status:** Shipped\n**Order Date:** 2024-01-02\n**Shipping Address:** 1 Main St\n**Total:** $5.00\n",
			wantStatus:  "Shipped",
			wantDate:    "2024-01-02",
			wantAddress: "1 Main St",
			wantTotal:   5,
		},
		{
			name:        "address after items without totals",
			text:        "1. **Order Number:** A-2\n**Items:**\n- Rug (2) - $30.00\n**Shipping Address:** 9 Elm Rd\n",
			wantStatus:  models.DefaultStatus,
			wantAddress: "9 Elm Rd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ExtractOrders(tt.text)
			require.Len(t, res.Orders, 1)

			o := res.Orders[0]
			require.Len(t, o.Items, 1)
			assert.Equal(t, tt.wantStatus, o.Status)
			assert.Equal(t, tt.wantDate, o.OrderDate)
			assert.Equal(t, tt.wantAddress, o.ShippingAddress)
			assert.InDelta(t, tt.wantTotal, o.Total, 1e-9)
		})
	}
}

func TestExtractOrdersBoldNumberWithoutColon(t *testing.T) {
	res := ExtractOrders("1. **Order Number** ORD-7\n**Status:** Shipped")
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "ORD-7", res.Orders[0].OrderNumber)
	assert.Equal(t, "Shipped", res.Orders[0].Status)
}
