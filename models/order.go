package models

// OrderItem is a single line of an order's "Items" block.
type OrderItem struct {
	Name       string  `json:"name" yaml:"name"`
	Quantity   int     `json:"quantity" yaml:"quantity"`
	UnitPrice  float64 `json:"unitPrice" yaml:"unit_price"`
	TotalPrice float64 `json:"totalPrice" yaml:"total_price"`
}

// Order is one numbered order recovered from an assistant message.
type Order struct {
	OrderNumber     string      `json:"orderNumber" yaml:"order_number"`
	Status          string      `json:"status" yaml:"status"`
	OrderDate       string      `json:"orderDate" yaml:"order_date"`
	Items           []OrderItem `json:"items" yaml:"items"`
	Subtotal        float64     `json:"subtotal" yaml:"subtotal"`
	Tax             float64     `json:"tax" yaml:"tax"`
	Total           float64     `json:"total" yaml:"total"`
	ShippingAddress string      `json:"shippingAddress" yaml:"shipping_address"`
}

// ItemCount returns the sum of quantities across all items.
func (o Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}
