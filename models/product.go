package models

// Product is one product card recovered from an assistant message.
// ID is derived from Title, so equal titles yield equal IDs.
type Product struct {
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Price         float64  `json:"price" yaml:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty" yaml:"original_price,omitempty"`
	Rating        float64  `json:"rating" yaml:"rating"`
	ReviewCount   int      `json:"reviewCount" yaml:"review_count"`
	Image         string   `json:"image" yaml:"image"`
	Category      string   `json:"category" yaml:"category"`
	InStock       bool     `json:"inStock" yaml:"in_stock"`
	Description   string   `json:"description" yaml:"description"`
}

// OnSale reports whether a higher "was" price was found for the product.
func (p Product) OnSale() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}
