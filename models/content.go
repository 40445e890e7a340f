package models

// ContentKind discriminates the ClassifiedContent variants.
type ContentKind string

const (
	ContentOrders   ContentKind = "orders"
	ContentProducts ContentKind = "products"
	ContentText     ContentKind = "text"
)

// Valid reports whether k is one of the known kinds.
func (k ContentKind) Valid() bool {
	switch k {
	case ContentOrders, ContentProducts, ContentText:
		return true
	}
	return false
}

// ClassifiedContent is the tagged union returned by the extractor facade.
// Only the fields belonging to Kind are populated:
//   - orders:   Orders, IntroText
//   - products: Products, IntroText, OutroText
//   - text:     Content
type ClassifiedContent struct {
	Kind      ContentKind `json:"kind" yaml:"kind"`
	Orders    []Order     `json:"orders,omitempty" yaml:"orders,omitempty"`
	Products  []Product   `json:"products,omitempty" yaml:"products,omitempty"`
	IntroText string      `json:"introText,omitempty" yaml:"intro_text,omitempty"`
	OutroText string      `json:"outroText,omitempty" yaml:"outro_text,omitempty"`
	Content   string      `json:"content,omitempty" yaml:"content,omitempty"`
}

func NewOrdersContent(orders []Order, intro string) ClassifiedContent {
	return ClassifiedContent{Kind: ContentOrders, Orders: orders, IntroText: intro}
}

func NewProductsContent(products []Product, intro, outro string) ClassifiedContent {
	return ClassifiedContent{Kind: ContentProducts, Products: products, IntroText: intro, OutroText: outro}
}

func NewTextContent(content string) ClassifiedContent {
	return ClassifiedContent{Kind: ContentText, Content: content}
}
