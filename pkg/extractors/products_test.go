package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/llm-chat-extractor/models"
)

func TestExtractProductsExample(t *testing.T) {
	text := "Here are some options:\n1. **Cozy Blue**\n**Price:** $59.50\n**Rating:** 4.7 (12 Reviews)\n![Cozy Blue](http://x/img.png)\n"

	res := ExtractProducts(text)
	assert.Equal(t, "Here are some options:", res.IntroText)
	assert.Empty(t, res.OutroText)
	assert.Empty(t, res.Drops)
	require.Len(t, res.Products, 1)

	assert.Equal(t, models.Product{
		ID:       "cozy-blue",
		Title:    "Cozy Blue",
		Price:    59.50,
		Rating:   4.7,
		Image:    "http://x/img.png",
		Category: models.DefaultCategory,
		InStock:  true,

		ReviewCount: 12,
	}, res.Products[0])
}

func TestExtractProductsDropsUntitledSegment(t *testing.T) {
	text := "Here you go:\n1. **Lamp**\n**Price:** $20\n2. **---**\nplain lowercase words only\n"

	res := ExtractProducts(text)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Lamp", res.Products[0].Title)
	assert.InDelta(t, 20.0, res.Products[0].Price, 1e-9)

	require.Len(t, res.Drops, 1)
	assert.Equal(t, 1, res.Drops[0].Segment)
	assert.Equal(t, errNoTitle.Error(), res.Drops[0].Reason)
	for _, p := range res.Products {
		assert.NotEmpty(t, p.Title)
	}
}

func TestExtractProductsSingleFallback(t *testing.T) {
	text := "Take a look at this one!\n\"Aurora Lamp\" is described as a warm bedside light. If you're interested, just ask.\n![Aurora Lamp](http://x/aurora.jpg)\nLet me know what you think."

	res := ExtractProducts(text)
	require.Len(t, res.Products, 1)

	p := res.Products[0]
	assert.Equal(t, "Aurora Lamp", p.Title)
	assert.Equal(t, "aurora-lamp", p.ID)
	assert.Equal(t, "a warm bedside light.", p.Description)
	assert.Equal(t, "http://x/aurora.jpg", p.Image)
	assert.InDelta(t, models.DefaultPrice, p.Price, 1e-9)
	assert.InDelta(t, models.DefaultRating, p.Rating, 1e-9)

	assert.Equal(t, "Take a look at this one!", res.IntroText)
	assert.Equal(t, "Let me know what you think.", res.OutroText)
}

func TestExtractProductsSingleWithoutPicture(t *testing.T) {
	res := ExtractProducts("  Nothing to show you right now.  ")
	assert.Empty(t, res.Products)
	assert.Equal(t, "Nothing to show you right now.", res.IntroText)
}

func TestExtractProductsOutro(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantCount int
		wantOutro string
	}{
		{
			name:      "closing prose after last image",
			text:      "Options:\n1. **Lamp**\n**Price:** $20\n![Lamp](http://x/l.png)\n2. **Rug**\n**Price:** $30\n![Rug](http://x/r.png)\n\nHappy shopping!",
			wantCount: 2,
			wantOutro: "Happy shopping!",
		},
		{
			name:      "trailing numbered heading stays in body",
			text:      "1. **Lamp**\n![Lamp](http://x/l.png)\n2. **Rug** coming soon",
			wantCount: 2,
			wantOutro: "",
		},
		{
			name:      "bold words in closing prose",
			text:      "1. **Lamp**\n**Price:** $20\n![Lamp](http://x/l.png)\n2. **Rug**\n**Price:** $30\n![Rug](http://x/r.png)\n\nLet me know if you want **more** options!",
			wantCount: 2,
			wantOutro: "Let me know if you want **more** options!",
		},
		{
			name:      "field line after image stays in body",
			text:      "1. **Lamp**\n![Lamp](http://x/l.png)\n**Price:** $20\nEnjoy!",
			wantCount: 1,
			wantOutro: "Enjoy!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ExtractProducts(tt.text)
			assert.Len(t, res.Products, tt.wantCount)
			assert.Equal(t, tt.wantOutro, res.OutroText)
		})
	}
}

func TestExtractProductsOutroKeepsLastDescription(t *testing.T) {
	res := ExtractProducts("1. **Lamp**\n![Lamp](http://x/l.png)\n2. **Rug**\n![Rug](http://x/r.png)\n\nWant **more** options?")
	require.Len(t, res.Products, 2)
	assert.Empty(t, res.Products[1].Description)
	assert.Equal(t, "Want **more** options?", res.OutroText)
}

func TestExtractProductsSingleNoDuplicateProse(t *testing.T) {
	text := "Here you can see Cozy Blue [here](http://x/a.png) today."

	res := ExtractProducts(text)
	require.Len(t, res.Products, 1)

	p := res.Products[0]
	assert.Equal(t, "Cozy Blue", p.Title)
	assert.Equal(t, "http://x/a.png", p.Image)
	assert.Equal(t, "Here you can see Cozy Blue", p.Description)
	assert.Empty(t, res.IntroText)
	assert.Equal(t, "today.", res.OutroText)
}

func TestResolveTitle(t *testing.T) {
	tests := []struct {
		name string
		seg  string
		want string
	}{
		{"numbered heading", "1. **Cozy Blue**\nA soft throw.", "Cozy Blue"},
		{"image alt text", "Have a look.\n![Image of Aurora Lamp](http://x/a.png)", "Aurora Lamp"},
		{"leading quoted title", "\"Desk Fan\" keeps you cool all summer.", "Desk Fan"},
		{"leading bold title", "**Desk Fan** keeps you cool.", "Desk Fan"},
		{"quoted title described", "Our pick today: \"Desk Fan\" is described as whisper quiet.", "Desk Fan"},
		{"capitalised title described", "Velvet Throw is a soft blanket.", "Velvet Throw"},
		{"viewing context", "You can see Cozy Blue [here](http://x/a.png) today.", "Cozy Blue"},
		{"heading shadows image alt", "1. **Lamp**\n![Desk Lamp](http://x/l.png)", "Lamp"},
		{"image alt shadows described title", "Velvet Throw is a soft blanket.\n![Wool Throw](http://x/t.png)", "Wool Throw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolveTitle(tt.seg)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := resolveTitle("just some lowercase words")
	assert.False(t, ok)
}

func TestExtractProductsFieldLineAfterImage(t *testing.T) {
	res := ExtractProducts("1. **Lamp**\n![Lamp](http://x/l.png)\n**Price:** $20\nEnjoy!")
	require.Len(t, res.Products, 1)
	assert.InDelta(t, 20.0, res.Products[0].Price, 1e-9)
}

func TestExtractProductsOriginalPrice(t *testing.T) {
	res := ExtractProducts("1. **Rug**\n**Price:** $30 (Originally $45)\n2. **Lamp**\n**Price:** $20")
	require.Len(t, res.Products, 2)

	rug := res.Products[0]
	assert.InDelta(t, 30.0, rug.Price, 1e-9)
	require.NotNil(t, rug.OriginalPrice)
	assert.InDelta(t, 45.0, *rug.OriginalPrice, 1e-9)
	assert.True(t, rug.OnSale())

	assert.Nil(t, res.Products[1].OriginalPrice)
}

func TestExtractProductsInStock(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"label yes", "1. **Lamp**\n**In Stock:** Yes", true},
		{"label no", "1. **Lamp**\n**In Stock:** No", false},
		{"availability", "1. **Lamp**\nAvailability: Sold out", false},
		{"phrase", "1. **Lamp**\nCurrently out of stock, sorry.", false},
		{"unknown answer", "1. **Lamp**\n**In Stock:** maybe", true},
		{"absent", "1. **Lamp**\n**Price:** $5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ExtractProducts(tt.text)
			require.Len(t, res.Products, 1)
			assert.Equal(t, tt.want, res.Products[0].InStock)
		})
	}
}

func TestExtractProductsImageLink(t *testing.T) {
	res := ExtractProducts("1. **Mug**\n[see it](http://x/mug.webp?size=2)")
	require.Len(t, res.Products, 1)
	assert.Equal(t, "http://x/mug.webp?size=2", res.Products[0].Image)

	res = ExtractProducts("1. **Mug**\n[store page](http://x/mug)")
	require.Len(t, res.Products, 1)
	assert.Empty(t, res.Products[0].Image)
}

func TestExtractProductsDescription(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "label",
			text: "1. **Mug**\n**Description:** A sturdy mug\nfor coffee.\n**Price:** $9",
			want: "A sturdy mug for coffee.",
		},
		{
			name: "quoted title",
			text: "1. **Mug**\n\"Mug\" is described as a stoneware cup. If you're curious, ask.",
			want: "a stoneware cup.",
		},
		{
			name: "prose before image",
			text: "1. **Mug** - A sturdy mug for coffee. If you're interested, ask!\n![Mug](http://x/m.png)",
			want: "A sturdy mug for coffee.",
		},
		{
			name: "unknown bold label",
			text: "1. **Mug**\n**Details:** Holds 12 oz.\n",
			want: "Holds 12 oz.",
		},
		{
			name: "nothing",
			text: "1. **Mug**\n**Price:** $9\n",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ExtractProducts(tt.text)
			require.Len(t, res.Products, 1)
			assert.Equal(t, tt.want, res.Products[0].Description)
		})
	}
}

func TestExtractProductsCategoryAndRating(t *testing.T) {
	res := ExtractProducts("1. **Lamp**\n**Category:** Lighting\n**Rating:** 9.5\n")
	require.Len(t, res.Products, 1)
	assert.Equal(t, "Lighting", res.Products[0].Category)
	assert.InDelta(t, models.DefaultRating, res.Products[0].Rating, 1e-9)
}

func TestTitleLinePrice(t *testing.T) {
	res := ExtractProducts("1. **Lamp** - $24.99\nA nice lamp.")
	require.Len(t, res.Products, 1)
	assert.InDelta(t, 24.99, res.Products[0].Price, 1e-9)
}

func TestProductID(t *testing.T) {
	assert.Equal(t, "cozy-blue-throw", ProductID("  Cozy   Blue Throw "))
	assert.Equal(t, "", ProductID(""))
}

func TestIndexFold(t *testing.T) {
	assert.Equal(t, 4, indexFold("see AURORA lamp", "Aurora"))
	assert.Equal(t, -1, indexFold("abc", ""))
}
