// Package extractor is the single entry point for turning an assistant chat
// message into structured content. It classifies the message, runs the
// matching engine and falls back to plain text whenever nothing usable comes
// out. Extract never panics and never returns an error.
package extractor

import (
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/dtnitsch/llm-chat-extractor/internal/common"
	"github.com/dtnitsch/llm-chat-extractor/models"
	"github.com/dtnitsch/llm-chat-extractor/pkg/detector"
	"github.com/dtnitsch/llm-chat-extractor/pkg/extractors"
	"github.com/dtnitsch/llm-chat-extractor/pkg/normalize"
)

const (
	engineOrders   = "orders"
	engineProducts = "products"
	engineFacade   = "facade"
)

// Result is everything one extraction produced. Content is what callers
// render; Detection and Diagnostics describe how it was reached.
type Result struct {
	Content     models.ClassifiedContent `json:"content" yaml:"content"`
	Detection   *detector.Detection      `json:"detection" yaml:"detection"`
	Diagnostics []models.Diagnostic      `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Extractor holds configuration only and is safe for concurrent use.
type Extractor struct {
	cfg      models.ExtractConfig
	logger   *slog.Logger
	recorder MultiRecorder
	orders   *extractors.OrderEngine
	products *extractors.ProductEngine
	now      func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

func WithConfig(cfg models.ExtractConfig) Option {
	return func(x *Extractor) { x.cfg = cfg }
}

func WithLogger(logger *slog.Logger) Option {
	return func(x *Extractor) {
		if logger != nil {
			x.logger = logger
		}
	}
}

// WithRecorder adds a destination for diagnostics. Diagnostics are always
// logged; recorders receive them in addition.
func WithRecorder(r Recorder) Option {
	return func(x *Extractor) {
		if r != nil {
			x.recorder = append(x.recorder, r)
		}
	}
}

// WithClock overrides the time source stamped on diagnostics.
func WithClock(now func() time.Time) Option {
	return func(x *Extractor) {
		if now != nil {
			x.now = now
		}
	}
}

func New(opts ...Option) *Extractor {
	x := &Extractor{
		cfg:    models.DefaultExtractConfig(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(x)
	}
	x.recorder = append(MultiRecorder{LogRecorder{Logger: x.logger}}, x.recorder...)
	x.orders = extractors.NewOrderEngine(x.cfg)
	x.products = extractors.NewProductEngine(x.cfg)
	return x
}

// Extract classifies text and returns the structured content. It is the
// package-level form of New().Extract.
func Extract(text string) models.ClassifiedContent {
	return New().Extract(text)
}

// Extract returns the structured content for one message.
func (x *Extractor) Extract(text string) models.ClassifiedContent {
	return x.Analyze(text).Content
}

// Analyze runs one extraction and hands its diagnostics to the recorders.
func (x *Extractor) Analyze(text string) Result {
	res := x.analyze(text)
	for _, d := range res.Diagnostics {
		x.record(d)
	}
	return res
}

// Classify runs only the detector, on the same input the engines would see.
func (x *Extractor) Classify(text string) (d *detector.Detection) {
	defer func() {
		if r := recover(); r != nil {
			d = &detector.Detection{Kind: models.ContentText, Signals: []string{}}
		}
	}()
	return detector.Analyze(x.prepare(text))
}

func (x *Extractor) analyze(text string) (res Result) {
	hash := common.ContentHash([]byte(text))

	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Content:   models.NewTextContent(text),
				Detection: &detector.Detection{Kind: models.ContentText, Signals: []string{}},
			}
			res.Diagnostics = []models.Diagnostic{
				x.diagnostic(models.DiagnosticFallback, engineFacade, -1, fmt.Sprintf("panic: %v", r), text, hash),
				x.classified(models.ContentText, hash),
			}
		}
	}()

	input := x.prepare(text)
	res.Detection = detector.Analyze(input)

	switch res.Detection.Kind {
	case models.ContentOrders:
		out := x.orders.Extract(input)
		res.addDrops(x, engineOrders, out.Drops, hash)
		if len(out.Orders) > 0 {
			res.Content = models.NewOrdersContent(out.Orders, out.IntroText)
		} else {
			res.fallback(x, engineOrders, "no orders extracted", text, hash)
		}
	case models.ContentProducts:
		out := x.products.Extract(input)
		res.addDrops(x, engineProducts, out.Drops, hash)
		if len(out.Products) > 0 {
			res.Content = models.NewProductsContent(out.Products, out.IntroText, out.OutroText)
		} else {
			res.fallback(x, engineProducts, "no products extracted", text, hash)
		}
	default:
		res.Content = models.NewTextContent(text)
	}

	res.Diagnostics = append(res.Diagnostics, x.classified(res.Content.Kind, hash))
	return res
}

// prepare bounds and normalises the text the engines see. The text variant
// always carries the caller's original input, not this.
func (x *Extractor) prepare(text string) string {
	input := text
	if limit := x.cfg.MaxInputBytes; limit > 0 && len(input) > limit {
		input = truncate(input, limit)
		x.logger.Debug("extractor.truncated", "bytes", len(text), "limit", limit)
	}
	if x.cfg.NormalizeHTML && normalize.LooksLikeHTML(input) {
		md, err := normalize.Markdown(input)
		if err != nil {
			x.logger.Warn("extractor.normalize_failed", "error", err)
			return input
		}
		input = md
	}
	return input
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (r *Result) addDrops(x *Extractor, engine string, drops []models.Drop, hash string) {
	for _, d := range drops {
		r.Diagnostics = append(r.Diagnostics, x.diagnostic(models.DiagnosticDropped, engine, d.Segment, d.Reason, d.Text, hash))
	}
}

func (r *Result) fallback(x *Extractor, engine, reason, text, hash string) {
	r.Content = models.NewTextContent(text)
	r.Diagnostics = append(r.Diagnostics, x.diagnostic(models.DiagnosticFallback, engine, -1, reason, text, hash))
}

func (x *Extractor) diagnostic(typ models.DiagnosticType, engine string, segment int, reason, text, hash string) models.Diagnostic {
	return models.Diagnostic{
		Type:        typ,
		Engine:      engine,
		Segment:     segment,
		Reason:      reason,
		Snippet:     common.Snippet(text, x.cfg.SnippetLength),
		MessageHash: hash,
		CreatedAt:   x.now(),
	}
}

func (x *Extractor) classified(kind models.ContentKind, hash string) models.Diagnostic {
	return models.Diagnostic{
		Type:        models.DiagnosticClassified,
		Kind:        kind,
		Engine:      engineFacade,
		Segment:     -1,
		MessageHash: hash,
		CreatedAt:   x.now(),
	}
}

// record never lets a recorder failure reach the caller.
func (x *Extractor) record(d models.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			x.logger.Warn("extractor.record_panic", "panic", r)
		}
	}()
	if err := x.recorder.Record(d); err != nil {
		x.logger.Warn("extractor.record_failed", "type", d.Type, "error", err)
	}
}
