package batch

import (
	"github.com/dtnitsch/llm-chat-extractor/models"
	"github.com/dtnitsch/llm-chat-extractor/pkg/manifest"
)

// Transcript is the batch input file layout.
type Transcript struct {
	Messages []Message `json:"messages" yaml:"messages"`
}

// Message is one assistant reply in a transcript.
type Message struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

type Job struct {
	Index   int
	Message Message
}

// Result holds the outcome of a processed job.
type Result struct {
	Index  int
	Cached bool
	manifest.MessageResult
}

// Counts totals a finished batch by content kind.
type Counts struct {
	Messages int
	Orders   int
	Products int
	Text     int
	Failed   int
	Drops    int
	Cached   int
}

func countResults(results []Result) Counts {
	var c Counts
	c.Messages = len(results)
	for _, r := range results {
		if r.Error != nil {
			c.Failed++
			continue
		}
		if r.Cached {
			c.Cached++
		}
		switch r.Content.Kind {
		case models.ContentOrders:
			c.Orders++
		case models.ContentProducts:
			c.Products++
		default:
			c.Text++
		}
		for _, d := range r.Diagnostics {
			if d.Type == models.DiagnosticDropped || d.Type == models.DiagnosticFallback {
				c.Drops++
			}
		}
	}
	return c
}
