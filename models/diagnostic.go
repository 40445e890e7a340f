package models

import "time"

// DiagnosticType identifies what a Diagnostic reports.
type DiagnosticType string

const (
	DiagnosticClassified DiagnosticType = "classified" // one per Extract call
	DiagnosticDropped    DiagnosticType = "dropped"    // a segment that yielded no entity
	DiagnosticFallback   DiagnosticType = "fallback"   // the whole call degraded to text
)

func (t DiagnosticType) Valid() bool {
	switch t {
	case DiagnosticClassified, DiagnosticDropped, DiagnosticFallback:
		return true
	}
	return false
}

// Diagnostic is a trace event emitted while extracting a message. It exists
// for offline tuning of the patterns and never affects the extraction result.
type Diagnostic struct {
	Type        DiagnosticType `json:"type" yaml:"type"`
	Kind        ContentKind    `json:"kind,omitempty" yaml:"kind,omitempty"`
	Engine      string         `json:"engine,omitempty" yaml:"engine,omitempty"` // orders, products, facade
	Segment     int            `json:"segment" yaml:"segment"`
	Reason      string         `json:"reason,omitempty" yaml:"reason,omitempty"`
	Snippet     string         `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	MessageHash string         `json:"message_hash,omitempty" yaml:"message_hash,omitempty"`
	CreatedAt   time.Time      `json:"created_at" yaml:"created_at"`
}

// Drop describes a segment an extraction engine skipped.
type Drop struct {
	Segment int
	Reason  string
	Text    string
}
