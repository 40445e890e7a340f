package extractor

import (
	"errors"
	"log/slog"

	"github.com/dtnitsch/llm-chat-extractor/models"
)

// Recorder receives the diagnostics of every extraction.
type Recorder interface {
	Record(d models.Diagnostic) error
}

// RecorderFunc adapts a plain function to Recorder.
type RecorderFunc func(d models.Diagnostic) error

func (f RecorderFunc) Record(d models.Diagnostic) error {
	return f(d)
}

// LogRecorder writes diagnostics to a structured logger. Dropped segments and
// classifications are Debug; fallbacks are Warn.
type LogRecorder struct {
	Logger *slog.Logger
}

func (r LogRecorder) Record(d models.Diagnostic) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch d.Type {
	case models.DiagnosticDropped:
		logger.Debug("extractor.dropped",
			"engine", d.Engine,
			"segment", d.Segment,
			"reason", d.Reason,
			"snippet", d.Snippet,
		)
	case models.DiagnosticFallback:
		logger.Warn("extractor.fallback",
			"engine", d.Engine,
			"reason", d.Reason,
			"message_hash", d.MessageHash,
			"snippet", d.Snippet,
		)
	default:
		logger.Debug("extractor.classified",
			"kind", d.Kind,
			"message_hash", d.MessageHash,
		)
	}
	return nil
}

// MultiRecorder fans a diagnostic out to every recorder and joins their errors.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(d models.Diagnostic) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
