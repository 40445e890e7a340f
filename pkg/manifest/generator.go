package manifest

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dtnitsch/llm-chat-extractor/models"
	"github.com/dtnitsch/llm-chat-extractor/pkg/mapreduce"
	"github.com/dtnitsch/llm-chat-extractor/pkg/storage"
)

// MessageResult is the outcome of extracting one transcript message.
// It is passed in from the batch runner to avoid circular dependencies.
type MessageResult struct {
	ID            string
	FilePath      string
	Content       models.ClassifiedContent
	Signals       []string
	Diagnostics   []models.Diagnostic
	Error         error
	FileSizeBytes int64
}

// Summarize builds the manifest for results. reasons maps "engine/reason" to a
// count across all messages.
func Summarize(source string, results []MessageResult, reasons map[string]int) SummaryManifest {
	m := SummaryManifest{
		GeneratedAt:    time.Now().Format(time.RFC3339),
		Source:         source,
		TotalMessages:  len(results),
		Kinds:          map[string]int{},
		TopDropReasons: mapreduce.TopN(reasons, 10),
	}

	for _, r := range results {
		summary := MessageSummary{ID: r.ID}

		if r.Error != nil {
			m.Failed++
			summary.Status = "error"
			summary.ErrorMessage = r.Error.Error()
			m.Results = append(m.Results, summary)
			continue
		}

		summary.Status = "success"
		summary.Kind = string(r.Content.Kind)
		summary.FilePath = r.FilePath
		summary.SizeBytes = r.FileSizeBytes
		summary.Orders = len(r.Content.Orders)
		summary.Products = len(r.Content.Products)
		summary.Signals = r.Signals
		m.Kinds[summary.Kind]++

		perMessage := mapreduce.Map(r.Diagnostics)
		summary.DropReasons = mapreduce.TopN(perMessage, 5)
		for _, n := range perMessage {
			m.Drops += n
		}

		m.Results = append(m.Results, summary)
	}

	return m
}

// GenerateSummary writes the manifest for results into dir and returns its path.
func GenerateSummary(dir, source string, runID int64, results []MessageResult, reasons map[string]int, s *storage.Storage) (string, error) {
	m := Summarize(source, results, reasons)
	m.RunID = runID

	manifestPath := filepath.Join(dir, fmt.Sprintf("summary-%s.json", time.Now().Format("2006-01-02")))
	manifestData, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error marshalling manifest: %w", err)
	}

	if err := s.SaveFile(manifestPath, manifestData); err != nil {
		return "", fmt.Errorf("error saving manifest: %w", err)
	}

	return manifestPath, nil
}
