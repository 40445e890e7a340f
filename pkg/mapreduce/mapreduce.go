package mapreduce

import "github.com/dtnitsch/llm-chat-extractor/models"

// Map counts the drop and fallback reasons of one message's diagnostics,
// keyed "engine/reason".
func Map(diags []models.Diagnostic) map[string]int {
	counts := make(map[string]int)
	for _, d := range diags {
		if d.Type != models.DiagnosticDropped && d.Type != models.DiagnosticFallback {
			continue
		}
		counts[d.Engine+"/"+d.Reason]++
	}
	return counts
}

// Reduce aggregates a slice of count maps into a single map.
func Reduce(intermediate []map[string]int) map[string]int {
	finalResults := make(map[string]int)

	for _, counts := range intermediate {
		for key, count := range counts {
			finalResults[key] += count
		}
	}

	return finalResults
}
