package manifest

// SummaryManifest is the overview written at the end of a batch run. It lets
// a reader see kind counts and the most frequent drop reasons without opening
// every per-message result file.
type SummaryManifest struct {
	GeneratedAt    string           `json:"generated_at"`
	Source         string           `json:"source"`
	RunID          int64            `json:"run_id,omitempty"`
	TotalMessages  int              `json:"total_messages"`
	Kinds          map[string]int   `json:"kinds"`
	Failed         int              `json:"failed"`
	Drops          int              `json:"drops"`
	TopDropReasons []string         `json:"top_drop_reasons"`
	Results        []MessageSummary `json:"results"`
}

// MessageSummary is one line of the manifest.
type MessageSummary struct {
	ID           string   `json:"id"`
	Kind         string   `json:"kind,omitempty"`
	Status       string   `json:"status"` // "success" or "error"
	FilePath     string   `json:"file_path,omitempty"`
	SizeBytes    int64    `json:"size_bytes,omitempty"`
	Orders       int      `json:"orders,omitempty"`
	Products     int      `json:"products,omitempty"`
	Signals      []string `json:"signals,omitempty"`
	DropReasons  []string `json:"drop_reasons,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
}
