package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadTranscript reads a YAML or JSON transcript. Files ending in .json are
// decoded as JSON; anything else as YAML. Messages without an id get one
// from their position.
func LoadTranscript(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	var t Transcript
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &t)
	} else {
		err = yaml.Unmarshal(data, &t)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcript %s: %w", path, err)
	}

	for i := range t.Messages {
		if strings.TrimSpace(t.Messages[i].ID) == "" {
			t.Messages[i].ID = fmt.Sprintf("message-%d", i+1)
		}
	}
	return &t, nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// resultFileName names the per-message result file. The position prefix keeps
// names unique when ids repeat.
func resultFileName(index int, id string) string {
	safe := strings.Trim(unsafeFileChars.ReplaceAllString(id, "_"), "._")
	if safe == "" {
		safe = "message"
	}
	return fmt.Sprintf("%04d-%s.json", index+1, safe)
}
