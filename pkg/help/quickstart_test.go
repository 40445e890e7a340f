package help

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestQuickstartYAMLParses(t *testing.T) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal([]byte(QuickstartYAML), &doc); err != nil {
		t.Fatalf("QuickstartYAML is not valid YAML: %v", err)
	}
	for _, key := range []string{"content_kinds", "commands", "defaults", "error_behavior"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("QuickstartYAML missing %q", key)
		}
	}
}
