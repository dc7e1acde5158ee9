// Package validation checks game configuration documents before the loader
// commits them to a definition. Raw JSON documents go through the zog schema,
// populated definitions through the simpler structural checks.
package validation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Oudwins/zog"
)

// ValidateConfigJSON validates a raw game configuration document against
// ConfigSchema.
func ValidateConfigJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse configuration JSON: %w", err)
	}

	var scratch configDocument
	issues := ConfigSchema.Parse(doc, &scratch)
	if len(issues) == 0 {
		return nil
	}

	var parts []string
	for field, messages := range zog.Issues.SanitizeMap(issues) {
		for _, message := range messages {
			parts = append(parts, field+": "+message)
		}
	}
	sort.Strings(parts)
	return fmt.Errorf("invalid game configuration: %s", strings.Join(parts, "; "))
}
