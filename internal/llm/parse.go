package llm

import (
	"encoding/json"
	"strings"

	"github.com/tickerdesk/tickerdesk/internal/models"
)

// ParseAnalysis decodes the model's response, tolerating markdown code fences
// around the JSON. Anything that still fails to parse degrades to the neutral
// fallback analysis rather than an error; a flaky model must not break the
// endpoint.
func ParseAnalysis(content string) *models.Analysis {
	cleaned := strings.ReplaceAll(content, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var analysis models.Analysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return models.FallbackAnalysis()
	}
	return &analysis
}
