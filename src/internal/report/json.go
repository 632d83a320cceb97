package report

import (
	"encoding/json"
	"fmt"
)

// JSONGenerator renders the machine-readable report: the full unified report
// serialized losslessly.
type JSONGenerator struct{}

// NewJSONGenerator creates a JSON report generator.
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

// Generate serializes the unified report as indented JSON.
func (g *JSONGenerator) Generate(report *UnifiedReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}
