package report

import (
	"errors"
	"fmt"
)

// Reporter wires generators and storage together. Artifact failures are
// independent: one artifact failing to persist does not roll back the other.
type Reporter struct {
	storage Storage
}

// NewReporter creates a reporter over the given storage.
func NewReporter(storage Storage) *Reporter {
	return &Reporter{
		storage: storage,
	}
}

// GenerateAndSave renders the report with the given generator and persists it
// under the given filename.
func (r *Reporter) GenerateAndSave(report *UnifiedReport, generator Generator, filename string) (string, error) {
	content, err := generator.Generate(report)
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}

	path, err := r.storage.Save(content, filename)
	if err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	return path, nil
}

// WriteArtifacts persists both the structured and the narrative artifact.
// Every artifact is attempted; errors are joined per artifact.
func (r *Reporter) WriteArtifacts(report *UnifiedReport) (jsonPath, markdownPath string, err error) {
	ts := report.Timestamp.Unix()

	var errs []error
	jsonPath, jsonErr := r.GenerateAndSave(report, NewJSONGenerator(), fmt.Sprintf("comprehensive_security_report_%d.json", ts))
	if jsonErr != nil {
		errs = append(errs, jsonErr)
	}
	markdownPath, mdErr := r.GenerateAndSave(report, NewMarkdownGenerator(), fmt.Sprintf("security_report_%d.md", ts))
	if mdErr != nil {
		errs = append(errs, mdErr)
	}

	return jsonPath, markdownPath, errors.Join(errs...)
}
