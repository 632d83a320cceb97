package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Severity is the ordinal rank of a finding: HIGH > MEDIUM > LOW.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Severities lists all severity levels from most to least severe.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

// Finding is one detected vulnerability instance. It is immutable once created:
// the aggregator never re-labels a severity.
type Finding struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	Source      string    `json:"source"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewFinding creates a finding stamped with the current time.
func NewFinding(typ, description string, severity Severity, source string) Finding {
	return Finding{
		Type:        typ,
		Description: description,
		Severity:    severity,
		Source:      source,
		Timestamp:   time.Now().UTC(),
	}
}

// CategoryReport holds the outcome of one probe category. When the probe
// failed, Error is set and the other fields are empty.
type CategoryReport struct {
	Findings             []Finding        `json:"vulnerabilities"`
	SeverityCounts       map[Severity]int `json:"severity_counts"`
	TotalVulnerabilities int              `json:"total_vulnerabilities"`
	Error                string           `json:"error,omitempty"`
}

// NewCategoryReport builds a report from a probe's findings.
func NewCategoryReport(findings []Finding) CategoryReport {
	if findings == nil {
		findings = []Finding{}
	}
	return CategoryReport{
		Findings:             findings,
		SeverityCounts:       countBySeverity(findings),
		TotalVulnerabilities: len(findings),
	}
}

// NewErrorReport builds the failure form of a category report.
func NewErrorReport(message string) CategoryReport {
	return CategoryReport{Error: message}
}

// Summary carries the aggregate totals of a unified report.
type Summary struct {
	TotalVulnerabilities int              `json:"total_vulnerabilities"`
	SeverityCounts       map[Severity]int `json:"severity_counts"`
	RiskLevel            Severity         `json:"risk_level"`
}

// UnifiedReport merges every category report plus external findings into one
// document. It is built once per run and never appended to afterwards.
type UnifiedReport struct {
	ID               string                    `json:"id"`
	Timestamp        time.Time                 `json:"timestamp"`
	Network          string                    `json:"network"`
	Target           string                    `json:"target"`
	TestResults      map[string]CategoryReport `json:"test_results"`
	ExternalFindings []Finding                 `json:"external_findings"`
	Vulnerabilities  []Finding                 `json:"vulnerabilities"`
	Summary          Summary                   `json:"summary"`
}

// Build flattens all category reports plus the optional external findings into
// a unified report. Categories are visited in the given order (extra keys are
// appended in sorted order), error categories contribute nothing, and external
// findings are appended unmodified and without deduplication.
func Build(network, target string, order []string, results map[string]CategoryReport, external []Finding) *UnifiedReport {
	if results == nil {
		results = map[string]CategoryReport{}
	}
	if external == nil {
		external = []Finding{}
	}

	rep := &UnifiedReport{
		ID:               uuid.NewString(),
		Timestamp:        time.Now().UTC(),
		Network:          network,
		Target:           target,
		TestResults:      results,
		ExternalFindings: external,
		Vulnerabilities:  []Finding{},
	}

	for _, category := range mergeOrder(order, results) {
		cr := results[category]
		if cr.Error != "" {
			continue
		}
		rep.Vulnerabilities = append(rep.Vulnerabilities, cr.Findings...)
	}
	rep.Vulnerabilities = append(rep.Vulnerabilities, external...)

	counts := countBySeverity(rep.Vulnerabilities)
	rep.Summary = Summary{
		TotalVulnerabilities: len(rep.Vulnerabilities),
		SeverityCounts:       counts,
		RiskLevel:            riskLevel(counts),
	}
	return rep
}

// mergeOrder returns the known categories in registry order followed by any
// unknown result keys in sorted order, so aggregation is deterministic.
func mergeOrder(order []string, results map[string]CategoryReport) []string {
	seen := make(map[string]bool, len(order))
	merged := make([]string, 0, len(results))
	for _, category := range order {
		if _, ok := results[category]; ok {
			merged = append(merged, category)
			seen[category] = true
		}
	}
	var extra []string
	for category := range results {
		if !seen[category] {
			extra = append(extra, category)
		}
	}
	sort.Strings(extra)
	return append(merged, extra...)
}

func countBySeverity(findings []Finding) map[Severity]int {
	counts := map[Severity]int{SeverityHigh: 0, SeverityMedium: 0, SeverityLow: 0}
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

// riskLevel is the worst-case severity across all findings: HIGH if any HIGH
// finding exists, else MEDIUM if any MEDIUM, else LOW.
func riskLevel(counts map[Severity]int) Severity {
	switch {
	case counts[SeverityHigh] > 0:
		return SeverityHigh
	case counts[SeverityMedium] > 0:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
