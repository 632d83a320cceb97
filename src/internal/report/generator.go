package report

import (
	"fmt"
	"sort"
	"strings"
)

// Generator renders a unified report into one output format.
type Generator interface {
	Generate(report *UnifiedReport) (string, error)
}

// MarkdownGenerator renders the human-readable narrative report. Rendering is
// a pure function of the report: identical input yields identical output.
type MarkdownGenerator struct{}

// NewMarkdownGenerator creates a markdown report generator.
func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

// Generate renders the narrative markdown report.
func (g *MarkdownGenerator) Generate(report *UnifiedReport) (string, error) {
	var sb strings.Builder

	sb.WriteString("# 🔒 Smart Contract Security Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated on: %s\n", report.Timestamp.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Network: %s\n", report.Network))
	sb.WriteString(fmt.Sprintf("Target: %s\n\n", report.Target))

	sb.WriteString("## 📊 Executive Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Total Vulnerabilities**: %d\n", report.Summary.TotalVulnerabilities))
	sb.WriteString(fmt.Sprintf("- **Risk Level**: %s\n", report.Summary.RiskLevel))
	sb.WriteString(fmt.Sprintf("- **High Severity**: %d\n", report.Summary.SeverityCounts[SeverityHigh]))
	sb.WriteString(fmt.Sprintf("- **Medium Severity**: %d\n", report.Summary.SeverityCounts[SeverityMedium]))
	sb.WriteString(fmt.Sprintf("- **Low Severity**: %d\n\n", report.Summary.SeverityCounts[SeverityLow]))

	sb.WriteString("## 🚨 Findings\n\n")
	for _, severity := range Severities {
		findings := filterBySeverity(report.Vulnerabilities, severity)
		if len(findings) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("### %s Severity Vulnerabilities\n\n", titleCase(severity)))
		for _, f := range findings {
			sb.WriteString(fmt.Sprintf("- %s **%s**: %s (source: %s)\n", severityIcon(f.Severity), f.Type, f.Description, f.Source))
		}
		sb.WriteString("\n")
	}
	if report.Summary.TotalVulnerabilities == 0 {
		sb.WriteString("No vulnerabilities detected.\n\n")
	}

	sb.WriteString(recommendationsBlock)

	sb.WriteString("## 📋 Test Coverage\n\n")
	for _, category := range sortedCategories(report.TestResults) {
		cr := report.TestResults[category]
		if cr.Error != "" {
			sb.WriteString(fmt.Sprintf("- **%s**: failed (%s)\n", category, cr.Error))
			continue
		}
		sb.WriteString(fmt.Sprintf("- **%s**: %d finding(s)\n", category, cr.TotalVulnerabilities))
	}
	if len(report.ExternalFindings) > 0 {
		sb.WriteString(fmt.Sprintf("- **slither**: %d finding(s)\n", len(report.ExternalFindings)))
	}
	sb.WriteString("\n")

	sb.WriteString(toolsBlock)

	return sb.String(), nil
}

const recommendationsBlock = `## 🛡️ Security Recommendations

1. **Immediate Actions Required**:
   - Fix all HIGH severity vulnerabilities before deployment
   - Implement proper access controls
   - Add reentrancy protection to all external calls

2. **Short-term Improvements**:
   - Address MEDIUM severity vulnerabilities
   - Implement proper input validation
   - Add event logging for security monitoring

3. **Long-term Security**:
   - Conduct regular security audits
   - Implement formal verification
   - Set up bug bounty program

`

const toolsBlock = `## 🔍 Tools Used

- **Probe Suite**: live vulnerability probes against the deployed target
- **Slither**: static analysis tool
- **Custom Security Heuristics**: pass/fail classification of benign and adversarial calls

---

*Report generated by solidity-Sentinel*
`

func filterBySeverity(findings []Finding, severity Severity) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}

func sortedCategories(results map[string]CategoryReport) []string {
	categories := make([]string, 0, len(results))
	for category := range results {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

func titleCase(s Severity) string {
	str := strings.ToLower(string(s))
	if str == "" {
		return str
	}
	return strings.ToUpper(str[:1]) + str[1:]
}

// severityIcon maps a severity level to its report icon.
func severityIcon(severity Severity) string {
	switch severity {
	case SeverityHigh:
		return "🟠"
	case SeverityMedium:
		return "🟡"
	case SeverityLow:
		return "🟢"
	default:
		return "⚪"
	}
}
