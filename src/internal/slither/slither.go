package slither

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/admi-n/solidity-Sentinel/src/internal/report"
)

// Source marks findings that came from the static analyzer rather than a probe.
const Source = "slither"

// DefaultTimeout bounds one analyzer invocation.
const DefaultTimeout = 120 * time.Second

// Detector is one slither detector record. The rest of its fields are
// ignored: the engine consumes the result as an opaque diagnostics list.
type Detector struct {
	Check       string `json:"check"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

// output is the top-level shape of a slither JSON report.
type output struct {
	Results struct {
		Detectors []Detector `json:"detectors"`
	} `json:"results"`
}

// Runner invokes the slither binary with an explicit timeout. Tool-not-found,
// non-JSON output, and timeouts are soft failures: the caller proceeds with
// zero external findings.
type Runner struct {
	Path    string
	Timeout time.Duration
}

// NewRunner creates a runner; empty path means "slither" on PATH and a zero
// timeout means the default.
func NewRunner(path string, timeout time.Duration) *Runner {
	if path == "" {
		path = "slither"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{
		Path:    path,
		Timeout: timeout,
	}
}

// Analyze runs slither against a contracts directory and normalizes its
// detector records into findings.
func (r *Runner) Analyze(ctx context.Context, contractsDir string) ([]report.Finding, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.Path, contractsDir, "--json", "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("slither timed out after %s", r.Timeout)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return nil, fmt.Errorf("slither not found at %q", r.Path)
	}

	// Slither exits non-zero when it finds issues, so the report is parsed
	// whenever stdout holds JSON and the exit status only matters when it
	// does not.
	findings, parseErr := normalizeOutput(stdout.Bytes())
	if parseErr != nil {
		if err != nil {
			return nil, fmt.Errorf("slither failed: %v: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, parseErr
	}
	return findings, nil
}

// ParseReportFile consumes a pre-existing slither JSON report.
func ParseReportFile(path string) ([]report.Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read slither report: %w", err)
	}
	return normalizeOutput(data)
}

func normalizeOutput(data []byte) ([]report.Finding, error) {
	var out output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse slither output: %w", err)
	}
	return Normalize(out.Results.Detectors), nil
}

// Normalize converts detector records into findings: HIGH when the impact
// mentions "critical", MEDIUM otherwise. Severities are fixed here and never
// re-labeled downstream.
func Normalize(detectors []Detector) []report.Finding {
	findings := make([]report.Finding, 0, len(detectors))
	for _, d := range detectors {
		severity := report.SeverityMedium
		if strings.Contains(strings.ToLower(d.Impact), "critical") {
			severity = report.SeverityHigh
		}

		check := d.Check
		if check == "" {
			check = "Unknown"
		}
		description := d.Description
		if description == "" {
			description = "No description"
		}

		findings = append(findings, report.NewFinding(check, description, severity, Source))
	}
	return findings
}
