package report

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// History records one row per completed scan in a relational database. The
// table works on both MySQL and PostgreSQL; the driver name decides the
// placeholder style.
type History struct {
	db     *sql.DB
	driver string
}

// NewHistory creates a history store over an initialized connection pool.
func NewHistory(db *sql.DB, driver string) *History {
	return &History{
		db:     db,
		driver: driver,
	}
}

const historySchema = `CREATE TABLE IF NOT EXISTS scans (
	id VARCHAR(36) PRIMARY KEY,
	network VARCHAR(32) NOT NULL,
	target VARCHAR(64) NOT NULL,
	scan_time TIMESTAMP NOT NULL,
	total_vulnerabilities INT NOT NULL,
	high_count INT NOT NULL,
	medium_count INT NOT NULL,
	low_count INT NOT NULL,
	risk_level VARCHAR(8) NOT NULL,
	json_path TEXT,
	markdown_path TEXT
)`

// EnsureSchema creates the scans table if it does not exist.
func (h *History) EnsureSchema(ctx context.Context) error {
	if h.db == nil {
		return fmt.Errorf("EnsureSchema: db is nil")
	}
	if _, err := h.db.ExecContext(ctx, historySchema); err != nil {
		return fmt.Errorf("EnsureSchema: %w", err)
	}
	return nil
}

// SaveRun inserts the summary row for one unified report.
func (h *History) SaveRun(ctx context.Context, report *UnifiedReport, jsonPath, markdownPath string) error {
	if h.db == nil {
		return fmt.Errorf("SaveRun: db is nil")
	}

	query := fmt.Sprintf(
		`INSERT INTO scans (id, network, target, scan_time, total_vulnerabilities, high_count, medium_count, low_count, risk_level, json_path, markdown_path) VALUES (%s)`,
		h.placeholders(11))

	_, err := h.db.ExecContext(ctx, query,
		report.ID,
		report.Network,
		report.Target,
		report.Timestamp,
		report.Summary.TotalVulnerabilities,
		report.Summary.SeverityCounts[SeverityHigh],
		report.Summary.SeverityCounts[SeverityMedium],
		report.Summary.SeverityCounts[SeverityLow],
		string(report.Summary.RiskLevel),
		jsonPath,
		markdownPath,
	)
	if err != nil {
		return fmt.Errorf("SaveRun: %w", err)
	}
	return nil
}

// placeholders builds the parameter list for the configured driver:
// $1..$n for pgx, ? otherwise.
func (h *History) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		if h.driver == "pgx" {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}
