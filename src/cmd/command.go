package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"

	"github.com/admi-n/solidity-Sentinel/src/config"
	"github.com/admi-n/solidity-Sentinel/src/internal/harness"
	"github.com/admi-n/solidity-Sentinel/src/internal/probe"
	"github.com/admi-n/solidity-Sentinel/src/internal/report"
	"github.com/admi-n/solidity-Sentinel/src/internal/slither"
)

// ErrHighRisk is returned when the run completed but found HIGH severity
// vulnerabilities, so the process exits non-zero.
var ErrHighRisk = errors.New("high severity vulnerabilities found")

// Execute runs the full scan: deploy the artifact, run the probe suite,
// merge the static-analysis findings, persist both report artifacts, and
// optionally record the run in the history database.
func Execute(cfg *CLIConfig) error {
	// Optional .env for DSNs and paths.
	_ = godotenv.Load()

	if err := config.LoadSettings(cfg.SettingsPath); err != nil {
		fmt.Printf("⚠️  warning: could not load settings file: %v\n", err)
		fmt.Println("falling back to environment variables and defaults...")
	}

	suiteCfg, err := probe.LoadSuiteConfig(cfg.SuitePath)
	if err != nil {
		return fmt.Errorf("failed to load suite config: %w", err)
	}

	accounts := cfg.Accounts
	if accounts < 2 {
		accounts = config.GetHarnessAccounts()
	}

	fmt.Println("🚀 Booting simulated chain...")
	h, err := harness.NewEVMHarness(accounts)
	if err != nil {
		return fmt.Errorf("failed to start harness: %w", err)
	}
	defer h.Close()

	ctx := context.Background()

	fmt.Printf("📦 Deploying %s...\n", cfg.ArtifactPath)
	target, err := h.DeployArtifact(ctx, targetName(cfg.ArtifactPath), cfg.ArtifactPath, nil)
	if err != nil {
		return fmt.Errorf("failed to deploy target: %w", err)
	}
	fmt.Printf("✅ Target deployed at %s\n", target.Address.Hex())
	if cfg.Verbose {
		fmt.Printf("   entry points: %s\n", strings.Join(target.EntryPoints(), ", "))
	}

	suite := probe.NewSuite(&probe.ConsoleObserver{Verbose: cfg.Verbose})
	results := suite.RunAll(ctx, h, target, suiteCfg)

	external := collectExternalFindings(ctx, cfg)

	rep := report.Build(cfg.Network, target.Address.Hex(), probe.CategoryOrder(), results, external)

	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = config.GetReportsDir()
	}
	reporter := report.NewReporter(report.NewFileStorage(outputDir))
	jsonPath, markdownPath, writeErr := reporter.WriteArtifacts(rep)
	if jsonPath != "" {
		fmt.Printf("📄 Structured report saved: %s\n", jsonPath)
	}
	if markdownPath != "" {
		fmt.Printf("📄 Narrative report saved: %s\n", markdownPath)
	}

	if cfg.HistoryDB {
		if err := recordHistory(ctx, rep, jsonPath, markdownPath); err != nil {
			fmt.Printf("⚠️  warning: could not record scan history: %v\n", err)
		}
	}

	printSummary(rep)

	if writeErr != nil {
		return fmt.Errorf("failed to persist report artifacts: %w", writeErr)
	}
	if rep.Summary.RiskLevel == report.SeverityHigh {
		return ErrHighRisk
	}
	return nil
}

// collectExternalFindings runs or reads the static analyzer. Every failure
// here is soft: the run proceeds with zero external findings.
func collectExternalFindings(ctx context.Context, cfg *CLIConfig) []report.Finding {
	switch {
	case cfg.SlitherReport != "":
		fmt.Printf("🔬 Reading slither report %s...\n", cfg.SlitherReport)
		findings, err := slither.ParseReportFile(cfg.SlitherReport)
		if err != nil {
			fmt.Printf("⚠️  warning: %v; continuing without external findings\n", err)
			return nil
		}
		fmt.Printf("📊 Slither contributed %d finding(s)\n", len(findings))
		return findings

	case cfg.SlitherTarget != "":
		fmt.Println("🔬 Running slither security scan...")
		timeout := cfg.SlitherWait
		if timeout <= 0 {
			timeout = config.GetSlitherTimeout()
		}
		runner := slither.NewRunner(config.GetSlitherPath(), timeout)
		findings, err := runner.Analyze(ctx, cfg.SlitherTarget)
		if err != nil {
			fmt.Printf("⚠️  warning: %v; continuing without external findings\n", err)
			return nil
		}
		fmt.Printf("📊 Slither found %d issue(s)\n", len(findings))
		return findings

	default:
		return nil
	}
}

// recordHistory writes one summary row for the run.
func recordHistory(ctx context.Context, rep *report.UnifiedReport, jsonPath, markdownPath string) error {
	dsn := config.GetDatabaseDSN()
	if dsn == "" {
		return errors.New("no database DSN configured (SENTINEL_DATABASE_DSN or settings file)")
	}

	db, driver, err := config.InitDB(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	history := report.NewHistory(db, driver)
	if err := history.EnsureSchema(ctx); err != nil {
		return err
	}
	return history.SaveRun(ctx, rep, jsonPath, markdownPath)
}

// targetName derives a readable target name from the artifact filename.
func targetName(artifactPath string) string {
	base := artifactPath
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".json")
}

// printSummary prints the final console summary.
func printSummary(rep *report.UnifiedReport) {
	line := strings.Repeat("=", 50)
	fmt.Println("\n" + line)
	fmt.Println("🎯 SECURITY TESTING SUMMARY")
	fmt.Println(line)
	fmt.Printf("Total Vulnerabilities: %d\n", rep.Summary.TotalVulnerabilities)
	fmt.Printf("Risk Level: %s\n", rep.Summary.RiskLevel)
	fmt.Printf("High Severity: %d\n", rep.Summary.SeverityCounts[report.SeverityHigh])
	fmt.Printf("Medium Severity: %d\n", rep.Summary.SeverityCounts[report.SeverityMedium])
	fmt.Printf("Low Severity: %d\n", rep.Summary.SeverityCounts[report.SeverityLow])
	fmt.Println(line)

	switch rep.Summary.RiskLevel {
	case report.SeverityHigh:
		fmt.Println("⚠️  CRITICAL: High severity vulnerabilities found!")
		fmt.Println("🚨 Do NOT deploy to production without fixing these issues!")
	case report.SeverityMedium:
		fmt.Println("⚠️  WARNING: Medium severity vulnerabilities found!")
		fmt.Println("🔧 Address these issues before production deployment.")
	default:
		fmt.Println("✅ Good: No critical vulnerabilities found!")
	}
}
